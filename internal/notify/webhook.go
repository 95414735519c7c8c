package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/models"
	"github.com/fareroute/backend-go/pkg/http/client"
)

// Discord rejects message content longer than this many characters.
const maxWebhookContent = 2000

type webhookMessage struct {
	Content string `json:"content"`
}

// WebhookDeliverer posts events to one Discord webhook URL per channel.
// Channels without a URL are skipped.
type WebhookDeliverer struct {
	client client.Interface
	urls   map[models.Channel]string
}

func NewWebhookDeliverer(c client.Interface, urls map[models.Channel]string) *WebhookDeliverer {
	filtered := make(map[models.Channel]string, len(urls))
	for ch, url := range urls {
		if url != "" {
			filtered[ch] = url
		}
	}
	return &WebhookDeliverer{client: c, urls: filtered}
}

// Enabled reports whether any channel has a URL.
func (w *WebhookDeliverer) Enabled() bool {
	return len(w.urls) > 0
}

func (w *WebhookDeliverer) Deliver(ctx context.Context, channel models.Channel, text string) error {
	url, ok := w.urls[channel]
	if !ok {
		return nil
	}

	resp, err := w.client.Post(ctx, url, webhookMessage{Content: truncate(text, maxWebhookContent)})
	if err != nil {
		return fmt.Errorf("posting %s webhook: %w", channel, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%s webhook returned status %d", channel, resp.StatusCode)
	}

	log.Debug().Str("channel", string(channel)).Msg("Webhook delivered")
	return nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

// LogDeliverer writes events to the process log. Used when no webhook is set.
type LogDeliverer struct{}

func (LogDeliverer) Deliver(_ context.Context, channel models.Channel, text string) error {
	log.Info().Str("channel", string(channel)).Str("text", text).Msg("Notification")
	return nil
}
