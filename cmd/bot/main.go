package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/chatcmd"
	"github.com/fareroute/backend-go/internal/config"
	"github.com/fareroute/backend-go/pkg/http/client"
)

func main() {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	if cfg.DiscordBotToken == "" {
		log.Fatal().Msg("DISCORD_BOT_TOKEN is required")
	}

	executor := chatcmd.NewExecutor(client.New(client.Options{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.HTTPTimeout,
	}))

	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Msg("Bot connected")
	})
	session.AddHandler(messageHandler(executor, cfg))

	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open Discord connection")
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Discord session")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Bot shutting down")
}

func messageHandler(executor *chatcmd.Executor, cfg *config.Config) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		defer cancel()

		reply, ok := executor.Reply(ctx, m.Content)
		if !ok {
			return
		}

		if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
			log.Error().Err(err).Str("channel", m.ChannelID).Msg("Failed to send reply")
		}
	}
}
