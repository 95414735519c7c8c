// Package app assembles the fare service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/archive"
	"github.com/fareroute/backend-go/internal/config"
	"github.com/fareroute/backend-go/internal/fare"
	"github.com/fareroute/backend-go/internal/handler"
	"github.com/fareroute/backend-go/internal/models"
	"github.com/fareroute/backend-go/internal/notify"
	"github.com/fareroute/backend-go/internal/route"
	"github.com/fareroute/backend-go/internal/service"
	"github.com/fareroute/backend-go/internal/station"
	"github.com/fareroute/backend-go/internal/store"
	"github.com/fareroute/backend-go/pkg/http/client"
)

type App struct {
	Service    *service.FareService
	Metrics    *handler.Metrics
	backend    *store.Backend
	dispatcher *notify.Dispatcher
}

// New builds every component. Seeding from the archive happens here when
// ARCHIVE_SEED is set.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	backend, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening station store: %w", err)
	}

	table, err := loadFares(ctx, cfg, backend)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	dispatcher := notify.NewDispatcher(deliverer(cfg), cfg.NotifyBuffer, cfg.HTTPTimeout)

	registry := station.NewRegistry(backend.Store, dispatcher)
	resolver := route.NewResolver(registry, table, dispatcher)

	opts := []service.Option{service.WithSink(dispatcher)}
	if cfg.ArchiveBucket != "" {
		s3Client, err := archive.NewS3Client(ctx)
		if err != nil {
			_ = dispatcher.Close(ctx)
			_ = backend.Close()
			return nil, err
		}
		opts = append(opts, service.WithArchive(archive.NewS3Archive(s3Client, cfg.ArchiveBucket)))
	}

	a := &App{
		Service:    service.New(registry, resolver, opts...),
		Metrics:    handler.NewMetrics(),
		backend:    backend,
		dispatcher: dispatcher,
	}

	if err := a.registerCollectors(); err != nil {
		log.Warn().Err(err).Msg("Failed to register store metrics")
	}

	if cfg.ArchiveSeed {
		if n, err := a.Service.Seed(ctx); err != nil {
			log.Warn().Err(err).Msg("Seeding from archive failed")
		} else if n > 0 {
			log.Info().Int("stations", n).Msg("Registry seeded from archive")
		}
	}

	log.Info().
		Str("store", cfg.Store.Backend).
		Str("fare_source", cfg.FareSource).
		Int("fare_bands", len(table.Bands())).
		Bool("archive", cfg.ArchiveBucket != "").
		Msg("Fare service initialized")

	return a, nil
}

// Close drains pending notifications and releases the store.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.dispatcher.Close(ctx), a.backend.Close())
}

func loadFares(ctx context.Context, cfg *config.Config, backend *store.Backend) (*fare.Table, error) {
	switch cfg.FareSource {
	case "sql":
		if backend.DB == nil {
			return nil, fmt.Errorf("FARE_SOURCE=sql needs a SQL store backend")
		}
		queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return fare.LoadSQL(queryCtx, backend.DB, cfg.FareQuery)
	case "file", "":
		if cfg.FareTablePath != "" {
			return fare.LoadFile(cfg.FareTablePath)
		}
		return fare.Default()
	default:
		return nil, fmt.Errorf("unknown fare source %q", cfg.FareSource)
	}
}

func deliverer(cfg *config.Config) notify.Deliverer {
	webhooks := notify.NewWebhookDeliverer(
		client.New(client.Options{Timeout: cfg.HTTPTimeout}),
		map[models.Channel]string{
			models.ChannelSearch:  cfg.SearchWebhookURL,
			models.ChannelStation: cfg.StationWebhookURL,
			models.ChannelError:   cfg.ErrorWebhookURL,
		},
	)
	if webhooks.Enabled() {
		return webhooks
	}
	log.Info().Msg("No webhooks configured, notifications go to the log")
	return notify.LogDeliverer{}
}

func (a *App) registerCollectors() error {
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "fareroute_notifications_dropped_total",
			Help: "Notifications dropped because the queue was full",
		}, func() float64 { return float64(a.dispatcher.Stats()["dropped"]) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "fareroute_notifications_failed_total",
			Help: "Notifications whose delivery failed",
		}, func() float64 { return float64(a.dispatcher.Stats()["failed"]) }),
	}

	if cached, ok := a.backend.Store.(*store.CachedStore); ok {
		for _, key := range []string{"lru_hits", "lru_misses"} {
			key := key
			collectors = append(collectors, prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "fareroute_store_" + key + "_total",
				Help: "Station lookup cache " + key,
			}, func() float64 { return float64(cached.Stats()[key]) }))
		}
	}

	return a.Metrics.Register(collectors...)
}
