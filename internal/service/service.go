// Package service exposes the add / search / reset operations shared by every
// transport.
package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/api"
	"github.com/fareroute/backend-go/internal/archive"
	"github.com/fareroute/backend-go/internal/models"
	"github.com/fareroute/backend-go/internal/route"
	"github.com/fareroute/backend-go/internal/station"
)

const ResetMessage = "station data reset"

// Archive stores station snapshots.
type Archive interface {
	Save(ctx context.Context, stations []models.Station, reason string) (string, error)
	Latest(ctx context.Context) (*archive.Snapshot, error)
}

type FareService struct {
	registry *station.Registry
	resolver *route.Resolver
	archive  Archive
	sink     models.NotificationSink
}

type Option func(*FareService)

// WithArchive keeps the archive's latest snapshot in step with the registry
// and enables Seed.
func WithArchive(a Archive) Option {
	return func(s *FareService) {
		s.archive = a
	}
}

// WithSink forwards store failures to the error channel.
func WithSink(sink models.NotificationSink) Option {
	return func(s *FareService) {
		if sink != nil {
			s.sink = sink
		}
	}
}

func New(registry *station.Registry, resolver *route.Resolver, opts ...Option) *FareService {
	s := &FareService{
		registry: registry,
		resolver: resolver,
		sink:     models.NopSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FareService) AddStation(ctx context.Context, req api.AddStationRequest) (api.AddStationResponse, error) {
	result, err := s.registry.Add(ctx, req.Line, req.Station, req.DistanceText())
	if err != nil {
		s.reportStoreError("add station", err)
		return api.AddStationResponse{}, err
	}
	if result.Added && s.archive != nil {
		s.snapshot(ctx, archive.ReasonAdd)
	}
	return api.NewAddStationResponse(req, result.Added), nil
}

// Search always returns a renderable result. err is set when the result is
// the error variant. The resolver reports its own failures to the sink.
func (s *FareService) Search(ctx context.Context, req api.SearchRequest) (models.SearchResult, error) {
	r, err := s.resolver.Resolve(ctx, req.Start, req.End, req.Via)
	if err != nil {
		return models.SearchResult{Err: api.PublicMessage(err)}, err
	}
	return models.NewSearchResult(r, nil), nil
}

// ResetStations removes every station. With an archive configured the current
// list is saved as a backup first and an empty snapshot is written once the
// reset succeeds. Snapshot failures are logged and do not stop the reset.
func (s *FareService) ResetStations(ctx context.Context) (api.ResetResponse, error) {
	if s.archive != nil {
		s.snapshot(ctx, archive.ReasonReset)
	}

	if err := s.registry.ResetAll(ctx); err != nil {
		s.reportStoreError("reset", err)
		return api.ResetResponse{}, err
	}

	if s.archive != nil {
		if _, err := s.archive.Save(ctx, nil, archive.ReasonCleared); err != nil {
			log.Warn().Err(err).Msg("Could not save empty snapshot after reset")
		}
	}
	return api.ResetResponse{Message: ResetMessage}, nil
}

// Fares describes the fare table searches are priced with.
func (s *FareService) Fares() api.FareTableResponse {
	table := s.resolver.Fares()
	return api.FareTableResponse{
		Currency:    table.Currency(),
		MaxDistance: table.MaxDistance(),
		Bands:       table.Bands(),
	}
}

func (s *FareService) ListStations(ctx context.Context) ([]models.Station, error) {
	stations, err := s.registry.List(ctx)
	if err != nil {
		s.reportStoreError("list stations", err)
		return nil, err
	}
	return stations, nil
}

// Seed restores the latest snapshot into an empty registry. It returns the
// number of stations added.
func (s *FareService) Seed(ctx context.Context) (int, error) {
	if s.archive == nil {
		return 0, nil
	}

	count, err := s.registry.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Debug().Int("stations", count).Msg("Registry not empty, skipping seed")
		return 0, nil
	}

	snap, err := s.archive.Latest(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading latest snapshot: %w", err)
	}
	if snap == nil {
		return 0, nil
	}
	if !snap.Seedable() {
		log.Info().Int64("taken_at", snap.TakenAt).Str("reason", snap.Reason).Msg("Latest snapshot predates a reset, skipping seed")
		return 0, nil
	}

	added := 0
	for _, st := range snap.Stations {
		result, err := s.registry.Add(ctx, st.Line, st.Name, strconv.FormatFloat(st.Position, 'f', -1, 64))
		if err != nil {
			if models.IsValidation(err) {
				log.Warn().Err(err).Str("station", st.Name).Msg("Skipping invalid station in snapshot")
				continue
			}
			return added, err
		}
		if result.Added {
			added++
		}
	}

	log.Info().Int("stations", added).Int64("taken_at", snap.TakenAt).Msg("Seeded stations from snapshot")
	return added, nil
}

// snapshot saves the current station list. Concurrent adds may race and the
// last writer wins; the next add or reset corrects it.
func (s *FareService) snapshot(ctx context.Context, reason string) {
	stations, err := s.registry.List(ctx)
	if err != nil {
		log.Warn().Err(err).Str("reason", reason).Msg("Could not list stations for snapshot")
		return
	}
	if _, err := s.archive.Save(ctx, stations, reason); err != nil {
		log.Warn().Err(err).Str("reason", reason).Msg("Could not save station snapshot")
	}
}

func (s *FareService) reportStoreError(op string, err error) {
	if !models.IsStore(err) {
		return
	}
	log.Error().Err(err).Str("op", op).Msg("Station store failure")
	s.sink.Emit(models.ChannelError, fmt.Sprintf("%s error: %v", op, err))
}
