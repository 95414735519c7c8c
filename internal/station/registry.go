// Package station owns the set of known stations.
package station

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/models"
)

// Lookup finds a single station by name.
type Lookup interface {
	Get(ctx context.Context, name string) (*models.Station, error)
}

// AddResult reports the outcome of Add. Added is false for a duplicate name.
type AddResult struct {
	Added   bool
	Station models.Station
}

// Registry validates and deduplicates stations on top of a StationStore.
type Registry struct {
	store models.StationStore
	sink  models.NotificationSink
}

var _ Lookup = (*Registry)(nil)

func NewRegistry(store models.StationStore, sink models.NotificationSink) *Registry {
	if sink == nil {
		sink = models.NopSink{}
	}
	return &Registry{
		store: store,
		sink:  sink,
	}
}

// Add registers a station unless one with the same trimmed name exists.
// position is the raw marker text and must parse as a finite number.
func (r *Registry) Add(ctx context.Context, line, name, position string) (AddResult, error) {
	line = strings.TrimSpace(line)
	name = strings.TrimSpace(name)
	position = strings.TrimSpace(position)

	switch {
	case line == "":
		return AddResult{}, models.NewValidationError("line", "is required")
	case name == "":
		return AddResult{}, models.NewValidationError("station", "is required")
	case position == "":
		return AddResult{}, models.NewValidationError("distance", "is required")
	}

	pos, err := parsePosition(position)
	if err != nil {
		return AddResult{}, err
	}

	s := models.Station{Line: line, Name: name, Position: pos}
	inserted, err := r.store.InsertIfAbsent(ctx, s)
	if err != nil {
		return AddResult{}, models.NewStoreError("insert", err)
	}
	if !inserted {
		log.Debug().Str("station", name).Msg("Station already registered")
		return AddResult{Added: false, Station: s}, nil
	}

	log.Info().
		Str("station", name).
		Str("line", line).
		Float64("position", pos).
		Msg("Station added")
	r.sink.Emit(models.ChannelStation, fmt.Sprintf("station added: %s (%s, %skm)", name, line, formatKm(pos)))

	return AddResult{Added: true, Station: s}, nil
}

// Get returns nil, nil when no station has the trimmed name.
func (r *Registry) Get(ctx context.Context, name string) (*models.Station, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	s, err := r.store.FindByName(ctx, name)
	if err != nil {
		return nil, models.NewStoreError("find", err)
	}
	return s, nil
}

// List returns stations ordered by position, ties in insertion order.
func (r *Registry) List(ctx context.Context) ([]models.Station, error) {
	stations, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, models.NewStoreError("list", err)
	}

	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].Position < stations[j].Position
	})
	return stations, nil
}

func (r *Registry) Count(ctx context.Context) (int, error) {
	stations, err := r.store.ListAll(ctx)
	if err != nil {
		return 0, models.NewStoreError("list", err)
	}
	return len(stations), nil
}

// ResetAll removes every station. Safe on an empty registry.
func (r *Registry) ResetAll(ctx context.Context) error {
	if err := r.store.DeleteAll(ctx); err != nil {
		return models.NewStoreError("delete all", err)
	}

	log.Info().Msg("Station data reset")
	r.sink.Emit(models.ChannelStation, "station data reset")
	return nil
}

func parsePosition(raw string) (float64, error) {
	pos, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0, models.NewValidationError("distance", fmt.Sprintf("%q is not a number", raw))
	}
	return pos, nil
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
