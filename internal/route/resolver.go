// Package route turns a list of waypoint names into a distance and fare.
package route

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/fare"
	"github.com/fareroute/backend-go/internal/models"
	"github.com/fareroute/backend-go/internal/station"
)

type Resolver struct {
	stations station.Lookup
	fares    *fare.Table
	sink     models.NotificationSink
}

func NewResolver(stations station.Lookup, fares *fare.Table, sink models.NotificationSink) *Resolver {
	if sink == nil {
		sink = models.NopSink{}
	}
	return &Resolver{
		stations: stations,
		fares:    fares,
		sink:     sink,
	}
}

// Resolve walks the literal path start, via..., end and sums the absolute
// position difference of every consecutive pair. Positions on different lines
// are compared as-is. The first unknown station ends the walk. A sum that
// overflows float64 is rejected.
func (r *Resolver) Resolve(ctx context.Context, start, end string, via []string) (models.Route, error) {
	route, err := r.resolve(ctx, start, end, via)
	r.notify(start, end, via, route, err)
	return route, err
}

func (r *Resolver) resolve(ctx context.Context, start, end string, via []string) (models.Route, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" {
		return models.Route{}, models.NewValidationError("start", "is required")
	}
	if end == "" {
		return models.Route{}, models.NewValidationError("end", "is required")
	}

	path := BuildPath(start, end, via)

	positions := make([]float64, len(path))
	found := make([]bool, len(path))
	lookup := func(i int) (bool, error) {
		if found[i] {
			return true, nil
		}
		s, err := r.stations.Get(ctx, path[i])
		if err != nil || s == nil {
			return false, err
		}
		positions[i] = s.Position
		found[i] = true
		return true, nil
	}

	var distance float64
	for i := 0; i+1 < len(path); i++ {
		okFrom, err := lookup(i)
		if err != nil {
			return models.Route{}, err
		}
		okTo := false
		if okFrom {
			if okTo, err = lookup(i + 1); err != nil {
				return models.Route{}, err
			}
		}
		if !okFrom || !okTo {
			return models.Route{}, models.MissingStationData(path[i], path[i+1])
		}
		distance += math.Abs(positions[i+1] - positions[i])
	}
	if math.IsInf(distance, 0) {
		return models.Route{}, models.NewValidationError("distance", "route distance is out of range")
	}

	result := models.Route{Path: path, Distance: distance}
	if amount, ok := r.fares.FareFor(distance); ok {
		result.Fare = &amount
	}

	log.Debug().
		Strs("path", path).
		Float64("distance", distance).
		Bool("fare_defined", result.Fare != nil).
		Msg("Route resolved")

	return result, nil
}

// Fares returns the table used to price routes.
func (r *Resolver) Fares() *fare.Table {
	return r.fares
}

// BuildPath trims every waypoint and drops blank vias, keeping their order.
// Repeated names are kept.
func BuildPath(start, end string, via []string) []string {
	path := make([]string, 0, len(via)+2)
	path = append(path, strings.TrimSpace(start))
	for _, v := range via {
		if v = strings.TrimSpace(v); v != "" {
			path = append(path, v)
		}
	}
	return append(path, strings.TrimSpace(end))
}

func (r *Resolver) notify(start, end string, via []string, route models.Route, err error) {
	body, mErr := json.Marshal(models.NewSearchResult(route, err))
	if mErr != nil {
		log.Warn().Err(mErr).Msg("Failed to encode search result for notification")
		body = []byte("{}")
	}

	vias := "-"
	if filtered := BuildPath("", "", via); len(filtered) > 2 {
		vias = strings.Join(filtered[1:len(filtered)-1], ", ")
	}

	r.sink.Emit(models.ChannelSearch, fmt.Sprintf("search: %s → %s via: %s result: %s",
		strings.TrimSpace(start), strings.TrimSpace(end), vias, body))

	if err != nil {
		log.Info().Err(err).Str("start", start).Str("end", end).Msg("Route search failed")
		r.sink.Emit(models.ChannelError, fmt.Sprintf("search error: %s", err.Error()))
	}
}
