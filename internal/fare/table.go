// Package fare resolves trip distances into banded fares.
package fare

import (
	"fmt"
	"sort"

	"github.com/fareroute/backend-go/internal/models"
)

// Table is an immutable list of fare bands sorted by MaxDistance.
type Table struct {
	currency string
	bands    []models.FareBand
}

// NewTable validates bands and returns them as a lookup table. Bands may be
// supplied in any order; fares must not decrease as distance grows.
func NewTable(bands []models.FareBand) (*Table, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("fare table has no bands")
	}

	sorted := make([]models.FareBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MaxDistance < sorted[j].MaxDistance
	})

	for i, band := range sorted {
		if band.MaxDistance < 0 {
			return nil, fmt.Errorf("band %d: negative max distance %v", i, band.MaxDistance)
		}
		if band.Fare < 0 {
			return nil, fmt.Errorf("band %d: negative fare %d", i, band.Fare)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if band.MaxDistance == prev.MaxDistance {
			return nil, fmt.Errorf("duplicate band for max distance %v", band.MaxDistance)
		}
		if band.Fare < prev.Fare {
			return nil, fmt.Errorf("fare decreases from %d to %d at %v km", prev.Fare, band.Fare, band.MaxDistance)
		}
	}

	return &Table{bands: sorted}, nil
}

// FareFor returns the fare of the first band covering distance. ok is false
// when distance lies beyond the last band.
func (t *Table) FareFor(distance float64) (fare int, ok bool) {
	for _, band := range t.bands {
		if distance <= band.MaxDistance {
			return band.Fare, true
		}
	}
	return 0, false
}

// Bands returns a copy of the bands in ascending order.
func (t *Table) Bands() []models.FareBand {
	out := make([]models.FareBand, len(t.bands))
	copy(out, t.bands)
	return out
}

// MaxDistance is the largest distance that still has a fare.
func (t *Table) MaxDistance() float64 {
	return t.bands[len(t.bands)-1].MaxDistance
}

func (t *Table) Currency() string {
	return t.currency
}
