package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fareroute/backend-go/internal/models"
)

func smallTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]models.FareBand{
		{MaxDistance: 1, Fare: 140},
		{MaxDistance: 3, Fare: 190},
		{MaxDistance: 10, Fare: 200},
	})
	require.NoError(t, err)
	return table
}

func TestFareFor(t *testing.T) {
	t.Parallel()

	table := smallTable(t)

	tests := []struct {
		name     string
		distance float64
		wantFare int
		wantOK   bool
	}{
		{name: "zero distance", distance: 0, wantFare: 140, wantOK: true},
		{name: "exact first boundary", distance: 1, wantFare: 140, wantOK: true},
		{name: "just past first boundary", distance: 1.01, wantFare: 190, wantOK: true},
		{name: "inside second band", distance: 2, wantFare: 190, wantOK: true},
		{name: "exact last boundary", distance: 10, wantFare: 200, wantOK: true},
		{name: "beyond table", distance: 11, wantOK: false},
		{name: "far beyond table", distance: 10000, wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fare, ok := table.FareFor(tt.distance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFare, fare)
		})
	}
}

func TestFareForIsMonotonic(t *testing.T) {
	t.Parallel()

	table, err := Default()
	require.NoError(t, err)

	last := -1
	for d := 0.0; d <= table.MaxDistance(); d += 0.25 {
		fare, ok := table.FareFor(d)
		require.True(t, ok, "distance %v should have a fare", d)
		assert.GreaterOrEqual(t, fare, last, "fare dropped at %v km", d)
		last = fare
	}

	_, ok := table.FareFor(table.MaxDistance() + 0.001)
	assert.False(t, ok)
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bands   []models.FareBand
		wantErr string
	}{
		{name: "empty", bands: nil, wantErr: "no bands"},
		{
			name:    "negative distance",
			bands:   []models.FareBand{{MaxDistance: -1, Fare: 100}},
			wantErr: "negative max distance",
		},
		{
			name:    "negative fare",
			bands:   []models.FareBand{{MaxDistance: 1, Fare: -100}},
			wantErr: "negative fare",
		},
		{
			name:    "duplicate boundary",
			bands:   []models.FareBand{{MaxDistance: 1, Fare: 100}, {MaxDistance: 1, Fare: 120}},
			wantErr: "duplicate band",
		},
		{
			name:    "decreasing fare",
			bands:   []models.FareBand{{MaxDistance: 1, Fare: 200}, {MaxDistance: 2, Fare: 100}},
			wantErr: "fare decreases",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table, err := NewTable(tt.bands)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewTableSortsAndCopies(t *testing.T) {
	t.Parallel()

	bands := []models.FareBand{
		{MaxDistance: 10, Fare: 200},
		{MaxDistance: 1, Fare: 140},
		{MaxDistance: 3, Fare: 190},
	}
	table, err := NewTable(bands)
	require.NoError(t, err)

	// Caller's slice must not alias the table.
	bands[0].Fare = 1

	got := table.Bands()
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0].MaxDistance)
	assert.Equal(t, 10.0, got[2].MaxDistance)
	assert.Equal(t, 200, got[2].Fare)
	assert.Equal(t, 10.0, table.MaxDistance())
}
