package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fareroute/backend-go/internal/api"
	"github.com/fareroute/backend-go/internal/config"
)

func TestNewWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, config.New())
	require.NoError(t, err)

	resp, err := a.Service.AddStation(ctx, api.AddStationRequest{Line: "L1", Station: "A", Distance: []byte("0")})
	require.NoError(t, err)
	assert.True(t, resp.Added)

	_, err = a.Service.AddStation(ctx, api.AddStationRequest{Line: "L1", Station: "B", Distance: []byte("1")})
	require.NoError(t, err)

	result, err := a.Service.Search(ctx, api.SearchRequest{Start: "A", End: "B"})
	require.NoError(t, err)
	require.NotNil(t, result.Route)
	require.NotNil(t, result.Route.Fare)
	assert.Equal(t, 140, *result.Route.Fare)

	require.NoError(t, a.Close(ctx))
}

func TestNewWithFareFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fares.yml")
	require.NoError(t, os.WriteFile(path, []byte("currency: JPY\nbands:\n  - maxDistance: 5\n    fare: 100\n"), 0o644))

	ctx := context.Background()
	a, err := New(ctx, config.New(config.WithFareTable("file", path)))
	require.NoError(t, err)
	defer a.Close(ctx)

	for _, st := range []struct{ name, distance string }{{"A", `"0"`}, {"B", `"6"`}} {
		_, err := a.Service.AddStation(ctx, api.AddStationRequest{Line: "L", Station: st.name, Distance: []byte(st.distance)})
		require.NoError(t, err)
	}

	result, err := a.Service.Search(ctx, api.SearchRequest{Start: "A", End: "B"})
	require.NoError(t, err)
	assert.Nil(t, result.Route.Fare)
}

func TestNewRejectsBadFareSource(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, config.New(config.WithFareTable("sql", "")))
	assert.ErrorContains(t, err, "SQL store backend")

	_, err = New(ctx, config.New(config.WithFareTable("ftp", "")))
	assert.ErrorContains(t, err, "unknown fare source")
}
