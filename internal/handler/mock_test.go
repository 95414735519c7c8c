package handler

import (
	"context"

	"github.com/fareroute/backend-go/internal/api"
	"github.com/fareroute/backend-go/internal/models"
)

// mockFareService implements FareService for testing
type mockFareService struct {
	addStationFn    func(ctx context.Context, req api.AddStationRequest) (api.AddStationResponse, error)
	searchFn        func(ctx context.Context, req api.SearchRequest) (models.SearchResult, error)
	resetStationsFn func(ctx context.Context) (api.ResetResponse, error)
	listStationsFn  func(ctx context.Context) ([]models.Station, error)
	faresFn         func() api.FareTableResponse
}

func (m *mockFareService) AddStation(ctx context.Context, req api.AddStationRequest) (api.AddStationResponse, error) {
	if m.addStationFn != nil {
		return m.addStationFn(ctx, req)
	}
	return api.NewAddStationResponse(req, true), nil
}

func (m *mockFareService) Search(ctx context.Context, req api.SearchRequest) (models.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return models.SearchResult{Route: &models.Route{Path: []string{req.Start, req.End}}}, nil
}

func (m *mockFareService) ResetStations(ctx context.Context) (api.ResetResponse, error) {
	if m.resetStationsFn != nil {
		return m.resetStationsFn(ctx)
	}
	return api.ResetResponse{Message: "station data reset"}, nil
}

func (m *mockFareService) ListStations(ctx context.Context) ([]models.Station, error) {
	if m.listStationsFn != nil {
		return m.listStationsFn(ctx)
	}
	return []models.Station{}, nil
}

func (m *mockFareService) Fares() api.FareTableResponse {
	if m.faresFn != nil {
		return m.faresFn()
	}
	return api.FareTableResponse{
		Currency:    "JPY",
		MaxDistance: 1,
		Bands:       []models.FareBand{{MaxDistance: 1, Fare: 140}},
	}
}
