package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fareroute/backend-go/internal/api"
	"github.com/fareroute/backend-go/internal/models"
)

func TestGatewayHandler_HandleRequest(t *testing.T) {
	tests := []struct {
		name           string
		request        events.APIGatewayProxyRequest
		svc            *mockFareService
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "add station",
			request: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
				Path:       "/addStation",
				Body:       `{"line":"L1","station":"A","distance":3}`,
			},
			svc:            &mockFareService{},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"added":true,"station":"A","line":"L1","distance":3}`,
		},
		{
			name: "add station validation error",
			request: events.APIGatewayProxyRequest{
				HTTPMethod:     http.MethodPost,
				Path:           "/addStation",
				Body:           `{"station":"A"}`,
				RequestContext: events.APIGatewayProxyRequestContext{RequestID: "gw-1"},
			},
			svc: &mockFareService{
				addStationFn: func(ctx context.Context, req api.AddStationRequest) (api.AddStationResponse, error) {
					return api.AddStationResponse{}, models.NewValidationError("line", "is required")
				},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"line: is required","request_id":"gw-1"}`,
		},
		{
			name: "search",
			request: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
				Path:       "/search/",
				Body:       `{"start":"A","end":"B"}`,
			},
			svc:            &mockFareService{},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"path":["A","B"],"distance":0,"fare":null}`,
		},
		{
			name: "search missing station",
			request: events.APIGatewayProxyRequest{
				HTTPMethod:     http.MethodPost,
				Path:           "/search",
				Body:           `{"start":"A","end":"Z"}`,
				RequestContext: events.APIGatewayProxyRequestContext{RequestID: "gw-2"},
			},
			svc: &mockFareService{
				searchFn: func(ctx context.Context, req api.SearchRequest) (models.SearchResult, error) {
					err := models.MissingStationData("A", "Z")
					return models.SearchResult{Err: err.Error()}, err
				},
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"missing station data: A → Z","request_id":"gw-2"}`,
		},
		{
			name: "malformed body",
			request: events.APIGatewayProxyRequest{
				HTTPMethod:     http.MethodPost,
				Path:           "/search",
				Body:           `{"start":`,
				RequestContext: events.APIGatewayProxyRequestContext{RequestID: "gw-3"},
			},
			svc:            &mockFareService{},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid JSON body","request_id":"gw-3"}`,
		},
		{
			name: "reset",
			request: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
				Path:       "/resetStations",
			},
			svc:            &mockFareService{},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"station data reset"}`,
		},
		{
			name: "list stations store failure",
			request: events.APIGatewayProxyRequest{
				HTTPMethod:     http.MethodGet,
				Path:           "/stations",
				RequestContext: events.APIGatewayProxyRequestContext{RequestID: "gw-4"},
			},
			svc: &mockFareService{
				listStationsFn: func(ctx context.Context) ([]models.Station, error) {
					return nil, models.NewStoreError("list", errors.New("timeout"))
				},
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error","request_id":"gw-4"}`,
		},
		{
			name: "fare table",
			request: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodGet,
				Path:       "/fares",
			},
			svc:            &mockFareService{},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"currency":"JPY","maxDistance":1,"bands":[{"maxDistance":1,"fare":140}]}`,
		},
		{
			name: "unknown route",
			request: events.APIGatewayProxyRequest{
				HTTPMethod:     http.MethodGet,
				Path:           "/routes",
				RequestContext: events.APIGatewayProxyRequestContext{RequestID: "gw-5"},
			},
			svc:            &mockFareService{},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"route not found","request_id":"gw-5"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewGatewayHandler(tt.svc)

			response, err := handler.HandleRequest(context.Background(), tt.request)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatus, response.StatusCode)
			assert.JSONEq(t, tt.expectedBody, response.Body)
			assert.Equal(t, "application/json", response.Headers["Content-Type"])
			assert.Equal(t, "*", response.Headers["Access-Control-Allow-Origin"])
		})
	}
}
