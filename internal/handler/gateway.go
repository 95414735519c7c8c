package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/api"
)

// GatewayHandler serves the fare routes behind API Gateway.
type GatewayHandler struct {
	svc FareService
}

func NewGatewayHandler(svc FareService) *GatewayHandler {
	return &GatewayHandler{
		svc: svc,
	}
}

func (h *GatewayHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := request.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	path := "/" + strings.Trim(request.Path, "/")
	log.Debug().
		Str("request_id", requestID).
		Str("method", request.HTTPMethod).
		Str("path", path).
		Msg("Gateway request")

	switch {
	case request.HTTPMethod == http.MethodOptions:
		return api.Success(struct{}{})

	case request.HTTPMethod == http.MethodPost && path == "/addStation":
		var req api.AddStationRequest
		if err := decode(request.Body, &req); err != nil {
			return api.Error("invalid JSON body", http.StatusBadRequest, requestID)
		}
		resp, err := h.svc.AddStation(ctx, req)
		if err != nil {
			return api.FromError(err, requestID)
		}
		return api.Success(resp)

	case request.HTTPMethod == http.MethodPost && path == "/search":
		var req api.SearchRequest
		if err := decode(request.Body, &req); err != nil {
			return api.Error("invalid JSON body", http.StatusBadRequest, requestID)
		}
		result, err := h.svc.Search(ctx, req)
		if err != nil {
			return api.Error(result.Err, api.StatusFor(err), requestID)
		}
		return api.Success(result)

	case request.HTTPMethod == http.MethodPost && path == "/resetStations":
		resp, err := h.svc.ResetStations(ctx)
		if err != nil {
			return api.FromError(err, requestID)
		}
		return api.Success(resp)

	case request.HTTPMethod == http.MethodGet && path == "/stations":
		stations, err := h.svc.ListStations(ctx)
		if err != nil {
			return api.FromError(err, requestID)
		}
		return api.Success(stations)

	case request.HTTPMethod == http.MethodGet && path == "/fares":
		return api.Success(h.svc.Fares())

	default:
		return api.Error("route not found", http.StatusNotFound, requestID)
	}
}

func decode(body string, v any) error {
	if strings.TrimSpace(body) == "" {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal([]byte(body), v)
}
