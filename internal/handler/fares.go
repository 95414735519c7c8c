package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/api"
)

type fareHandler struct {
	svc     FareService
	metrics *Metrics
}

func (h *fareHandler) addStation(c *gin.Context) {
	var req api.AddStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.stationAdd("invalid")
		badJSON(c, err)
		return
	}

	resp, err := h.svc.AddStation(c.Request.Context(), req)
	if err != nil {
		h.metrics.stationAdd(outcome(err))
		writeError(c, err)
		return
	}

	if resp.Added {
		h.metrics.stationAdd("added")
	} else {
		h.metrics.stationAdd("duplicate")
	}
	c.JSON(http.StatusOK, resp)
}

func (h *fareHandler) search(c *gin.Context) {
	var req api.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.search("invalid")
		badJSON(c, err)
		return
	}

	result, err := h.svc.Search(c.Request.Context(), req)
	if err != nil {
		h.metrics.search(outcome(err))
		c.JSON(api.StatusFor(err), api.NewErrorResponse(result.Err, GetRequestID(c)))
		return
	}

	if result.Route != nil && result.Route.Fare == nil {
		h.metrics.search("no_fare")
	} else {
		h.metrics.search("ok")
	}
	c.JSON(http.StatusOK, result)
}

func (h *fareHandler) resetStations(c *gin.Context) {
	resp, err := h.svc.ResetStations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	h.metrics.resets.Inc()
	c.JSON(http.StatusOK, resp)
}

func (h *fareHandler) listStations(c *gin.Context) {
	stations, err := h.svc.ListStations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

func (h *fareHandler) fares(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Fares())
}

func writeError(c *gin.Context, err error) {
	status := api.StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("Request failed")
	}
	c.JSON(status, api.NewErrorResponse(api.PublicMessage(err), GetRequestID(c)))
}

func badJSON(c *gin.Context, err error) {
	log.Debug().Err(err).Str("request_id", GetRequestID(c)).Msg("Malformed request body")
	c.JSON(http.StatusBadRequest, api.NewErrorResponse("invalid JSON body", GetRequestID(c)))
}

func outcome(err error) string {
	switch api.StatusFor(err) {
	case http.StatusBadRequest:
		return "rejected"
	default:
		return "error"
	}
}
