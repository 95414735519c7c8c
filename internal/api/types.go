package api

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/fareroute/backend-go/internal/models"
)

type AddStationRequest struct {
	Line    string `json:"line"`
	Station string `json:"station"`
	// Distance accepts a JSON number or a numeric string.
	Distance json.RawMessage `json:"distance"`
}

// DistanceText returns the distance as the registry expects it: the literal
// number, the unquoted string, or "" when absent or null.
func (r AddStationRequest) DistanceText() string {
	raw := bytes.TrimSpace(r.Distance)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return string(raw)
		}
		return s
	}
	return string(raw)
}

// AddStationResponse echoes the submitted fields next to the outcome.
type AddStationResponse struct {
	Added    bool            `json:"added"`
	Station  string          `json:"station"`
	Line     string          `json:"line"`
	Distance json.RawMessage `json:"distance"`
}

func NewAddStationResponse(req AddStationRequest, added bool) AddStationResponse {
	distance := req.Distance
	if len(bytes.TrimSpace(distance)) == 0 {
		distance = json.RawMessage("null")
	}
	return AddStationResponse{
		Added:    added,
		Station:  req.Station,
		Line:     req.Line,
		Distance: distance,
	}
}

type SearchRequest struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Via   []string `json:"via"`
}

type ResetResponse struct {
	Message string `json:"message"`
}

// FareTableResponse lists the fare bands in ascending order.
type FareTableResponse struct {
	Currency    string            `json:"currency,omitempty"`
	MaxDistance float64           `json:"maxDistance"`
	Bands       []models.FareBand `json:"bands"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ErrorResponse doubles as the error variant of a search result.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func NewErrorResponse(message, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Error:     message,
		RequestID: requestID,
	}
}
