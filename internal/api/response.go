package api

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/fareroute/backend-go/internal/models"
)

// StatusFor maps a service error onto an HTTP status. Missing station data is
// reported as a bad request.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case models.IsValidation(err), models.IsNotFound(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides store internals from clients.
func PublicMessage(err error) string {
	if StatusFor(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("internal server error", http.StatusInternalServerError, "")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers(),
		Body:       string(jsonBody),
	}, nil
}

func Error(message string, statusCode int, requestID string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message, requestID))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers(),
		Body:       string(body),
	}, nil
}

// FromError renders err with the status StatusFor picks.
func FromError(err error, requestID string) (events.APIGatewayProxyResponse, error) {
	return Error(PublicMessage(err), StatusFor(err), requestID)
}

func headers() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}
