package main

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLambdaMain(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ARCHIVE_BUCKET", "")

	var started interface{}
	original := lambdaStart
	lambdaStart = func(h interface{}) { started = h }
	defer func() { lambdaStart = original }()

	main()

	require.NotNil(t, started)
	assert.Equal(t, reflect.ValueOf(handleRequest).Pointer(), reflect.ValueOf(started).Pointer())
	require.NotNil(t, gatewayHandler)

	resp, err := handleRequest(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/addStation",
		Body:       `{"line":"L1","station":"A","distance":0}`,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"added":true,"station":"A","line":"L1","distance":0}`, resp.Body)
}
