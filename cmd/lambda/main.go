package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/app"
	"github.com/fareroute/backend-go/internal/config"
	"github.com/fareroute/backend-go/internal/handler"
)

var (
	lambdaStart    = lambda.Start // Allow mocking of lambda.Start in tests
	gatewayHandler *handler.GatewayHandler
	setupOnce      sync.Once
)

func setup() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		// The in-process store does not survive between invocations.
		if !cfg.Store.Remote() {
			log.Warn().Msg("Lambda is running with the memory store")
		}

		a, err := app.New(context.Background(), cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize fare service")
		}

		gatewayHandler = handler.NewGatewayHandler(a.Service)
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return gatewayHandler.HandleRequest(ctx, request)
}

func main() {
	setup()
	lambdaStart(handleRequest)
}
