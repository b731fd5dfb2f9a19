package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"stylesync-backend/internal/di"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container
	coldStart *di.ColdStartTracker
)

// init builds the container once per execution environment.
func init() {
	coldStart = di.NewColdStartTracker()

	var err error
	// Sweepers and the event queue live as long as the execution environment,
	// so the cleanup is never run.
	container, _, err = di.InitializeContainer(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	container.Start(context.Background())

	chiLambda = chiadapter.NewV2(container.Router)
}

// Handler proxies API Gateway HTTP API requests into the router.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	cold, sinceStart := coldStart.Invocation()
	if cold {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = sinceStart.String()
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Lambda-Request-ID"] = req.RequestContext.RequestID
	}

	container.Logger.Info("Lambda request handled",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
		zap.Bool("cold_start", cold),
	)
	if err != nil {
		container.Logger.Error("Lambda proxy failed", zap.Error(err))
	}
	return resp, err
}

func main() {
	lambda.Start(Handler)
}
