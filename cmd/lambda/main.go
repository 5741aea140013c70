// Package main is the entry point for the product catalog Lambda function.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/pricofy/product-catalog/internal/app"
	"github.com/pricofy/product-catalog/internal/config"
	"github.com/pricofy/product-catalog/internal/obs"
)

// Built once per execution environment and shared by every invocation.
var catalogApp *app.App

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.Logger.Error("config_invalid", "error", err.Error())
		os.Exit(1)
	}
	obs.InitLogger(cfg.LogLevel)

	catalogApp, err = app.New(context.Background(), cfg)
	if err != nil {
		obs.Logger.Error("app_init_failed", "error", err.Error())
		os.Exit(1)
	}

	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event json.RawMessage) (interface{}, error) {
	// Keep-warm events are not API Gateway requests.
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, catalogApp.Lambda(), warmup)
	}

	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	return catalogApp.Handler.Handle(ctx, req)
}
