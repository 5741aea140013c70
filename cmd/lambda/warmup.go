package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/pricofy/product-catalog/internal/obs"
)

const (
	// WarmupSource is the "source" value of scheduled keep-warm events.
	WarmupSource = "warmup"

	// WarmupDelay holds the instance busy long enough for sibling
	// invocations to land on other instances.
	WarmupDelay = 75 * time.Millisecond

	maxWarmupConcurrency = 50
)

// Invoker is the part of the Lambda client used for fan-out.
type Invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// WarmupEvent is the keep-warm payload. Concurrency asks this instance to
// wake that many siblings.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse reports how many instances a keep-warm event touched.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// WarmupResult is what the function returns for a keep-warm event.
type WarmupResult struct {
	StatusCode int            `json:"statusCode"`
	Body       WarmupResponse `json:"body"`
}

// IsWarmupEvent reports whether event is a keep-warm payload. API Gateway
// events carry no top-level "source" field.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var head struct {
		Source      *string  `json:"source"`
		Concurrency *float64 `json:"concurrency"`
	}
	if err := json.Unmarshal(event, &head); err != nil {
		return nil, false
	}
	if head.Source == nil || *head.Source != WarmupSource {
		return nil, false
	}

	warmup := &WarmupEvent{Source: WarmupSource}
	if head.Concurrency != nil && *head.Concurrency > 0 {
		warmup.Concurrency = min(int(*head.Concurrency), maxWarmupConcurrency)
	}
	return warmup, true
}

// HandleWarmup wakes warmup.Concurrency sibling instances, then holds this
// one for WarmupDelay.
func HandleWarmup(ctx context.Context, client Invoker, warmup *WarmupEvent) (WarmupResult, error) {
	warmed := 1

	if warmup.Concurrency > 0 {
		fn := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
		if err := wakeSiblings(ctx, client, fn, warmup.Concurrency); err != nil {
			obs.Logger.Warn("warmup_fanout_failed", "function", fn, "error", err.Error())
		} else {
			warmed += warmup.Concurrency
		}
	}

	time.Sleep(WarmupDelay)

	obs.Logger.Debug("warmup_handled", "instances_warmed", warmed)
	return WarmupResult{
		StatusCode: http.StatusOK,
		Body:       WarmupResponse{Status: "warm", InstancesWarmed: warmed},
	}, nil
}

// wakeSiblings fires n async invocations of fn. Siblings get a zero
// concurrency so they do not fan out again.
func wakeSiblings(ctx context.Context, client Invoker, fn string, n int) error {
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	errs := make(chan error, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(fn),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var all []error
	for err := range errs {
		all = append(all, err)
	}
	return errors.Join(all...)
}
