// Package app wires the configured store and translation backend into the
// catalog services. Clients are created once per process and shared by
// every request.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/sashabaranov/go-openai"

	"github.com/pricofy/product-catalog/internal/catalog"
	"github.com/pricofy/product-catalog/internal/config"
	"github.com/pricofy/product-catalog/internal/handler"
	"github.com/pricofy/product-catalog/internal/obs"
	"github.com/pricofy/product-catalog/internal/store/dynamo"
	"github.com/pricofy/product-catalog/internal/store/memory"
	"github.com/pricofy/product-catalog/internal/store/sqlite"
	"github.com/pricofy/product-catalog/internal/translation"
	"github.com/pricofy/product-catalog/internal/translator"
)

// App holds the process-wide services.
type App struct {
	Config       config.Config
	AWS          aws.Config
	Catalog      *catalog.Accessor
	Translations *translation.Manager
	Handler      *handler.Handler

	lambdaClient *lambdasdk.Client
	closers      []func() error
}

// New builds the services described by cfg.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	a := &App{
		Config:       cfg,
		AWS:          awsCfg,
		lambdaClient: lambdasdk.NewFromConfig(awsCfg),
	}

	store, err := a.newStore()
	if err != nil {
		return nil, err
	}
	backend, err := a.newTranslator()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Catalog = catalog.New(store)
	a.Translations = translation.NewManager(a.Catalog, backend)
	a.Handler = handler.New(a.Catalog, a.Translations)

	obs.Logger.Info("app_initialized",
		"store", cfg.Store,
		"translator", cfg.Translator,
		"environment", cfg.Environment,
	)
	return a, nil
}

// Lambda returns the Lambda client built by New. Warmup self-invocation
// and the lambda translator share it.
func (a *App) Lambda() *lambdasdk.Client {
	return a.lambdaClient
}

// Close releases resources held by the store.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) newStore() (catalog.Store, error) {
	switch a.Config.Store {
	case config.StoreDynamoDB:
		return dynamo.New(dynamodb.NewFromConfig(a.AWS), a.Config.TableName), nil
	case config.StoreSQLite:
		s, err := sqlite.Open(a.Config.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.StoreMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store %q", a.Config.Store)
}

func (a *App) newTranslator() (translation.Translator, error) {
	var t translation.Translator
	switch a.Config.Translator {
	case config.TranslatorAmazon:
		t = translator.NewAmazonTranslator(translate.NewFromConfig(a.AWS), a.Config.SourceLanguage, a.Config.MaxChunkBytes)
	case config.TranslatorOpenAI:
		t = translator.NewOpenAITranslator(openai.NewClient(a.Config.OpenAIAPIKey), a.Config.OpenAIModel)
	case config.TranslatorLambda:
		t = translator.NewLambdaTranslator(a.Lambda(), a.Config.TranslatorFunction, a.Config.SourceLanguage, a.Config.MaxChunkBytes)
	default:
		return nil, fmt.Errorf("unknown translator %q", a.Config.Translator)
	}

	if a.Config.BreakerMaxFailures > 0 {
		t = translator.NewBreaker(a.Config.Translator, t, uint32(a.Config.BreakerMaxFailures), a.Config.BreakerTimeout)
	}
	return t, nil
}
