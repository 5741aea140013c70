package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/product-catalog/internal/config"
	"github.com/pricofy/product-catalog/internal/domain"
	"github.com/pricofy/product-catalog/internal/translator"
)

func testConfig() config.Config {
	return config.Config{
		Store:              config.StoreMemory,
		Translator:         config.TranslatorLambda,
		TranslatorFunction: "fn",
		BreakerMaxFailures: 3,
		BreakerTimeout:     time.Second,
	}
}

func TestNew_Memory(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")

	a, err := New(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Catalog)
	require.NotNil(t, a.Translations)
	require.NotNil(t, a.Handler)
	require.NotNil(t, a.Lambda(), "lambda client is built with the other clients")
	assert.Same(t, a.Lambda(), a.Lambda())

	price := decimal.RequireFromString("1")
	_, err = a.Catalog.Create(context.Background(), domain.CreateInput{
		Category: "books", ProductID: "b1", Description: "A guide", Price: &price,
	})
	require.NoError(t, err)

	got, err := a.Catalog.Query(context.Background(), "books", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNew_SQLite(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	cfg := testConfig()
	cfg.Store = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "catalog.db")

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Store = "redis"

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown store")
}

func TestNewTranslator_Breaker(t *testing.T) {
	a := &App{Config: testConfig()}

	tr, err := a.newTranslator()
	require.NoError(t, err)
	assert.IsType(t, &translator.Breaker{}, tr)

	a.Config.BreakerMaxFailures = 0
	tr, err = a.newTranslator()
	require.NoError(t, err)
	assert.IsType(t, &translator.LambdaTranslator{}, tr)
}
