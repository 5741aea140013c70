// Package config provides runtime configuration values for the catalog.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Translation backends.
const (
	TranslatorAmazon = "amazon"
	TranslatorOpenAI = "openai"
	TranslatorLambda = "lambda"
)

// Keys. Each is read from the environment variable of the same name in
// upper case.
const (
	KeyTableName          = "table_name"
	KeyStore              = "store"
	KeySQLitePath         = "sqlite_path"
	KeyTranslator         = "translator"
	KeySourceLanguage     = "source_language"
	KeyTranslatorFunction = "translator_function"
	KeyOpenAIAPIKey       = "openai_api_key"
	KeyOpenAIModel        = "openai_model"
	KeyMaxChunkBytes      = "max_chunk_bytes"
	KeyBreakerMaxFailures = "breaker_max_failures"
	KeyBreakerTimeout     = "breaker_timeout"
	KeyEnvironment        = "environment"
	KeyLogLevel           = "log_level"
	KeyHTTPAddr           = "http_addr"
)

// Config holds the settings of one catalog process.
type Config struct {
	TableName  string
	Store      string
	SQLitePath string

	Translator         string
	SourceLanguage     string
	TranslatorFunction string
	OpenAIAPIKey       string
	OpenAIModel        string
	MaxChunkBytes      int

	// BreakerMaxFailures of 0 disables the circuit breaker.
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	Environment string
	LogLevel    string
	HTTPAddr    string
}

// NewViper returns a viper instance with defaults set and environment
// lookup enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyStore, StoreDynamoDB)
	v.SetDefault(KeySQLitePath, "catalog.db")
	v.SetDefault(KeyTranslator, TranslatorAmazon)
	v.SetDefault(KeySourceLanguage, "auto")
	v.SetDefault(KeyTranslatorFunction, "pricofy-translation-manager")
	v.SetDefault(KeyMaxChunkBytes, 9000)
	v.SetDefault(KeyBreakerMaxFailures, 5)
	v.SetDefault(KeyBreakerTimeout, 30*time.Second)
	v.SetDefault(KeyEnvironment, "dev")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.AutomaticEnv()
	return v
}

// FromViper reads a Config out of v.
func FromViper(v *viper.Viper) Config {
	return Config{
		TableName:          v.GetString(KeyTableName),
		Store:              strings.ToLower(v.GetString(KeyStore)),
		SQLitePath:         v.GetString(KeySQLitePath),
		Translator:         strings.ToLower(v.GetString(KeyTranslator)),
		SourceLanguage:     v.GetString(KeySourceLanguage),
		TranslatorFunction: v.GetString(KeyTranslatorFunction),
		OpenAIAPIKey:       v.GetString(KeyOpenAIAPIKey),
		OpenAIModel:        v.GetString(KeyOpenAIModel),
		MaxChunkBytes:      v.GetInt(KeyMaxChunkBytes),
		BreakerMaxFailures: v.GetInt(KeyBreakerMaxFailures),
		BreakerTimeout:     v.GetDuration(KeyBreakerTimeout),
		Environment:        v.GetString(KeyEnvironment),
		LogLevel:           v.GetString(KeyLogLevel),
		HTTPAddr:           v.GetString(KeyHTTPAddr),
	}
}

// Load collects configuration from the environment with defaults.
func Load() (Config, error) {
	cfg := FromViper(NewViper())
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and missing required settings.
func (c Config) Validate() error {
	switch c.Store {
	case StoreDynamoDB:
		if c.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required for the %s store", c.Store)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the %s store", c.Store)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreDynamoDB, StoreSQLite, StoreMemory)
	}

	switch c.Translator {
	case TranslatorAmazon, TranslatorLambda:
	case TranslatorOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the %s translator", c.Translator)
		}
	default:
		return fmt.Errorf("unknown translator %q (want %s, %s or %s)", c.Translator, TranslatorAmazon, TranslatorOpenAI, TranslatorLambda)
	}

	if c.MaxChunkBytes < 0 {
		return fmt.Errorf("MAX_CHUNK_BYTES must not be negative")
	}
	if c.BreakerMaxFailures < 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES must not be negative")
	}
	return nil
}
