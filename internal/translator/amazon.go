// Package translator provides the translation backends used by the
// translation cache: Amazon Translate, OpenAI chat completions and the
// translation-manager Lambda, plus a circuit breaker that wraps any of them.
package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	"github.com/pricofy/product-catalog/internal/chunker"
)

// AutoDetect asks Amazon Translate to detect the source language.
const AutoDetect = "auto"

// Translator is implemented by every backend in this package.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TranslateAPI is the part of the Amazon Translate client we use.
type TranslateAPI interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// AmazonTranslator translates with Amazon Translate.
type AmazonTranslator struct {
	client     TranslateAPI
	sourceLang string
	maxBytes   int
}

// NewAmazonTranslator creates an Amazon Translate backend. An empty
// sourceLang means auto-detection.
func NewAmazonTranslator(client TranslateAPI, sourceLang string, maxBytes int) *AmazonTranslator {
	if sourceLang == "" {
		sourceLang = AutoDetect
	}
	if maxBytes <= 0 {
		maxBytes = chunker.DefaultMaxBytes
	}
	return &AmazonTranslator{client: client, sourceLang: sourceLang, maxBytes: maxBytes}
}

// Translate sends text chunk by chunk and joins the results.
func (t *AmazonTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	chunks := chunker.Split(text, t.maxBytes)
	if len(chunks) == 0 {
		return "", fmt.Errorf("nothing to translate")
	}

	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := t.client.TranslateText(ctx, &translate.TranslateTextInput{
			Text:               aws.String(chunk),
			SourceLanguageCode: aws.String(t.sourceLang),
			TargetLanguageCode: aws.String(targetLang),
		})
		if err != nil {
			return "", fmt.Errorf("chunk %d/%d failed: %w", i+1, len(chunks), err)
		}
		if out == nil || out.TranslatedText == nil {
			return "", fmt.Errorf("chunk %d/%d: no translated text returned", i+1, len(chunks))
		}
		translated = append(translated, *out.TranslatedText)
	}

	return strings.Join(translated, " "), nil
}
