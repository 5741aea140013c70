package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/pricofy/product-catalog/internal/chunker"
)

// DefaultManagerFunction is the translation-manager Lambda name.
const DefaultManagerFunction = "pricofy-translation-manager"

// The translation manager has no language detection.
const defaultManagerSource = "en"

// InvokeAPI is the part of the Lambda client we use.
type InvokeAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// ManagerRequest is the request format of the translation-manager Lambda.
type ManagerRequest struct {
	Texts      []string `json:"texts"`
	SourceLang string   `json:"sourceLang"`
	TargetLang string   `json:"targetLang"`
}

// ManagerResponse is the response format of the translation-manager Lambda.
type ManagerResponse struct {
	Translations    []string `json:"translations,omitempty"`
	ChunksProcessed int      `json:"chunksProcessed,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// LambdaTranslator delegates to the translation-manager Lambda, which
// routes the pair to the right model.
type LambdaTranslator struct {
	client       InvokeAPI
	functionName string
	sourceLang   string
	// explicitSource is false when the source was left to auto-detection.
	explicitSource bool
	maxBytes       int
}

// NewLambdaTranslator creates a backend invoking functionName.
func NewLambdaTranslator(client InvokeAPI, functionName, sourceLang string, maxBytes int) *LambdaTranslator {
	if functionName == "" {
		functionName = DefaultManagerFunction
	}
	explicit := sourceLang != "" && sourceLang != AutoDetect
	if !explicit {
		sourceLang = defaultManagerSource
	}
	if maxBytes <= 0 {
		maxBytes = chunker.DefaultMaxBytes
	}
	return &LambdaTranslator{
		client:         client,
		functionName:   functionName,
		sourceLang:     managerLang(sourceLang),
		explicitSource: explicit,
		maxBytes:       maxBytes,
	}
}

// Translate sends all chunks of text in a single invocation.
func (t *LambdaTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	target := managerLang(targetLang)
	if t.explicitSource && target == t.sourceLang {
		return text, nil
	}

	texts := chunker.Split(text, t.maxBytes)
	if len(texts) == 0 {
		return "", fmt.Errorf("nothing to translate")
	}

	payload, err := json.Marshal(ManagerRequest{
		Texts:      texts,
		SourceLang: t.sourceLang,
		TargetLang: target,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	result, err := t.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(t.functionName),
		Payload:      payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke %s: %w", t.functionName, err)
	}

	// Check for Lambda errors
	if result.FunctionError != nil {
		return "", fmt.Errorf("lambda error: %s", *result.FunctionError)
	}

	var resp ManagerResponse
	if err := json.Unmarshal(result.Payload, &resp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Error != "" {
		return "", fmt.Errorf("translator error: %s", resp.Error)
	}
	if len(resp.Translations) != len(texts) {
		return "", fmt.Errorf("translator returned %d texts for %d chunks", len(resp.Translations), len(texts))
	}

	return strings.Join(resp.Translations, " "), nil
}

// managerLang converts "pt-BR" to the manager's "pt_BR" form.
func managerLang(code string) string {
	return strings.ReplaceAll(code, "-", "_")
}
