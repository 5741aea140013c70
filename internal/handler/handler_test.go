package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricofy/product-catalog/internal/catalog"
	"github.com/pricofy/product-catalog/internal/domain"
	"github.com/pricofy/product-catalog/internal/store/memory"
	"github.com/pricofy/product-catalog/internal/translation"
)

type stubTranslator struct {
	calls int
	err   error
}

func (s *stubTranslator) Translate(_ context.Context, text, targetLang string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("[%s] %s", targetLang, text), nil
}

func newTestHandler(t *testing.T) (*Handler, *stubTranslator) {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	acc := catalog.New(memory.New(), catalog.WithClock(clock))
	tr := &stubTranslator{}
	return New(acc, translation.NewManager(acc, tr)), tr
}

func do(t *testing.T, h *Handler, method, path, body string, query map[string]string) events.APIGatewayProxyResponse {
	t.Helper()
	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:            method,
		Path:                  path,
		Body:                  body,
		QueryStringParameters: query,
	})
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp events.APIGatewayProxyResponse) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &v), resp.Body)
	return v
}

func TestCreateThenQuery(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := do(t, h, "POST", "/products", `{"category":"books","productId":"b1","description":"A guide","price":10.5}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	created := decode[messageResponse](t, resp)
	assert.Equal(t, "Item created successfully", created.Message)
	assert.Equal(t, "b1", created.Item.Name)
	assert.True(t, created.Item.InStock)
	assert.Equal(t, json.Number("10.5"), created.Item.Price)

	resp = do(t, h, "GET", "/products/books", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode[[]ProductView](t, resp)
	require.Len(t, items, 1)
	assert.Equal(t, "b1", items[0].ProductID)
	assert.Equal(t, "2024-05-01T10:00:00Z", items[0].UpdatedAt)
	assert.Contains(t, resp.Body, `"price":10.5`, "price renders as a JSON number")
}

func TestQuery_EmptyIsArray(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := do(t, h, "GET", "/products/games", "", map[string]string{"filter": "x"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", resp.Body)
}

func TestQuery_MissingCategory(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := do(t, h, "GET", "/products", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, resp.Body, "category is required")
}

func TestCreate_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "request body is required"},
		{"malformed json", "{", "invalid request body"},
		{"bad price", `{"category":"c","productId":"p","description":"d","price":"abc"}`, "invalid request body"},
		{"quoted price", `{"category":"c","productId":"p","description":"d","price":"9.99"}`, "price must be a JSON number"},
		{"missing fields", `{"category":"c"}`, "missing required fields"},
		{"negative price", `{"category":"c","productId":"p","description":"d","price":-1}`, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, h, "POST", "/products", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[errorResponse](t, resp)
			assert.Equal(t, "Invalid request", body.Message)
			assert.Contains(t, body.Error, tt.want)
		})
	}
}

func TestCreate_Base64Body(t *testing.T) {
	h, _ := newTestHandler(t)
	raw := `{"category":"books","productId":"b1","description":"A guide","price":3.00,"inStock":false}`

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Path:            "/products",
		Body:            base64.StdEncoding.EncodeToString([]byte(raw)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	item := decode[messageResponse](t, resp).Item
	assert.False(t, item.InStock)
	assert.Equal(t, json.Number("3"), item.Price)
}

func TestUpdate(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/products", `{"category":"books","productId":"b1","name":"Go","description":"A guide","price":10}`, nil)

	resp := do(t, h, "PUT", "/products/books/b1", `{"price":12,"inStock":false}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	updated := decode[messageResponse](t, resp)
	assert.Equal(t, "Item updated successfully", updated.Message)
	assert.Equal(t, json.Number("12"), updated.Item.Price)
	assert.False(t, updated.Item.InStock)
	assert.Equal(t, "Go", updated.Item.Name)
	assert.Equal(t, "A guide", updated.Item.Description)
}

func TestUpdate_Errors(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/products", `{"category":"books","productId":"b1","description":"A guide","price":10}`, nil)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"no fields", "/products/books/b1", `{}`, http.StatusBadRequest},
		{"no body", "/products/books/b1", "", http.StatusBadRequest},
		{"malformed", "/products/books/b1", `{"price":`, http.StatusBadRequest},
		{"quoted price", "/products/books/b1", `{"price":"9.99"}`, http.StatusBadRequest},
		{"unknown record", "/products/books/zz", `{"name":"x"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, h, "PUT", tt.path, tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode, resp.Body)
		})
	}
}

func TestGet(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/products", `{"category":"books","productId":"b1","description":"A guide","price":10}`, nil)

	resp := do(t, h, "GET", "/products/books/b1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A guide", decode[ProductView](t, resp).Description)

	resp = do(t, h, "GET", "/products/books/zz", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Item not found", decode[errorResponse](t, resp).Message)
}

func TestTranslate(t *testing.T) {
	h, tr := newTestHandler(t)
	do(t, h, "POST", "/products", `{"category":"books","productId":"b1","description":"A guide","price":10}`, nil)

	resp := do(t, h, "GET", "/products/books/b1/translation", "", map[string]string{"language": "es"})
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	first := decode[domain.TranslationResult](t, resp)
	assert.Equal(t, "A guide", first.OriginalText)
	assert.Equal(t, "[es] A guide", first.TranslatedText)
	assert.False(t, first.CacheHit)

	resp = do(t, h, "GET", "/products/books/b1/translation", "", map[string]string{"language": "es"})
	assert.True(t, decode[domain.TranslationResult](t, resp).CacheHit)
	assert.Equal(t, 1, tr.calls)
}

func TestTranslate_Errors(t *testing.T) {
	h, tr := newTestHandler(t)
	do(t, h, "POST", "/products", `{"category":"books","productId":"b1","description":"A guide","price":10}`, nil)

	resp := do(t, h, "GET", "/products/books/b1/translation", "", map[string]string{"language": "ENGLISH"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, h, "GET", "/products/books/b1/translation", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, h, "GET", "/products/books/zz/translation", "", map[string]string{"language": "es"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	tr.err = errors.New("service unavailable")
	resp = do(t, h, "GET", "/products/books/b1/translation", "", map[string]string{"language": "fr"})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Translation failed", decode[errorResponse](t, resp).Message)
}

func TestRouting(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := do(t, h, "GET", "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, h, "DELETE", "/products/books/b1", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "OPTIONS, GET, PUT", resp.Headers["Allow"])

	resp = do(t, h, "OPTIONS", "/products/books", "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}

func TestPathParametersWin(t *testing.T) {
	h, _ := newTestHandler(t)
	do(t, h, "POST", "/products", `{"category":"100% cotton","productId":"t1","description":"Shirt","price":5}`, nil)

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:     "GET",
		Path:           "/products/cotton",
		PathParameters: map[string]string{"category": "100% cotton"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]ProductView](t, resp), 1)
}

func TestCORSOnEveryResponse(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, resp := range []events.APIGatewayProxyResponse{
		do(t, h, "GET", "/products/books", "", nil),
		do(t, h, "GET", "/products", "", nil),
		do(t, h, "GET", "/nowhere", "", nil),
	} {
		assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
		assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	}
}

type brokenCatalog struct{ Catalog }

func (brokenCatalog) Query(context.Context, string, string) ([]domain.Record, error) {
	return nil, fmt.Errorf("%w: query failed: connection reset", domain.ErrBackend)
}

func TestBackendErrorIs500(t *testing.T) {
	h := New(brokenCatalog{}, nil)

	resp := do(t, h, "GET", "/products/books", "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Equal(t, "Internal server error", body.Message)
	assert.Contains(t, body.Error, "connection reset")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: x", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: x", domain.ErrTranslation), http.StatusBadGateway},
		{fmt.Errorf("%w: x", domain.ErrBackend), http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHTTPHandler(t *testing.T) {
	h, _ := newTestHandler(t)
	srv := httptest.NewServer(NewHTTPHandler(h))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/products", "application/json",
		strings.NewReader(`{"category":"home garden","productId":"g1","description":"Rake","price":7.25}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(srv.URL + "/products/home%20garden?filter=Rake")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var items []ProductView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	require.Len(t, items, 1)
	assert.Equal(t, json.Number("7.25"), items[0].Price)
}

func TestHTTPHandler_KeepsRequestID(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/books", nil)
	req.Header.Set("X-Request-Id", "req-123")

	NewHTTPHandler(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "[]", rec.Body.String())
}
