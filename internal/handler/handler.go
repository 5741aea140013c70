// Package handler serves the catalog API from API Gateway proxy events.
package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"

	"github.com/pricofy/product-catalog/internal/domain"
	"github.com/pricofy/product-catalog/internal/obs"
	"github.com/pricofy/product-catalog/internal/router"
)

// Catalog is the catalog accessor as seen by the handler.
type Catalog interface {
	Query(ctx context.Context, category, filter string) ([]domain.Record, error)
	Get(ctx context.Context, category, productID string) (*domain.Record, error)
	Create(ctx context.Context, in domain.CreateInput) (*domain.Record, error)
	PartialUpdate(ctx context.Context, in domain.UpdateInput) (*domain.Record, error)
}

// Translations serves cached description translations.
type Translations interface {
	Translate(ctx context.Context, category, productID, targetLang string) (*domain.TranslationResult, error)
}

// Handler routes proxy requests to the catalog and translation services.
type Handler struct {
	catalog      Catalog
	translations Translations
}

// New creates a Handler.
func New(catalog Catalog, translations Translations) *Handler {
	return &Handler{catalog: catalog, translations: translations}
}

// createRequest is the POST /products body. Unknown fields are ignored.
type createRequest struct {
	Category    string     `json:"category"`
	ProductID   string     `json:"productId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       *jsonPrice `json:"price"`
	InStock     *bool      `json:"inStock"`
}

// updateRequest is the PUT body. Absent fields stay untouched.
type updateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Price       *jsonPrice `json:"price"`
	InStock     *bool      `json:"inStock"`
}

// jsonPrice decodes a JSON number exactly. Quoted prices are rejected.
type jsonPrice struct {
	decimal.Decimal
}

func (p *jsonPrice) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return errors.New("price must be a JSON number")
	}
	return p.Decimal.UnmarshalJSON(data)
}

func (p *jsonPrice) value() *decimal.Decimal {
	if p == nil {
		return nil
	}
	d := p.Decimal
	return &d
}

type messageResponse struct {
	Message string      `json:"message"`
	Item    ProductView `json:"item"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Handle serves one request. Request failures are rendered into the
// response; the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	resp := h.serve(ctx, req)
	obs.Logger.Info("request_handled",
		"method", req.HTTPMethod,
		"path", req.Path,
		"status", resp.StatusCode,
		"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
		"request_id", req.RequestContext.RequestID,
	)
	return resp, nil
}

func (h *Handler) serve(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	route, err := router.Resolve(req.HTTPMethod, req.Path)
	switch {
	case errors.Is(err, router.ErrNoRoute):
		return respond(http.StatusNotFound, errorResponse{Message: "Not found", Error: err.Error()})
	case errors.Is(err, router.ErrMethodNotAllowed):
		resp := respond(http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed", Error: err.Error()})
		resp.Headers["Allow"] = strings.Join(router.Allowed(req.Path), ", ")
		return resp
	}
	// API Gateway hands over decoded path parameters.
	if v := req.PathParameters["category"]; v != "" {
		route.Category = v
	}
	if v := req.PathParameters["productId"]; v != "" {
		route.ProductID = v
	}

	switch route.Op {
	case router.OpPreflight:
		return preflight()
	case router.OpMissingCategory:
		return fail(fmt.Errorf("%w: category is required", domain.ErrValidation))
	case router.OpQuery:
		return h.query(ctx, route, req)
	case router.OpGet:
		return h.get(ctx, route)
	case router.OpCreate:
		return h.create(ctx, req)
	case router.OpUpdate:
		return h.update(ctx, route, req)
	case router.OpTranslate:
		return h.translate(ctx, route, req)
	}
	return fail(fmt.Errorf("unhandled operation %q", route.Op))
}

func (h *Handler) query(ctx context.Context, route router.Route, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	records, err := h.catalog.Query(ctx, route.Category, req.QueryStringParameters["filter"])
	if err != nil {
		return fail(err)
	}
	return respond(http.StatusOK, NewProductViews(records))
}

func (h *Handler) get(ctx context.Context, route router.Route) events.APIGatewayProxyResponse {
	rec, err := h.catalog.Get(ctx, route.Category, route.ProductID)
	if err != nil {
		return fail(err)
	}
	return respond(http.StatusOK, NewProductView(*rec))
}

func (h *Handler) create(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return fail(err)
	}
	if len(body) == 0 {
		return fail(fmt.Errorf("%w: request body is required", domain.ErrValidation))
	}

	var in createRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return fail(fmt.Errorf("%w: invalid request body: %w", domain.ErrValidation, err))
	}

	rec, err := h.catalog.Create(ctx, domain.CreateInput{
		Category:    in.Category,
		ProductID:   in.ProductID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.value(),
		InStock:     in.InStock,
	})
	if err != nil {
		return fail(err)
	}
	return respond(http.StatusCreated, messageResponse{Message: "Item created successfully", Item: NewProductView(*rec)})
}

func (h *Handler) update(ctx context.Context, route router.Route, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body, err := requestBody(req)
	if err != nil {
		return fail(err)
	}

	var in updateRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &in); err != nil {
			return fail(fmt.Errorf("%w: invalid request body: %w", domain.ErrValidation, err))
		}
	}

	rec, err := h.catalog.PartialUpdate(ctx, domain.UpdateInput{
		Category:    route.Category,
		ProductID:   route.ProductID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.value(),
		InStock:     in.InStock,
	})
	if err != nil {
		return fail(err)
	}
	return respond(http.StatusOK, messageResponse{Message: "Item updated successfully", Item: NewProductView(*rec)})
}

func (h *Handler) translate(ctx context.Context, route router.Route, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	result, err := h.translations.Translate(ctx, route.Category, route.ProductID, req.QueryStringParameters["language"])
	if err != nil {
		return fail(err)
	}
	return respond(http.StatusOK, result)
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, nil
	}
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 body: %w", domain.ErrValidation, err)
	}
	return b, nil
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTranslation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(err error) events.APIGatewayProxyResponse {
	status := StatusFor(err)
	var message string
	switch status {
	case http.StatusBadRequest:
		message = "Invalid request"
	case http.StatusNotFound:
		message = "Item not found"
	case http.StatusBadGateway:
		message = "Translation failed"
	default:
		message = "Internal server error"
		obs.Logger.Error("request_failed", "error", err.Error())
	}
	return respond(status, errorResponse{Message: message, Error: err.Error()})
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"message":"Internal server error","error":"failed to encode response"}`)
	}
	headers := corsHeaders()
	headers["Content-Type"] = "application/json"
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(b),
	}
}

func preflight() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusNoContent,
		Headers:    corsHeaders(),
	}
}

func corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	}
}
