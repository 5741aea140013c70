package handler

import (
	"encoding/json"

	"github.com/pricofy/product-catalog/internal/domain"
)

// ProductView is the JSON shape of a record. Price is rendered as a JSON
// number, not the quoted string decimal.Decimal marshals to.
type ProductView struct {
	Category     string            `json:"category"`
	ProductID    string            `json:"productId"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        json.Number       `json:"price"`
	InStock      bool              `json:"inStock"`
	Translations map[string]string `json:"translations,omitempty"`
	UpdatedAt    string            `json:"updatedAt,omitempty"`
}

func NewProductView(rec domain.Record) ProductView {
	return ProductView{
		Category:     rec.Category,
		ProductID:    rec.ProductID,
		Name:         rec.Name,
		Description:  rec.Description,
		Price:        json.Number(rec.Price.String()),
		InStock:      rec.InStock,
		Translations: rec.Translations,
		UpdatedAt:    rec.UpdatedAt,
	}
}

// NewProductViews never returns nil, so an empty result encodes as [].
func NewProductViews(recs []domain.Record) []ProductView {
	out := make([]ProductView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, NewProductView(rec))
	}
	return out
}
