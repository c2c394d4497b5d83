package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func init() {
	// catalog documents and API answers carry prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductID identifies a product. Catalogs may carry ids as JSON numbers or
// strings; both decode to the same textual form so 1 and "1" are equal.
type ProductID string

func (id ProductID) String() string {
	return string(id)
}

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("product id: %w", err)
		}
		*id = ProductID(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("product id must be a string or number, got %s", data)
	}
	*id = ProductID(data)
	return nil
}

// Specifications keeps the key order of the catalog document.
type Specifications = orderedmap.OrderedMap[string, any]

func NewSpecifications() *Specifications {
	return orderedmap.New[string, any]()
}

// Product is immutable once loaded from the catalog.
type Product struct {
	ID             ProductID       `json:"id" validate:"required"`
	Name           string          `json:"name" validate:"required"`
	Price          decimal.Decimal `json:"price"`
	Images         []string        `json:"images" validate:"required,min=1,dive,required"`
	Description    string          `json:"description"`
	Specifications *Specifications `json:"specifications,omitempty"`
}

// PrimaryImage is the first image of the gallery.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Matches reports whether the lower-cased term is a substring of the
// product name or description, ignoring case.
func (p Product) Matches(term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}
