package models

import "github.com/shopspring/decimal"

// CartEntry is a product snapshot with its quantity. The product fields are
// flattened next to the quantity when serialized.
type CartEntry struct {
	Product
	Quantity int `json:"quantity"`
}

func (e CartEntry) LineTotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}
