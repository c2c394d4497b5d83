package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ProductID
		wantErr bool
	}{
		{name: "number", in: `1`, want: "1"},
		{name: "string", in: `"1"`, want: "1"},
		{name: "padded string", in: `" sku-9 "`, want: "sku-9"},
		{name: "null", in: `null`, want: ""},
		{name: "bool", in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ProductID
			err := json.Unmarshal([]byte(tt.in), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestProductDecodeKeepsSpecificationOrder(t *testing.T) {
	raw := `{
		"id": 3,
		"name": "Desk Lamp",
		"price": 24.5,
		"images": ["a.jpg", "b.jpg"],
		"description": "Warm light",
		"specifications": {"Wattage": "9W", "Color": "Black", "Adjustable": true}
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, ProductID("3"), p.ID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("24.5")))
	assert.Equal(t, "a.jpg", p.PrimaryImage())

	var keys []string
	for pair := p.Specifications.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"Wattage", "Color", "Adjustable"}, keys)
}

func TestCartEntrySerializesFlat(t *testing.T) {
	entry := CartEntry{
		Product: Product{
			ID:     "7",
			Name:   "Mug",
			Price:  decimal.RequireFromString("5"),
			Images: []string{"mug.jpg"},
		},
		Quantity: 2,
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "7", flat["id"])
	assert.Equal(t, "Mug", flat["name"])
	assert.EqualValues(t, 2, flat["quantity"])

	var back CartEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, entry.ID, back.ID)
	assert.Equal(t, 2, back.Quantity)
	assert.True(t, back.LineTotal().Equal(decimal.RequireFromString("10")))
}

func TestProductEncodesPriceAsNumber(t *testing.T) {
	p := Product{ID: "1", Name: "Lamp", Price: decimal.RequireFromString("10.5"), Images: []string{"lamp.jpg"}}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":10.5`)

	var back Product
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Price.Equal(p.Price))

	// snapshots written before prices were numbers still load
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"Lamp","price":"10.5","images":["lamp.jpg"]}`), &back))
	assert.True(t, back.Price.Equal(p.Price))
}

func TestProductMatches(t *testing.T) {
	p := Product{Name: "Running Shoes", Description: "Lightweight TRAIL runner"}
	assert.True(t, p.Matches(""))
	assert.True(t, p.Matches("shoe"))
	assert.True(t, p.Matches("SHOES"))
	assert.True(t, p.Matches("trail"))
	assert.False(t, p.Matches("boots"))
}
