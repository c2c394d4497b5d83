package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/storefront/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestConvertCatalog(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "products.xlsx")
	out := filepath.Join(dir, "products.json")
	writeWorkbook(t, in, [][]any{
		{"id", "name", "price", "images", "description", "Material"},
		{"1", "Lamp", "19.99", "lamp.jpg", "Desk lamp", "steel"},
		{"2", "Mug", "5", "mug.jpg,mug-2.jpg", "Ceramic mug", "ceramic"},
	})

	n, err := convertCatalog(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	products, err := store.ParseCatalog(data, validator.New())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, []string{"mug.jpg", "mug-2.jpg"}, products[1].Images)
	material, ok := products[0].Specifications.Get("Material")
	require.True(t, ok)
	assert.Equal(t, "steel", material)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 19.99, raw[0]["price"], "prices are written as JSON numbers")
	assert.Equal(t, 5.0, raw[1]["price"])
}

func TestConvertCatalog_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "products.xlsx")
	writeWorkbook(t, in, [][]any{
		{"id", "name", "price", "images"},
		{"1", "Lamp", "10", ""},
	})

	_, err := convertCatalog(context.Background(), in, filepath.Join(dir, "products.json"))
	assert.ErrorContains(t, err, "invalid catalog")
}

func TestCatalogValidateCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":1,"name":"Lamp","price":10,"images":["a.jpg"]}]`), 0o644))

	cmd := newCatalogValidateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--source", path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "1 products OK"))

	cmd = newCatalogValidateCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--source", filepath.Join(dir, "missing.json")})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestSampleCatalog(t *testing.T) {
	// served by default, CATALOG_SOURCE=products.json from the repository root
	data, err := os.ReadFile(filepath.Join("..", "products.json"))
	require.NoError(t, err)

	products, err := store.ParseCatalog(data, validator.New())
	require.NoError(t, err)
	assert.NotEmpty(t, products)
	for _, p := range products {
		assert.True(t, p.Price.IsPositive(), p.Name)
	}
}
