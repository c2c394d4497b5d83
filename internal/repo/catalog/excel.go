package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Column headers recognised on the first row; every other non-empty header
// becomes a specification key, in column order.
const (
	columnID          = "id"
	columnName        = "name"
	columnPrice       = "price"
	columnImages      = "images"
	columnDescription = "description"
)

// ParseExcel reads products from the first sheet of an .xlsx workbook.
// The first row is the header. Images are separated by commas or new lines.
// Rows without a name are skipped; rows without an id get a random one.
func ParseExcel(r io.Reader) ([]models.Product, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("excel file has no data rows")
	}

	header := make([]string, len(rows[0]))
	columns := make(map[string]int)
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		key := strings.ToLower(header[i])
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}
	if _, ok := columns[columnName]; !ok {
		return nil, fmt.Errorf("excel header has no %q column", columnName)
	}
	if _, ok := columns[columnPrice]; !ok {
		return nil, fmt.Errorf("excel header has no %q column", columnPrice)
	}

	known := map[int]struct{}{}
	for _, name := range []string{columnID, columnName, columnPrice, columnImages, columnDescription} {
		if idx, ok := columns[name]; ok {
			known[idx] = struct{}{}
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	products := make([]models.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		name := cell(row, columnName)
		if name == "" {
			continue
		}

		priceStr := strings.ReplaceAll(cell(row, columnPrice), ",", "")
		price, err := decimal.NewFromString(strings.TrimPrefix(priceStr, "$"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price %q: %w", i+2, priceStr, err)
		}

		id := cell(row, columnID)
		if id == "" {
			id = uuid.NewString()
		}

		product := models.Product{
			ID:             models.ProductID(id),
			Name:           name,
			Price:          price,
			Images:         splitImages(cell(row, columnImages)),
			Description:    cell(row, columnDescription),
			Specifications: models.NewSpecifications(),
		}

		for idx, raw := range row {
			if _, used := known[idx]; used || idx >= len(header) || header[idx] == "" {
				continue
			}
			if value := strings.TrimSpace(raw); value != "" {
				product.Specifications.Set(header[idx], value)
			}
		}

		products = append(products, product)
	}

	return products, nil
}

func splitImages(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	images := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			images = append(images, p)
		}
	}
	return images
}
