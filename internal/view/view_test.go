package view

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/store"
	"github.com/nguyentranbao-ct/storefront/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducts() []models.Product {
	specs := models.NewSpecifications()
	specs.Set("Color", "black")
	specs.Set("Weight", 1.5)
	specs.Set("Ports", []any{"USB-C", "HDMI"})
	return []models.Product{
		{
			ID: "1", Name: "Lamp", Price: decimal.RequireFromString("10"),
			Images: []string{"lamp.jpg", "lamp-2.jpg"}, Description: "Desk lamp", Specifications: specs,
		},
		{
			ID: "2", Name: "Mug", Price: decimal.RequireFromString("5"),
			Images: []string{"mug.jpg"}, Description: "Ceramic mug",
		},
	}
}

func testSnapshot() *usecase.Snapshot {
	products := testProducts()
	return &usecase.Snapshot{
		Catalog: store.NewCatalog(products),
		Cart: []models.CartEntry{
			{Product: products[0], Quantity: 1},
			{Product: products[1], Quantity: 2},
		},
		Wishlist: []models.Product{products[1]},
	}
}

func TestGrid(t *testing.T) {
	page := Grid(testSnapshot(), "")
	require.Len(t, page.Products, 2)
	assert.False(t, page.Products[0].Wishlisted)
	assert.True(t, page.Products[1].Wishlisted)
	assert.True(t, page.Products[0].InCart)
	assert.Equal(t, "lamp.jpg", page.Products[0].Image)
	assert.Equal(t, 3, page.CartCount)
	assert.Empty(t, page.Error)

	page = Grid(testSnapshot(), "MUG")
	require.Len(t, page.Products, 1)
	assert.Equal(t, "MUG", page.Search)

	page = Grid(testSnapshot(), "sofa")
	assert.Empty(t, page.Products)
	assert.True(t, page.NoResults)
}

func TestGrid_LoadError(t *testing.T) {
	snap := testSnapshot()
	snap.Catalog = nil
	snap.CatalogErr = &models.LoadError{Source: "products.json", Err: errors.New("boom")}

	page := Grid(snap, "")
	assert.Equal(t, MessageLoadError, page.Error)
	assert.Empty(t, page.Products)

	// cart and wishlist still render from persisted state
	assert.Len(t, Cart(snap).Lines, 2)
	assert.Len(t, Wishlist(snap).Items, 1)
}

func TestCart(t *testing.T) {
	page := Cart(testSnapshot())
	require.Len(t, page.Lines, 2)
	assert.Equal(t, "10.00", page.Lines[1].LineTotal.StringFixed(2))
	assert.Equal(t, "20.00", page.Subtotal.StringFixed(2))
	assert.Empty(t, page.Empty)

	page = Cart(&usecase.Snapshot{})
	assert.Equal(t, MessageEmptyCart, page.Empty)
	assert.True(t, page.Subtotal.IsZero())
}

func TestWishlist(t *testing.T) {
	page := Wishlist(testSnapshot())
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Wishlisted)

	page = Wishlist(&usecase.Snapshot{})
	assert.Equal(t, MessageEmptyWishlist, page.Empty)
}

func TestDetail(t *testing.T) {
	page := Detail(testSnapshot(), "1", "1")
	require.NotNil(t, page.Product)
	assert.Equal(t, "Lamp", page.Title)
	assert.Equal(t, "lamp-2.jpg", page.MainImage)
	require.Len(t, page.Thumbnails, 2)
	assert.False(t, page.Thumbnails[0].Active)
	assert.True(t, page.Thumbnails[1].Active)
	assert.Equal(t, []Spec{
		{Key: "Color", Value: "black"},
		{Key: "Weight", Value: "1.5"},
		{Key: "Ports", Value: `["USB-C","HDMI"]`},
	}, page.Specs)

	for _, image := range []string{"", "9", "-1", "abc"} {
		page = Detail(testSnapshot(), "1", image)
		assert.Equal(t, "lamp.jpg", page.MainImage, image)
	}

	page = Detail(testSnapshot(), "2", "")
	assert.True(t, page.Product.Wishlisted)
	assert.Empty(t, page.Specs)

	page = Detail(testSnapshot(), "404", "")
	assert.Nil(t, page.Product)
	assert.Equal(t, MessageNotFound, page.Message)

	snap := testSnapshot()
	snap.Catalog = nil
	page = Detail(snap, "1", "")
	assert.Equal(t, MessageLoadError, page.Message)
}

func TestRenderer(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	render := func(page Page, data any) string {
		t.Helper()
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, page, data))
		return buf.String()
	}

	t.Run("grid", func(t *testing.T) {
		page := Grid(testSnapshot(), "")
		page.Path = "/"
		page.Notification = models.Success("Lamp added to cart!")
		html := render(PageHome, page)
		assert.Contains(t, html, "Lamp added to cart!")
		assert.Contains(t, html, `class="notification show success"`)
		assert.Contains(t, html, "$10.00")
		assert.Contains(t, html, `href="/product?id=1"`)
		assert.Contains(t, html, `class="toggle-wishlist active"`)
		assert.Contains(t, html, `<span class="cart-count">3</span>`)
	})

	t.Run("grid error", func(t *testing.T) {
		snap := testSnapshot()
		snap.Catalog = nil
		html := render(PageHome, Grid(snap, ""))
		assert.Contains(t, html, MessageLoadError)
	})

	t.Run("cart", func(t *testing.T) {
		html := render(PageCart, Cart(testSnapshot()))
		assert.Contains(t, html, `<span id="cart-subtotal">$20.00</span>`)
		assert.Contains(t, html, `value="decrease-quantity"`)

		html = render(PageCart, Cart(&usecase.Snapshot{}))
		assert.Contains(t, html, MessageEmptyCart)
	})

	t.Run("wishlist", func(t *testing.T) {
		html := render(PageWishlist, Wishlist(&usecase.Snapshot{}))
		assert.Contains(t, html, MessageEmptyWishlist)
	})

	t.Run("detail", func(t *testing.T) {
		html := render(PageDetail, Detail(testSnapshot(), "1", "1"))
		assert.Contains(t, html, `id="main-image" src="lamp-2.jpg"`)
		assert.Contains(t, html, `href="/product?id=1&amp;image=0"`)
		assert.Contains(t, html, "<th>Color</th><td>black</td>")

		html = render(PageDetail, Detail(testSnapshot(), "404", ""))
		assert.Contains(t, html, MessageNotFound)
	})

	t.Run("error", func(t *testing.T) {
		html := render(PageError, ErrorPage{Code: 500, Message: "Internal Server Error"})
		assert.Contains(t, html, "Internal Server Error")
	})

	t.Run("unknown page", func(t *testing.T) {
		assert.Error(t, r.Render(&bytes.Buffer{}, Page("missing"), nil))
	})
}
