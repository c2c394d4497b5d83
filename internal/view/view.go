// Package view maps shopper state to page view models and renders them.
package view

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/usecase"
	"github.com/nguyentranbao-ct/storefront/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	MessageLoadError     = "Error loading products. Please try again later."
	MessageNotFound      = "Product not found."
	MessageEmptyCart     = "Your cart is empty."
	MessageEmptyWishlist = "Your wishlist is empty."
)

type Page string

const (
	PageHome     Page = "index"
	PageCart     Page = "cart"
	PageWishlist Page = "wishlist"
	PageDetail   Page = "product"
	PageError    Page = "error"
)

// Layout is shared by every page: header, search box and notification area.
type Layout struct {
	Page         Page
	Title        string
	Search       string
	CartCount    int
	Notification *models.Notification
	// Path is the current request URI, posted back as redirect_to.
	Path string
}

type ProductCard struct {
	ID          models.ProductID `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Image       string           `json:"image"`
	Description string           `json:"description"`
	Wishlisted  bool             `json:"wishlisted"`
	InCart      bool             `json:"in_cart"`
}

type GridPage struct {
	Layout
	Products []ProductCard
	// Error replaces the grid when the catalog failed to load.
	Error string
	// NoResults is set when a search matched nothing.
	NoResults bool
}

type CartLine struct {
	ID        models.ProductID `json:"id"`
	Name      string           `json:"name"`
	Image     string           `json:"image"`
	Price     decimal.Decimal  `json:"price"`
	Quantity  int              `json:"quantity"`
	LineTotal decimal.Decimal  `json:"line_total"`
}

type CartPage struct {
	Layout   `json:"-"`
	Lines    []CartLine      `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Empty    string          `json:"empty,omitempty"`
}

type WishlistPage struct {
	Layout `json:"-"`
	Items []ProductCard `json:"items"`
	Empty string        `json:"empty,omitempty"`
}

type Thumbnail struct {
	URL    string
	Index  int
	Active bool
}

type Spec struct {
	Key   string
	Value string
}

type DetailPage struct {
	Layout
	Product    *ProductCard
	MainImage  string
	Thumbnails []Thumbnail
	Specs      []Spec
	// Message is shown instead of the product: not found or load error.
	Message string
}

func wishlistSet(items []models.Product) map[models.ProductID]struct{} {
	set := make(map[models.ProductID]struct{}, len(items))
	for _, p := range items {
		set[p.ID] = struct{}{}
	}
	return set
}

func cartSet(entries []models.CartEntry) map[models.ProductID]struct{} {
	set := make(map[models.ProductID]struct{}, len(entries))
	for _, e := range entries {
		set[e.ID] = struct{}{}
	}
	return set
}

func cartCount(entries []models.CartEntry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}

func newCard(p models.Product, wishlisted, inCart map[models.ProductID]struct{}) ProductCard {
	_, w := wishlisted[p.ID]
	_, c := inCart[p.ID]
	return ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.PrimaryImage(),
		Description: p.Description,
		Wishlisted:  w,
		InCart:      c,
	}
}

// Cards maps products to cards carrying the shopper's wishlist and cart state.
func Cards(products []models.Product, snap *usecase.Snapshot) []ProductCard {
	wishlisted := wishlistSet(snap.Wishlist)
	inCart := cartSet(snap.Cart)
	return util.ConvertList(products, func(p models.Product) ProductCard {
		return newCard(p, wishlisted, inCart)
	})
}

func newLayout(page Page, title string, snap *usecase.Snapshot) Layout {
	return Layout{
		Page:      page,
		Title:     title,
		CartCount: cartCount(snap.Cart),
	}
}

// Grid builds the product grid, filtered by search.
func Grid(snap *usecase.Snapshot, search string) GridPage {
	page := GridPage{Layout: newLayout(PageHome, "Products", snap)}
	page.Search = search
	if snap.Catalog == nil {
		page.Error = MessageLoadError
		return page
	}
	page.Products = Cards(snap.Catalog.Search(search), snap)
	page.NoResults = len(page.Products) == 0 && search != ""
	return page
}

// Cart builds the cart listing from the persisted entries alone.
func Cart(snap *usecase.Snapshot) CartPage {
	page := CartPage{
		Layout:   newLayout(PageCart, "Shopping Cart", snap),
		Lines:    util.ConvertList(snap.Cart, newCartLine),
		Subtotal: decimal.Zero,
	}
	for _, line := range page.Lines {
		page.Subtotal = page.Subtotal.Add(line.LineTotal)
	}
	if len(page.Lines) == 0 {
		page.Empty = MessageEmptyCart
	}
	return page
}

func newCartLine(e models.CartEntry) CartLine {
	return CartLine{
		ID:        e.ID,
		Name:      e.Name,
		Image:     e.PrimaryImage(),
		Price:     e.Price,
		Quantity:  e.Quantity,
		LineTotal: e.LineTotal(),
	}
}

// Wishlist builds the wishlist listing from the persisted products alone.
func Wishlist(snap *usecase.Snapshot) WishlistPage {
	page := WishlistPage{
		Layout: newLayout(PageWishlist, "Wishlist", snap),
		Items:  Cards(snap.Wishlist, snap),
	}
	if len(page.Items) == 0 {
		page.Empty = MessageEmptyWishlist
	}
	return page
}

// Detail builds the product page. image selects the main gallery image by
// index; anything out of range falls back to the first image.
func Detail(snap *usecase.Snapshot, id models.ProductID, image string) DetailPage {
	page := DetailPage{Layout: newLayout(PageDetail, "Product", snap)}
	if snap.Catalog == nil {
		page.Message = MessageLoadError
		return page
	}
	p, ok := snap.Catalog.FindByID(id)
	if !ok {
		page.Message = MessageNotFound
		return page
	}

	card := newCard(p, wishlistSet(snap.Wishlist), cartSet(snap.Cart))
	page.Product = &card
	page.Title = p.Name

	selected, err := strconv.Atoi(image)
	if err != nil || selected < 0 || selected >= len(p.Images) {
		selected = 0
	}
	for i, url := range p.Images {
		page.Thumbnails = append(page.Thumbnails, Thumbnail{URL: url, Index: i, Active: i == selected})
	}
	if len(p.Images) > 0 {
		page.MainImage = p.Images[selected]
	}

	if p.Specifications != nil {
		for pair := p.Specifications.Oldest(); pair != nil; pair = pair.Next() {
			page.Specs = append(page.Specs, Spec{Key: pair.Key, Value: specValue(pair.Value)})
		}
	}
	return page
}

// specValue prints scalars as text and anything nested as JSON.
func specValue(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
