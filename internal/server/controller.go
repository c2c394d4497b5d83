package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/storefront/internal/server/middleware"
	"github.com/nguyentranbao-ct/storefront/internal/usecase"
	"github.com/nguyentranbao-ct/storefront/internal/view"
)

type Controller interface {
	Health(c echo.Context) error

	Home(c echo.Context) error
	Search(c echo.Context) error
	Product(c echo.Context) error
	Cart(c echo.Context) error
	Wishlist(c echo.Context) error
	Action(c echo.Context) error
	Checkout(c echo.Context) error

	APIAction(c echo.Context, req APIActionRequest) (*usecase.ActionResult, error)
	APICart(c echo.Context, req ShopperRequest) (*view.CartPage, error)
	APIWishlist(c echo.Context, req ShopperRequest) (*view.WishlistPage, error)
	APIProducts(c echo.Context, req ProductsRequest) ([]view.ProductCard, error)
}

type ShopperRequest struct {
	ShopperID string `json:"-" ctx:"shopper_id" validate:"required"`
}

type APIActionRequest struct {
	ShopperID string           `json:"-" ctx:"shopper_id" validate:"required"`
	Action    usecase.Action   `json:"action" validate:"required"`
	ProductID models.ProductID `json:"id"`
}

type ProductsRequest struct {
	ShopperID string `json:"-" ctx:"shopper_id" validate:"required"`
	Search    string `query:"search"`
}

type actionForm struct {
	Action     usecase.Action   `form:"action"`
	ProductID  models.ProductID `form:"id"`
	RedirectTo string           `form:"redirect_to"`
}

type controller struct {
	storefront usecase.StorefrontUsecase
	flash      *FlashStore
}

func NewController(storefront usecase.StorefrontUsecase, flash *FlashStore) Controller {
	return &controller{
		storefront: storefront,
		flash:      flash,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "storefront",
	})
}

func (h *controller) snapshot(c echo.Context, withCatalog bool) (*usecase.Snapshot, error) {
	return h.storefront.Snapshot(c.Request().Context(), pkgmdw.GetShopperID(c), withCatalog)
}

func (h *controller) layout(c echo.Context, l *view.Layout) {
	l.Path = c.Request().URL.RequestURI()
	l.Notification = h.flash.Pop(c)
}

func (h *controller) Home(c echo.Context) error {
	snap, err := h.snapshot(c, true)
	if err != nil {
		return err
	}
	page := view.Grid(snap, c.QueryParam("search"))
	h.layout(c, &page.Layout)
	return c.Render(http.StatusOK, string(view.PageHome), page)
}

// Search sends the lower-cased term to the grid, which does the filtering.
func (h *controller) Search(c echo.Context) error {
	term := strings.ToLower(strings.TrimSpace(c.QueryParam("search")))
	if term == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return c.Redirect(http.StatusSeeOther, "/?search="+url.QueryEscape(term))
}

func (h *controller) Product(c echo.Context) error {
	snap, err := h.snapshot(c, true)
	if err != nil {
		return err
	}
	page := view.Detail(snap, models.ProductID(c.QueryParam("id")), c.QueryParam("image"))
	h.layout(c, &page.Layout)
	return c.Render(http.StatusOK, string(view.PageDetail), page)
}

func (h *controller) Cart(c echo.Context) error {
	snap, err := h.snapshot(c, false)
	if err != nil {
		return err
	}
	page := view.Cart(snap)
	h.layout(c, &page.Layout)
	return c.Render(http.StatusOK, string(view.PageCart), page)
}

func (h *controller) Wishlist(c echo.Context) error {
	snap, err := h.snapshot(c, false)
	if err != nil {
		return err
	}
	page := view.Wishlist(snap)
	h.layout(c, &page.Layout)
	return c.Render(http.StatusOK, string(view.PageWishlist), page)
}

// Action applies a posted capability then redirects to the page to re-render.
func (h *controller) Action(c echo.Context) error {
	var form actionForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	return h.dispatchForm(c, usecase.ActionRequest{Action: form.Action, ProductID: form.ProductID}, form.RedirectTo)
}

func (h *controller) Checkout(c echo.Context) error {
	return h.dispatchForm(c, usecase.ActionRequest{Action: usecase.ActionCheckout}, "/cart")
}

func (h *controller) dispatchForm(c echo.Context, req usecase.ActionRequest, redirectTo string) error {
	result, err := h.storefront.Dispatch(c.Request().Context(), pkgmdw.GetShopperID(c), req)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownAction) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	if result.Notification != nil {
		if err := h.flash.Set(c, result.Notification); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusSeeOther, redirectLocation(result, redirectTo))
}

// redirectLocation prefers navigation, then the posting page, then the
// first view the action re-renders. Only local paths are followed.
func redirectLocation(result *usecase.ActionResult, redirectTo string) string {
	if result.Redirect != "" {
		return result.Redirect
	}
	if isLocalPath(redirectTo) {
		return redirectTo
	}
	for _, target := range result.Targets {
		switch target {
		case usecase.TargetCart:
			return "/cart"
		case usecase.TargetWishlist:
			return "/wishlist"
		case usecase.TargetGrid:
			return "/"
		}
	}
	return "/"
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

func (h *controller) APIAction(c echo.Context, req APIActionRequest) (*usecase.ActionResult, error) {
	result, err := h.storefront.Dispatch(c.Request().Context(), req.ShopperID, usecase.ActionRequest{
		Action:    req.Action,
		ProductID: req.ProductID,
	})
	if errors.Is(err, usecase.ErrUnknownAction) {
		return nil, pkgmdw.NewResponseError(http.StatusBadRequest, "unknown_action", err)
	}
	return result, err
}

func (h *controller) APICart(c echo.Context, req ShopperRequest) (*view.CartPage, error) {
	snap, err := h.storefront.Snapshot(c.Request().Context(), req.ShopperID, false)
	if err != nil {
		return nil, err
	}
	page := view.Cart(snap)
	return &page, nil
}

func (h *controller) APIWishlist(c echo.Context, req ShopperRequest) (*view.WishlistPage, error) {
	snap, err := h.storefront.Snapshot(c.Request().Context(), req.ShopperID, false)
	if err != nil {
		return nil, err
	}
	page := view.Wishlist(snap)
	return &page, nil
}

func (h *controller) APIProducts(c echo.Context, req ProductsRequest) ([]view.ProductCard, error) {
	snap, err := h.storefront.Snapshot(c.Request().Context(), req.ShopperID, true)
	if err != nil {
		return nil, err
	}
	if snap.CatalogErr != nil {
		return nil, &pkgmdw.ResponseError{
			Status:       http.StatusBadGateway,
			Err:          snap.CatalogErr,
			ErrorCode:    "catalog_unavailable",
			ErrorMessage: view.MessageLoadError,
		}
	}
	return view.Cards(snap.Catalog.Search(req.Search), snap), nil
}
