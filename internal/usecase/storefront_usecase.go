package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/nguyentranbao-ct/storefront/internal/store"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
)

type Action string

const (
	ActionAddToCart          Action = "add-to-cart"
	ActionToggleWishlist     Action = "toggle-wishlist"
	ActionRemoveFromWishlist Action = "remove-from-wishlist"
	ActionRemoveFromCart     Action = "remove-from-cart"
	ActionIncreaseQuantity   Action = "increase-quantity"
	ActionDecreaseQuantity   Action = "decrease-quantity"
	ActionNavigateToDetail   Action = "navigate-to-detail"
	ActionCheckout           Action = "checkout"
)

// Target names a view that must be re-rendered after an action.
type Target string

const (
	TargetGrid     Target = "grid"
	TargetCart     Target = "cart"
	TargetWishlist Target = "wishlist"
	TargetDetail   Target = "detail"
	TargetHeader   Target = "header"
)

var ErrUnknownAction = errors.New("unknown action")

type ActionRequest struct {
	Action    Action           `json:"action" form:"action" validate:"required"`
	ProductID models.ProductID `json:"id" form:"id"`
}

type ActionResult struct {
	Notification *models.Notification `json:"notification,omitempty"`
	Targets      []Target             `json:"targets"`
	// Redirect is set when the action navigates away from the current page.
	Redirect string `json:"redirect,omitempty"`
	// Member is the wishlist membership after a toggle.
	Member    *bool `json:"member,omitempty"`
	CartCount int   `json:"cart_count"`
}

// Snapshot is the shopper state a page renders from. Catalog is nil when it
// was not requested or failed to load; CatalogErr holds the load failure.
type Snapshot struct {
	Catalog    *store.Catalog
	CatalogErr error
	Cart       []models.CartEntry
	Wishlist   []models.Product
}

type StorefrontUsecase interface {
	Dispatch(ctx context.Context, shopperID string, req ActionRequest) (*ActionResult, error)
	Snapshot(ctx context.Context, shopperID string, withCatalog bool) (*Snapshot, error)
}

type storefrontUsecase struct {
	catalog   *store.CatalogStore
	sessions  *store.Sessions
	publisher repository.EventPublisher
}

func NewStorefrontUsecase(
	catalog *store.CatalogStore,
	sessions *store.Sessions,
	publisher repository.EventPublisher,
) StorefrontUsecase {
	return &storefrontUsecase{
		catalog:   catalog,
		sessions:  sessions,
		publisher: publisher,
	}
}

func (uc *storefrontUsecase) Dispatch(ctx context.Context, shopperID string, req ActionRequest) (*ActionResult, error) {
	if req.Action == ActionNavigateToDetail {
		return &ActionResult{
			Redirect: "/product?id=" + url.QueryEscape(req.ProductID.String()),
		}, nil
	}

	sess, err := uc.sessions.Open(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	var result *ActionResult
	switch req.Action {
	case ActionAddToCart:
		result, err = uc.addToCart(ctx, sess, req.ProductID)
	case ActionToggleWishlist:
		result, err = uc.toggleWishlist(ctx, sess, req.ProductID)
	case ActionRemoveFromWishlist:
		result, err = uc.removeFromWishlist(ctx, sess, req.ProductID)
	case ActionRemoveFromCart:
		result, err = uc.removeFromCart(ctx, sess, req.ProductID)
	case ActionIncreaseQuantity:
		result, err = uc.changeQuantity(ctx, sess, req.ProductID, sess.Cart.Increment)
	case ActionDecreaseQuantity:
		result, err = uc.changeQuantity(ctx, sess, req.ProductID, sess.Cart.Decrement)
	case ActionCheckout:
		result, err = uc.checkout(ctx, sess)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Action, err)
	}

	result.CartCount = sess.Cart.Count()
	return result, nil
}

func (uc *storefrontUsecase) lookup(ctx context.Context) *store.Catalog {
	catalog, err := uc.catalog.LoadOrEmpty(ctx)
	if err != nil {
		log.Warnw(ctx, "Catalog unavailable, action resolves no product", "error", err)
	}
	return catalog
}

func (uc *storefrontUsecase) addToCart(ctx context.Context, sess *store.Session, id models.ProductID) (*ActionResult, error) {
	entry, err := sess.Cart.Add(ctx, uc.lookup(ctx), id)
	if err != nil {
		return nil, err
	}
	result := &ActionResult{Targets: []Target{TargetHeader, TargetCart}}
	if entry == nil {
		return result, nil
	}

	uc.publish(ctx, sess.ShopperID, models.EventCartItemAdded, id, entry.Quantity)
	result.Notification = models.Success(entry.Name + " added to cart!")
	return result, nil
}

func (uc *storefrontUsecase) toggleWishlist(ctx context.Context, sess *store.Session, id models.ProductID) (*ActionResult, error) {
	product, member, err := sess.Wishlist.Toggle(ctx, uc.lookup(ctx), id)
	if err != nil {
		return nil, err
	}
	result := &ActionResult{
		Targets: []Target{TargetGrid, TargetWishlist, TargetDetail},
		Member:  &member,
	}
	if product == nil {
		return result, nil
	}

	if member {
		uc.publish(ctx, sess.ShopperID, models.EventWishlistAdded, id, 0)
		result.Notification = models.Success(product.Name + " added to wishlist!")
	} else {
		uc.publish(ctx, sess.ShopperID, models.EventWishlistRemoved, id, 0)
		result.Notification = models.Success(product.Name + " removed from wishlist!")
	}
	return result, nil
}

func (uc *storefrontUsecase) removeFromWishlist(ctx context.Context, sess *store.Session, id models.ProductID) (*ActionResult, error) {
	removed, err := sess.Wishlist.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	if removed {
		uc.publish(ctx, sess.ShopperID, models.EventWishlistRemoved, id, 0)
	}
	member := false
	return &ActionResult{
		Targets: []Target{TargetWishlist, TargetGrid, TargetDetail},
		Member:  &member,
	}, nil
}

func (uc *storefrontUsecase) removeFromCart(ctx context.Context, sess *store.Session, id models.ProductID) (*ActionResult, error) {
	removed, err := sess.Cart.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	if removed {
		uc.publish(ctx, sess.ShopperID, models.EventCartItemRemoved, id, 0)
	}
	return &ActionResult{Targets: []Target{TargetCart, TargetHeader}}, nil
}

func (uc *storefrontUsecase) changeQuantity(
	ctx context.Context,
	sess *store.Session,
	id models.ProductID,
	change func(context.Context, models.ProductID) (*models.CartEntry, error),
) (*ActionResult, error) {
	entry, err := change(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		if entry.Quantity == 0 {
			uc.publish(ctx, sess.ShopperID, models.EventCartItemRemoved, id, 0)
		} else {
			uc.publish(ctx, sess.ShopperID, models.EventCartQuantityChanged, id, entry.Quantity)
		}
	}
	return &ActionResult{Targets: []Target{TargetCart, TargetHeader}}, nil
}

func (uc *storefrontUsecase) checkout(ctx context.Context, sess *store.Session) (*ActionResult, error) {
	result := &ActionResult{Targets: []Target{TargetCart, TargetHeader}}
	if sess.Cart.Len() == 0 {
		result.Notification = models.Failure("Your cart is empty!")
		return result, nil
	}

	count := sess.Cart.Count()
	if err := sess.Cart.Clear(ctx); err != nil {
		return nil, err
	}
	uc.publish(ctx, sess.ShopperID, models.EventCartCleared, "", count)
	log.Infow(ctx, "Checkout completed", "items", count)
	result.Notification = models.Success("Checkout successful! Your order has been placed.")
	return result, nil
}

func (uc *storefrontUsecase) publish(ctx context.Context, shopperID string, eventType models.EventType, id models.ProductID, quantity int) {
	uc.publisher.Publish(ctx, models.StoreEvent{
		Type:       eventType,
		ShopperID:  shopperID,
		ProductID:  id,
		Quantity:   quantity,
		OccurredAt: time.Now(),
	})
}

func (uc *storefrontUsecase) Snapshot(ctx context.Context, shopperID string, withCatalog bool) (*Snapshot, error) {
	snap := &Snapshot{}
	if withCatalog {
		snap.Catalog, snap.CatalogErr = uc.catalog.Load(ctx)
		if snap.CatalogErr != nil {
			log.Errorw(ctx, "Error fetching products", "error", snap.CatalogErr)
		}
	}

	sess, err := uc.sessions.Open(ctx, shopperID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer sess.Close()

	snap.Cart = sess.Cart.Entries()
	snap.Wishlist = sess.Wishlist.Items()
	return snap, nil
}
