package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/catalogapi"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Wishlist manages the signed-in user's wishlist. Membership answers come
// from a set loaded once per session; Invalidate drops it when the user
// changes.
type Wishlist struct {
	api    Doer
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	ids    map[string]struct{}
	loaded bool
}

// Option configures a collaborator.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// NewWishlist creates a wishlist collaborator.
func NewWishlist(api Doer, logger *zap.Logger, opts ...Option) *Wishlist {
	o := buildOptions(opts)
	return &Wishlist{api: api, logger: logger.Named("wishlist"), now: o.now}
}

type addRequest struct {
	ProductID   string         `json:"productId"`
	ProductData models.Product `json:"productData"`
}

// Add stores p on the wishlist.
func (w *Wishlist) Add(ctx context.Context, p models.Product) (models.WishlistItem, error) {
	if p.ID == "" {
		return models.WishlistItem{}, fmt.Errorf("collab: wishlist add: empty product id")
	}
	item := models.WishlistItem{ProductID: p.ID, Product: p, AddedAt: w.now().UTC()}
	if err := w.api.Do(ctx, http.MethodPost, "/wishlist", addRequest{ProductID: p.ID, ProductData: p}, nil); err != nil {
		return models.WishlistItem{}, fmt.Errorf("collab: wishlist add %s: %w", p.ID, err)
	}

	w.mu.Lock()
	if w.loaded {
		w.ids[p.ID] = struct{}{}
	}
	w.mu.Unlock()

	w.logger.Debug("wishlist add", zap.String("product_id", p.ID))
	return item, nil
}

// Remove deletes productID from the wishlist. Removing an item the server
// does not know is not an error.
func (w *Wishlist) Remove(ctx context.Context, productID string) error {
	err := w.api.Do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, nil)
	if err != nil && !errors.Is(err, catalogapi.ErrNotFound) {
		return fmt.Errorf("collab: wishlist remove %s: %w", productID, err)
	}

	w.mu.Lock()
	if w.loaded {
		delete(w.ids, productID)
	}
	w.mu.Unlock()

	w.logger.Debug("wishlist remove", zap.String("product_id", productID))
	return nil
}

// List fetches the wishlist and refreshes the membership set.
func (w *Wishlist) List(ctx context.Context) ([]models.WishlistItem, error) {
	var raw json.RawMessage
	if err := w.api.Do(ctx, http.MethodGet, "/wishlist", nil, &raw); err != nil {
		return nil, fmt.Errorf("collab: wishlist list: %w", err)
	}
	items, err := decodeList[models.WishlistItem](raw)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(items))
	for i := range items {
		if items[i].ProductID == "" {
			items[i].ProductID = items[i].Product.ID
		}
		ids[items[i].ProductID] = struct{}{}
	}
	w.mu.Lock()
	w.ids = ids
	w.loaded = true
	w.mu.Unlock()
	return items, nil
}

// IsInWishlist reports whether productID is on the wishlist, fetching the
// list on first use.
func (w *Wishlist) IsInWishlist(ctx context.Context, productID string) (bool, error) {
	marks, err := w.Marks(ctx)
	if err != nil {
		return false, err
	}
	_, ok := marks[productID]
	return ok, nil
}

// Marks returns a copy of the membership set, fetching it on first use.
func (w *Wishlist) Marks(ctx context.Context) (map[string]struct{}, error) {
	w.mu.Lock()
	loaded := w.loaded
	w.mu.Unlock()
	if !loaded {
		if _, err := w.List(ctx); err != nil {
			return nil, err
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]struct{}, len(w.ids))
	for id := range w.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// Invalidate forgets the membership set so the next query refetches it.
func (w *Wishlist) Invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids = nil
	w.loaded = false
}
