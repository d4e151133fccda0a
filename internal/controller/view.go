package controller

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/category"
	"github.com/HerbHall/pricescout/internal/event"
	"github.com/HerbHall/pricescout/internal/filter"
	"github.com/HerbHall/pricescout/internal/paginate"
	"github.com/HerbHall/pricescout/internal/sorting"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Item is a product on the current page.
type Item struct {
	models.Product
	InWishlist bool `json:"inWishlist"`
}

// View is a snapshot of the controller for renderers. It shares no
// mutable state with the controller.
type View struct {
	Selection     category.Selection `json:"selection"`
	Status        Status             `json:"status"`
	Err           error              `json:"-"`
	Items         []Item             `json:"items"`
	Page          int                `json:"page"`
	TotalPages    int                `json:"totalPages"`
	Matches       int                `json:"matches"`
	Loaded        int                `json:"loaded"`
	Sort          sorting.Key        `json:"sort"`
	Applied       filter.State       `json:"-"`
	Staged        filter.State       `json:"-"`
	Active        []filter.Selection `json:"active"`
	Facets        filter.Facets      `json:"facets"`
	PriceRanges   []string           `json:"priceRanges"`
	FailedSources []models.Category  `json:"failedSources,omitempty"`
}

// View returns a snapshot of the current page.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	pg := paginate.Paginate(c.results, c.page, c.opts.PageSize)
	items := make([]Item, len(pg.Items))
	for i, p := range pg.Items {
		_, in := c.marks[p.ID]
		items[i] = Item{Product: p, InWishlist: in}
	}
	failed := make([]models.Category, len(c.failed))
	copy(failed, c.failed)

	return View{
		Selection:     c.sel,
		Status:        c.status,
		Err:           c.err,
		Items:         items,
		Page:          pg.Page,
		TotalPages:    pg.TotalPages,
		Matches:       pg.Total,
		Loaded:        len(c.products),
		Sort:          c.sort,
		Applied:       c.active.Clone(),
		Staged:        c.staged.Clone(),
		Active:        c.active.Active(),
		Facets:        c.facets,
		PriceRanges:   c.deps.Filters.Tiers().Ranges(),
		FailedSources: failed,
	}
}

// refreshMarks reloads the wishlist membership used for InWishlist.
func (c *Controller) refreshMarks(ctx context.Context) {
	if c.deps.Wishlist == nil {
		return
	}
	marks, err := c.deps.Wishlist.Marks(ctx)
	if err != nil {
		c.logger.Debug("wishlist marks unavailable", zap.Error(err))
		marks = nil
	}
	c.mu.Lock()
	c.marks = marks
	c.mu.Unlock()
}

func (c *Controller) onLogin(ctx context.Context, _ event.Event) {
	c.deps.Wishlist.Invalidate()
	c.refreshMarks(ctx)
}

func (c *Controller) onLogout(_ context.Context, _ event.Event) {
	c.deps.Wishlist.Invalidate()
	c.mu.Lock()
	c.marks = nil
	c.mu.Unlock()
}

// AddToWishlist adds a loaded product to the wishlist.
func (c *Controller) AddToWishlist(ctx context.Context, id string) error {
	if c.deps.Wishlist == nil {
		return ErrNoCollaborator
	}
	p, ok := c.Product(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	if _, err := c.deps.Wishlist.Add(ctx, p); err != nil {
		return err
	}
	c.mu.Lock()
	if c.marks == nil {
		c.marks = make(map[string]struct{})
	}
	c.marks[id] = struct{}{}
	c.mu.Unlock()
	return nil
}

// RemoveFromWishlist removes a product from the wishlist.
func (c *Controller) RemoveFromWishlist(ctx context.Context, id string) error {
	if c.deps.Wishlist == nil {
		return ErrNoCollaborator
	}
	if err := c.deps.Wishlist.Remove(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.marks, id)
	c.mu.Unlock()
	return nil
}

// CreateAlert requests a price alert for a loaded product. A non-positive
// target means the current lowest price.
func (c *Controller) CreateAlert(ctx context.Context, id string, target float64) (models.PriceAlert, error) {
	if c.deps.Alerts == nil {
		return models.PriceAlert{}, ErrNoCollaborator
	}
	p, ok := c.Product(id)
	if !ok {
		return models.PriceAlert{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	return c.deps.Alerts.Create(ctx, p, target)
}
