// Package controller drives one category page: it loads the page's
// sources, keeps the staged and applied filter state, and replays the
// filter, sort and paginate pipeline on every interaction.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/catalogapi"
	"github.com/HerbHall/pricescout/internal/category"
	"github.com/HerbHall/pricescout/internal/event"
	"github.com/HerbHall/pricescout/internal/filter"
	"github.com/HerbHall/pricescout/internal/normalize"
	"github.com/HerbHall/pricescout/internal/paginate"
	"github.com/HerbHall/pricescout/internal/services"
	"github.com/HerbHall/pricescout/internal/sorting"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Errors returned by the controller.
var (
	ErrNoCategory     = errors.New("controller: selection has no category")
	ErrStale          = errors.New("controller: load superseded by a newer one")
	ErrUnknownProduct = errors.New("controller: product not loaded")
	ErrUnknownSort    = errors.New("controller: unknown sort key")
	ErrNoCollaborator = errors.New("controller: collaborator not configured")
)

// Status is the load state of a controller.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Source fetches the raw listing of one category.
type Source interface {
	Products(ctx context.Context, cat models.Category) (catalogapi.Listing, error)
}

// Purger is implemented by sources with a response cache.
type Purger interface {
	Purge()
}

// Wishlist is the wishlist collaborator.
type Wishlist interface {
	Add(ctx context.Context, p models.Product) (models.WishlistItem, error)
	Remove(ctx context.Context, productID string) error
	Marks(ctx context.Context) (map[string]struct{}, error)
	Invalidate()
}

// Alerts is the price alert collaborator.
type Alerts interface {
	Create(ctx context.Context, p models.Product, target float64) (models.PriceAlert, error)
}

// Metrics receives load outcomes.
type Metrics interface {
	ObserveLoad(page, view, outcome string, products int)
	ObserveSourceFailure(category string)
}

// Deps are the collaborators of a controller. Source, Normalizer, Filters
// and Sorter are required; the rest may be nil.
type Deps struct {
	Source     Source
	Normalizer *normalize.Normalizer
	Filters    *filter.Engine
	Sorter     *sorting.Sorter
	States     *services.ViewStates
	Wishlist   Wishlist
	Alerts     Alerts
	Bus        event.Bus
	Metrics    Metrics
	Logger     *zap.Logger
}

// Options tune a controller.
type Options struct {
	PageSize    int
	Concurrency int // simultaneous source fetches in unified mode
}

// Controller is safe for concurrent use.
type Controller struct {
	sel    category.Selection
	deps   Deps
	opts   Options
	logger *zap.Logger
	unsub  []func()

	persistMu sync.Mutex

	mu       sync.Mutex
	status   Status
	err      error
	token    uint64
	restored bool
	products []models.Product
	results  []models.Product
	facets   filter.Facets
	failed   []models.Category
	active   filter.State
	staged   filter.State
	sort     sorting.Key
	page     int
	marks    map[string]struct{}
}

// New creates an idle controller for sel.
func New(sel category.Selection, deps Deps, opts Options) (*Controller, error) {
	if len(sel.Sources) == 0 {
		return nil, ErrNoCategory
	}
	if deps.Source == nil || deps.Normalizer == nil || deps.Filters == nil || deps.Sorter == nil {
		return nil, fmt.Errorf("controller: source, normalizer, filters and sorter are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = paginate.DefaultPageSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	c := &Controller{
		sel:    sel,
		deps:   deps,
		opts:   opts,
		logger: deps.Logger.Named("controller").With(zap.String("view", sel.Key())),
		active: filter.NewState(),
		staged: filter.NewState(),
		sort:   sorting.Default,
		page:   1,
	}
	if deps.Bus != nil && deps.Wishlist != nil {
		c.unsub = append(c.unsub,
			deps.Bus.Subscribe(event.TopicLogin, c.onLogin),
			deps.Bus.Subscribe(event.TopicLogout, c.onLogout),
		)
	}
	return c, nil
}

// Selection returns the category scope of the controller.
func (c *Controller) Selection() category.Selection {
	return c.sel
}

// Close unsubscribes from the event bus.
func (c *Controller) Close() {
	for _, fn := range c.unsub {
		fn()
	}
	c.unsub = nil
}

// Status returns the current load state and the error of a failed load.
func (c *Controller) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.err
}

// Product returns a loaded product by id.
func (c *Controller) Product(id string) (models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.productLocked(id)
}

func (c *Controller) productLocked(id string) (models.Product, bool) {
	for i := range c.products {
		if c.products[i].ID == id {
			return c.products[i], true
		}
	}
	return models.Product{}, false
}

// Results returns every product passing the applied filters, in sort
// order.
func (c *Controller) Results() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Product, len(c.results))
	copy(out, c.results)
	return out
}

// recomputeLocked replays filter and sort over the loaded products.
func (c *Controller) recomputeLocked() {
	c.results = c.deps.Sorter.Sort(c.deps.Filters.Apply(c.products, c.active), c.sort)
	if !paginate.InRange(c.page, len(c.results), c.opts.PageSize) {
		c.page = 1
	}
}

func (c *Controller) publish(ctx context.Context, topic string, payload any) {
	if c.deps.Bus == nil {
		return
	}
	if err := c.deps.Bus.Publish(ctx, event.Event{Topic: topic, Source: "controller", Payload: payload}); err != nil {
		c.logger.Warn("publish event", zap.String("topic", topic), zap.Error(err))
	}
}
