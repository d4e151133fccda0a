package controller

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HerbHall/pricescout/internal/event"
	"github.com/HerbHall/pricescout/internal/filter"
	"github.com/HerbHall/pricescout/internal/normalize"
	"github.com/HerbHall/pricescout/internal/sorting"
	"github.com/HerbHall/pricescout/pkg/models"
)

// LoadResult is the payload of catalog.loaded events.
type LoadResult struct {
	View     string            `json:"view"`
	Products int               `json:"products"`
	Failed   []models.Category `json:"failed,omitempty"`
}

// SourceFailure is the payload of catalog.source_failed events.
type SourceFailure struct {
	View     string          `json:"view"`
	Category models.Category `json:"category"`
	Error    string          `json:"error"`
}

// Load fetches and normalizes every source of the selection. In unified
// mode sources are fetched concurrently and a failed source contributes no
// products; the load fails only when every source fails. A load that is
// overtaken by a newer one returns ErrStale and changes nothing.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.token++
	token := c.token
	c.status = StatusLoading
	c.err = nil
	restore := !c.restored
	c.restored = true
	c.mu.Unlock()

	if restore {
		c.restore(ctx)
	}

	products, failed, err := c.fetch(ctx)

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		c.logger.Debug("discarding stale load", zap.Uint64("token", token))
		c.observe("stale", len(products))
		return ErrStale
	}
	c.failed = failed
	if err != nil {
		// The page is left as restored so a successful Retry lands on it.
		c.status = StatusError
		c.err = err
		c.products = nil
		c.results = nil
		c.facets = c.deps.Filters.Facets(nil)
	} else {
		c.status = StatusReady
		c.products = products
		c.facets = c.deps.Filters.Facets(c.products)
		c.recomputeLocked()
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("load failed", zap.Error(err))
		c.observe("error", 0)
		c.publish(ctx, event.TopicCatalogFailed, LoadResult{View: c.sel.Key(), Failed: failed})
		return err
	}

	outcome := "ok"
	if len(failed) > 0 {
		outcome = "partial"
	}
	c.logger.Info("loaded",
		zap.Int("products", len(products)),
		zap.Int("failed_sources", len(failed)),
	)
	c.observe(outcome, len(products))
	c.refreshMarks(ctx)
	c.publish(ctx, event.TopicCatalogLoaded, LoadResult{View: c.sel.Key(), Products: len(products), Failed: failed})
	return nil
}

// Retry repeats a failed load.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

// Reload drops cached responses and loads again.
func (c *Controller) Reload(ctx context.Context) error {
	if p, ok := c.deps.Source.(Purger); ok {
		p.Purge()
	}
	return c.Load(ctx)
}

func (c *Controller) observe(outcome string, n int) {
	if c.deps.Metrics != nil {
		c.deps.Metrics.ObserveLoad(c.sel.Page, c.sel.Key(), outcome, n)
	}
}

// fetch loads every source, capturing each source's error separately.
func (c *Controller) fetch(ctx context.Context) ([]models.Product, []models.Category, error) {
	sources := c.sel.Sources
	lists := make([][]models.Product, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)
	for i, cat := range sources {
		g.Go(func() error {
			listing, err := c.deps.Source.Products(ctx, cat)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", cat, err)
				return nil
			}
			lists[i] = c.deps.Normalizer.NormalizeAll(listing.Records, cat)
			return nil
		})
	}
	_ = g.Wait()

	var (
		products []models.Product
		failed   []models.Category
	)
	for i, cat := range sources {
		if errs[i] != nil {
			failed = append(failed, cat)
			continue
		}
		products = append(products, lists[i]...)
	}
	if len(failed) == len(sources) {
		return nil, failed, fmt.Errorf("controller: load %s: %w", c.sel.Key(), errors.Join(errs...))
	}

	for i, cat := range sources {
		if errs[i] == nil {
			continue
		}
		c.logger.Warn("source failed", zap.String("category", string(cat)), zap.Error(errs[i]))
		if c.deps.Metrics != nil {
			c.deps.Metrics.ObserveSourceFailure(string(cat))
		}
		c.publish(ctx, event.TopicSourceFailed, SourceFailure{View: c.sel.Key(), Category: cat, Error: errs[i].Error()})
	}
	return normalize.Dedupe(products), failed, nil
}

// restore applies the persisted view state, if any.
func (c *Controller) restore(ctx context.Context) {
	if c.deps.States == nil {
		return
	}
	vs, ok, err := c.deps.States.Load(ctx, c.sel.Key())
	if err != nil {
		c.logger.Warn("load view state", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	st := filter.State{
		Brands:     filter.NewSet(vs.SelectedBrands...),
		OS:         filter.NewSet(vs.SelectedOS...),
		Features:   filter.NewSet(vs.SelectedFeatures...),
		PriceRange: vs.SelectedPriceRange,
	}
	key := sorting.Key(vs.Sort)
	if !key.Known() {
		key = sorting.Default
	}

	c.mu.Lock()
	c.active = st
	c.staged = st.Clone()
	c.sort = key
	c.page = max(vs.CurrentPage, 1)
	c.mu.Unlock()
	c.logger.Debug("restored view state", zap.Int("page", vs.CurrentPage), zap.String("sort", string(key)))
}
