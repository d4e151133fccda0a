package controller

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/event"
	"github.com/HerbHall/pricescout/internal/filter"
	"github.com/HerbHall/pricescout/internal/paginate"
	"github.com/HerbHall/pricescout/internal/services"
	"github.com/HerbHall/pricescout/internal/sorting"
	"github.com/HerbHall/pricescout/pkg/models"
)

// FiltersApplied is the payload of filters.applied events.
type FiltersApplied struct {
	View    string             `json:"view"`
	Active  []filter.Selection `json:"active"`
	Matches int                `json:"matches"`
}

// ToggleBrand flips a staged brand and reports whether it is now selected.
func (c *Controller) ToggleBrand(brand string) bool {
	return c.Toggle(filter.GroupBrand, brand)
}

// ToggleOS flips a staged OS or spec-category token.
func (c *Controller) ToggleOS(token string) bool {
	return c.Toggle(filter.GroupOS, token)
}

// ToggleFeature flips a staged feature tag.
func (c *Controller) ToggleFeature(tag string) bool {
	return c.Toggle(filter.GroupFeature, tag)
}

// SelectPriceRange stages r as the only price range. Selecting the staged
// range again, or an empty range, clears it.
func (c *Controller) SelectPriceRange(r string) bool {
	return c.Toggle(filter.GroupPrice, r)
}

// Toggle flips value in the staged copy of group g. Only staged state
// changes; Apply commits it.
func (c *Controller) Toggle(g filter.Group, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch g {
	case filter.GroupBrand:
		return c.staged.Brands.Toggle(value)
	case filter.GroupOS:
		return c.staged.OS.Toggle(value)
	case filter.GroupFeature:
		return c.staged.Features.Toggle(value)
	case filter.GroupPrice:
		if value == "" || c.staged.PriceRange == value {
			c.staged.PriceRange = ""
			return false
		}
		c.staged.PriceRange = value
		return true
	}
	return false
}

// Staged returns a copy of the staged filter state.
func (c *Controller) Staged() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged.Clone()
}

// Applied returns a copy of the applied filter state.
func (c *Controller) Applied() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.Clone()
}

// Apply commits the staged state of the given groups, or of every group
// when none is given, reruns the pipeline from page 1 and persists the view.
func (c *Controller) Apply(ctx context.Context, groups ...filter.Group) {
	if len(groups) == 0 {
		groups = filter.Groups
	}
	c.mu.Lock()
	for _, g := range groups {
		c.active = c.active.CopyGroup(g, c.staged)
	}
	c.page = 1
	c.recomputeLocked()
	applied := FiltersApplied{View: c.sel.Key(), Active: c.active.Active(), Matches: len(c.results)}
	c.mu.Unlock()

	c.persist(ctx)
	c.publish(ctx, event.TopicFiltersApply, applied)
}

// Cancel reverts the staged state of the given groups, or of every group,
// to the applied state.
func (c *Controller) Cancel(groups ...filter.Group) {
	if len(groups) == 0 {
		groups = filter.Groups
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range groups {
		c.staged = c.staged.CopyGroup(g, c.active)
	}
}

// Reset clears every staged and applied filter and returns to page 1.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	c.active = filter.NewState()
	c.staged = filter.NewState()
	c.page = 1
	c.recomputeLocked()
	c.mu.Unlock()
	c.persist(ctx)
}

// SetSort changes the sort order and returns to page 1.
func (c *Controller) SetSort(ctx context.Context, key sorting.Key) error {
	if !key.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownSort, key)
	}
	c.mu.Lock()
	c.sort = key
	c.page = 1
	c.recomputeLocked()
	c.mu.Unlock()
	c.persist(ctx)
	return nil
}

// GoToPage moves to page n. Out-of-range pages are ignored and reported
// as false.
func (c *Controller) GoToPage(ctx context.Context, n int) bool {
	c.mu.Lock()
	if !paginate.InRange(n, len(c.results), c.opts.PageSize) {
		c.mu.Unlock()
		return false
	}
	c.page = n
	c.mu.Unlock()
	c.persist(ctx)
	return true
}

// NextPage moves forward one page if there is one.
func (c *Controller) NextPage(ctx context.Context) bool {
	c.mu.Lock()
	n := c.page + 1
	c.mu.Unlock()
	return c.GoToPage(ctx, n)
}

// PrevPage moves back one page if there is one.
func (c *Controller) PrevPage(ctx context.Context) bool {
	c.mu.Lock()
	n := c.page - 1
	c.mu.Unlock()
	return c.GoToPage(ctx, n)
}

// persist saves the committed view. Failures are logged; the in-memory
// view stays authoritative.
func (c *Controller) persist(ctx context.Context) {
	if c.deps.States == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.Lock()
	vs := services.ViewState{
		SelectedBrands:     c.active.Brands.Values(),
		SelectedOS:         c.active.OS.Values(),
		SelectedFeatures:   c.active.Features.Values(),
		SelectedPriceRange: c.active.PriceRange,
		CurrentPage:        c.page,
		Sort:               string(c.sort),
		Category:           c.categoryLabel(),
	}
	c.mu.Unlock()

	if err := c.deps.States.Save(ctx, c.sel.Key(), vs); err != nil {
		c.logger.Warn("save view state", zap.Error(err))
	}
}

func (c *Controller) categoryLabel() string {
	if c.sel.All {
		return "all"
	}
	if c.sel.Category == "" {
		return string(models.CategoryUnknown)
	}
	return string(c.sel.Category)
}
