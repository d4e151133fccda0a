package controller

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/catalogapi"
	"github.com/HerbHall/pricescout/internal/category"
	"github.com/HerbHall/pricescout/internal/event"
	"github.com/HerbHall/pricescout/pkg/models"
)

type fakeWishlist struct {
	mu          sync.Mutex
	signedIn    bool
	ids         map[string]struct{}
	fetches     int
	invalidated int
}

func (w *fakeWishlist) Add(_ context.Context, p models.Product) (models.WishlistItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids[p.ID] = struct{}{}
	return models.WishlistItem{ProductID: p.ID, Product: p}, nil
}

func (w *fakeWishlist) Remove(_ context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.ids, id)
	return nil
}

func (w *fakeWishlist) Marks(context.Context) (map[string]struct{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fetches++
	if !w.signedIn {
		return nil, catalogapi.ErrUnauthorized
	}
	out := make(map[string]struct{}, len(w.ids))
	for id := range w.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func (w *fakeWishlist) Invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.invalidated++
}

func (w *fakeWishlist) setSignedIn(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.signedIn = v
}

type fakeAlerts struct {
	created []models.PriceAlert
}

func (a *fakeAlerts) Create(_ context.Context, p models.Product, target float64) (models.PriceAlert, error) {
	alert := models.PriceAlert{ProductID: p.ID, TargetPrice: target, CurrentPrice: p.Price}
	a.created = append(a.created, alert)
	return alert, nil
}

func inWishlist(v View) map[string]bool {
	out := make(map[string]bool, len(v.Items))
	for _, it := range v.Items {
		out[it.ID] = it.InWishlist
	}
	return out
}

func TestController_WishlistMarksFollowAuthEvents(t *testing.T) {
	f := newFixture(t, category.SpecFilterOS)
	f.source.set(models.CategorySmartphones, phones("s", "Samsung", 3), nil)
	bus := event.NewBus(zap.NewNop())
	wl := &fakeWishlist{ids: map[string]struct{}{"s-2": {}}}
	f.deps.Bus = bus
	f.deps.Wishlist = wl
	c := f.controller(t, f.selection(t, "smartphones", ""))
	ctx := context.Background()

	// Signed out: the load succeeds without marks.
	require.NoError(t, c.Load(ctx))
	require.False(t, inWishlist(c.View())["s-2"])

	wl.setSignedIn(true)
	require.NoError(t, bus.Publish(ctx, event.Event{Topic: event.TopicLogin}))
	marks := inWishlist(c.View())
	require.True(t, marks["s-2"])
	require.False(t, marks["s-1"])
	require.Equal(t, 1, f.source.calls, "auth events must not refetch the catalog")

	require.NoError(t, bus.Publish(ctx, event.Event{Topic: event.TopicLogout}))
	require.False(t, inWishlist(c.View())["s-2"])
	require.Equal(t, 2, wl.invalidated)

	// After Close the controller no longer reacts.
	c.Close()
	require.NoError(t, bus.Publish(ctx, event.Event{Topic: event.TopicLogin}))
	require.False(t, inWishlist(c.View())["s-2"])
}

func TestController_AddAndRemoveWishlist(t *testing.T) {
	f := newFixture(t, category.SpecFilterOS)
	f.source.set(models.CategorySmartphones, phones("s", "Samsung", 2), nil)
	wl := &fakeWishlist{signedIn: true, ids: map[string]struct{}{}}
	f.deps.Wishlist = wl
	c := f.controller(t, f.selection(t, "smartphones", ""))
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.AddToWishlist(ctx, "s-1"))
	require.True(t, inWishlist(c.View())["s-1"])

	require.NoError(t, c.RemoveFromWishlist(ctx, "s-1"))
	require.False(t, inWishlist(c.View())["s-1"])

	require.ErrorIs(t, c.AddToWishlist(ctx, "missing"), ErrUnknownProduct)
}

func TestController_CreateAlert(t *testing.T) {
	f := newFixture(t, category.SpecFilterOS)
	f.source.set(models.CategorySmartphones, phones("s", "Samsung", 2), nil)
	c := f.controller(t, f.selection(t, "smartphones", ""))
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	_, err := c.CreateAlert(ctx, "s-1", 0)
	require.ErrorIs(t, err, ErrNoCollaborator)

	alerts := &fakeAlerts{}
	f.deps.Alerts = alerts
	c = f.controller(t, f.selection(t, "smartphones", ""))
	require.NoError(t, c.Load(ctx))

	alert, err := c.CreateAlert(ctx, "s-2", 900)
	require.NoError(t, err)
	require.Equal(t, "s-2", alert.ProductID)
	require.Equal(t, 1100.0, alert.CurrentPrice)

	_, err = c.CreateAlert(ctx, "nope", 0)
	require.ErrorIs(t, err, ErrUnknownProduct)
}
