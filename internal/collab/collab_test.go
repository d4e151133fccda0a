package collab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/catalogapi"
	"github.com/HerbHall/pricescout/internal/testutil"
	"github.com/HerbHall/pricescout/pkg/models"
)

// fakeService is an in-memory wishlist and alert backend.
type fakeService struct {
	mu       sync.Mutex
	wishlist map[string]models.Product
	alerts   []models.PriceAlert
	lists    int
	wrap     bool
}

func newFakeService() *fakeService {
	return &fakeService{wishlist: map[string]models.Product{}}
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/wishlist":
		f.lists++
		items := make([]models.WishlistItem, 0, len(f.wishlist))
		for id, p := range f.wishlist {
			items = append(items, models.WishlistItem{ProductID: id, Product: p})
		}
		f.write(w, items)
	case r.Method == http.MethodPost && r.URL.Path == "/wishlist":
		var req addRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.wishlist[req.ProductID] = req.ProductData
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	case r.Method == http.MethodDelete && len(r.URL.Path) > len("/wishlist/"):
		id := r.URL.Path[len("/wishlist/"):]
		if _, ok := f.wishlist[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not on wishlist"}`))
			return
		}
		delete(f.wishlist, id)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/price-alerts":
		var a models.PriceAlert
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &a); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		a.ID = "alert-1"
		f.alerts = append(f.alerts, a)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(a)
	case r.Method == http.MethodGet && r.URL.Path == "/price-alerts":
		f.write(w, f.alerts)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeService) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeService) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

func (f *fakeService) write(w http.ResponseWriter, v any) {
	if f.wrap {
		_ = json.NewEncoder(w).Encode(map[string]any{"items": v})
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func newAPI(t *testing.T, h http.Handler) *catalogapi.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := catalogapi.New(catalogapi.Options{BaseURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestWishlist_AddListRemove(t *testing.T) {
	svc := newFakeService()
	clock := testutil.NewClock()
	w := NewWishlist(newAPI(t, svc), zap.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	p := testutil.NewProduct(testutil.WithID("p1"), testutil.WithOffers(999))
	item, err := w.Add(ctx, p)
	require.NoError(t, err)
	require.Equal(t, "p1", item.ProductID)
	require.Equal(t, clock.Now(), item.AddedAt)

	in, err := w.IsInWishlist(ctx, "p1")
	require.NoError(t, err)
	require.True(t, in)

	items, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "p1", items[0].Product.ID)

	require.NoError(t, w.Remove(ctx, "p1"))
	in, err = w.IsInWishlist(ctx, "p1")
	require.NoError(t, err)
	require.False(t, in)

	// Removing an unknown product is not an error.
	require.NoError(t, w.Remove(ctx, "p1"))
}

func TestWishlist_MembershipCachedPerSession(t *testing.T) {
	svc := newFakeService()
	svc.wishlist["p1"] = models.Product{ID: "p1"}
	w := NewWishlist(newAPI(t, svc), zap.NewNop())
	ctx := context.Background()

	for range 3 {
		in, err := w.IsInWishlist(ctx, "p1")
		require.NoError(t, err)
		require.True(t, in)
	}
	require.Equal(t, 1, svc.listCount())

	w.Invalidate()
	_, err := w.IsInWishlist(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 2, svc.listCount())
}

func TestWishlist_AddUpdatesLoadedMarks(t *testing.T) {
	svc := newFakeService()
	w := NewWishlist(newAPI(t, svc), zap.NewNop())
	ctx := context.Background()

	marks, err := w.Marks(ctx)
	require.NoError(t, err)
	require.Empty(t, marks)

	_, err = w.Add(ctx, models.Product{ID: "p2"})
	require.NoError(t, err)
	marks, err = w.Marks(ctx)
	require.NoError(t, err)
	require.Contains(t, marks, "p2")
	require.Equal(t, 1, svc.listCount())
}

func TestWishlist_WrappedEnvelope(t *testing.T) {
	svc := newFakeService()
	svc.wrap = true
	svc.wishlist["p9"] = models.Product{ID: "p9"}
	w := NewWishlist(newAPI(t, svc), zap.NewNop())

	items, err := w.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "p9", items[0].ProductID)
}

func TestWishlist_Unauthorized(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"sign in required"}`))
	})
	w := NewWishlist(newAPI(t, h), zap.NewNop())

	_, err := w.IsInWishlist(context.Background(), "p1")
	require.ErrorIs(t, err, catalogapi.ErrUnauthorized)

	_, err = w.Add(context.Background(), models.Product{ID: "p1"})
	require.ErrorIs(t, err, catalogapi.ErrUnauthorized)
}

func TestWishlist_AddRequiresID(t *testing.T) {
	w := NewWishlist(newAPI(t, newFakeService()), zap.NewNop())
	_, err := w.Add(context.Background(), models.Product{})
	require.Error(t, err)
}

func TestAlerts_CreateAndList(t *testing.T) {
	svc := newFakeService()
	clock := testutil.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	a := NewAlerts(newAPI(t, svc), zap.NewNop(), WithClock(clock.Now))
	ctx := context.Background()

	p := testutil.NewProduct(testutil.WithID("p1"), testutil.WithName("Galaxy S24"), testutil.WithOffers(12999, 11999))
	alert, err := a.Create(ctx, p, 0)
	require.NoError(t, err)
	require.Equal(t, "alert-1", alert.ID)
	require.Equal(t, 11999.0, alert.TargetPrice)
	require.Equal(t, 11999.0, alert.CurrentPrice)
	require.Equal(t, "Galaxy S24", alert.ProductName)

	_, err = a.Create(ctx, p, 9999)
	require.NoError(t, err)

	alerts, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	require.Equal(t, 9999.0, alerts[1].TargetPrice)
	require.True(t, alerts[0].CreatedAt.Equal(clock.Now()))
}

func TestAlerts_CreateWithoutPrice(t *testing.T) {
	svc := newFakeService()
	a := NewAlerts(newAPI(t, svc), zap.NewNop())

	_, err := a.Create(context.Background(), models.Product{ID: "p1"}, 0)
	require.ErrorIs(t, err, ErrNoPrice)

	// A flat price without retailer offers is as unknown here as it is to
	// filtering, sorting and display.
	_, err = a.Create(context.Background(), models.Product{ID: "p2", Price: 1999}, 0)
	require.ErrorIs(t, err, ErrNoPrice)
	require.Zero(t, svc.alertCount())

	// An explicit target works even when the price is unknown.
	_, err = a.Create(context.Background(), models.Product{ID: "p1"}, 500)
	require.NoError(t, err)
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"productId":"a"},{"productId":"b"}]`, 2, false},
		{"items", `{"items":[{"productId":"a"}]}`, 1, false},
		{"data", `{"data":[]}`, 0, false},
		{"empty body", ``, 0, false},
		{"null", `null`, 0, false},
		{"no list", `{"message":"ok"}`, 0, true},
		{"garbage", `nope`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[models.WishlistItem](json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.want)
		})
	}
}
