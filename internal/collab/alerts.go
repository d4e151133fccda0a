package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/pricing"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Alerts creates and lists price alerts.
type Alerts struct {
	api    Doer
	logger *zap.Logger
	now    func() time.Time
}

// NewAlerts creates a price alert collaborator.
func NewAlerts(api Doer, logger *zap.Logger, opts ...Option) *Alerts {
	o := buildOptions(opts)
	return &Alerts{api: api, logger: logger.Named("alerts"), now: o.now}
}

// Create asks to be notified when p drops to target. A non-positive target
// means the current lowest price.
func (a *Alerts) Create(ctx context.Context, p models.Product, target float64) (models.PriceAlert, error) {
	current, ok := pricing.Lowest(&p)
	if target <= 0 {
		if !ok {
			return models.PriceAlert{}, fmt.Errorf("collab: alert for %s: %w", p.ID, ErrNoPrice)
		}
		target = current
	}

	alert := models.PriceAlert{
		ProductID:    p.ID,
		ProductName:  p.Name,
		Category:     p.Category,
		TargetPrice:  target,
		CurrentPrice: current,
		CreatedAt:    a.now().UTC(),
	}
	created := alert
	if err := a.api.Do(ctx, http.MethodPost, "/price-alerts", alert, &created); err != nil {
		return models.PriceAlert{}, fmt.Errorf("collab: create alert %s: %w", p.ID, err)
	}
	a.logger.Info("price alert created",
		zap.String("product_id", p.ID),
		zap.Float64("target", target),
		zap.String("alert_id", created.ID),
	)
	return created, nil
}

// List returns the user's price alerts.
func (a *Alerts) List(ctx context.Context) ([]models.PriceAlert, error) {
	var raw json.RawMessage
	if err := a.api.Do(ctx, http.MethodGet, "/price-alerts", nil, &raw); err != nil {
		return nil, fmt.Errorf("collab: list alerts: %w", err)
	}
	return decodeList[models.PriceAlert](raw)
}
