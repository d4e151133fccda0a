package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/payload"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Listing is the raw result of a category fetch.
type Listing struct {
	Category models.Category
	Shape    payload.Shape
	Records  []payload.Record
	Cached   bool
}

// Products fetches every record of a category. Responses in an
// unrecognised envelope yield an empty listing, not an error.
func (c *Client) Products(ctx context.Context, cat models.Category) (Listing, error) {
	key := "products:" + string(cat)
	if c.cache != nil {
		if hit, ok := c.cache.Get(key); ok {
			c.observer.ObserveCache(true)
			return Listing{Category: cat, Shape: hit.Shape, Records: hit.Records, Cached: true}, nil
		}
		c.observer.ObserveCache(false)
	}

	req, err := c.request(ctx, "products")
	if err != nil {
		return Listing{}, err
	}
	res, err := req.
		SetQueryParam("category", string(cat)).
		SetQueryParam("limit", strconv.Itoa(c.pageLimit)).
		Get("/products")
	if err != nil {
		return Listing{}, fmt.Errorf("fetch %s: %w", cat, mapError(err))
	}
	if err := checkStatus(res); err != nil {
		return Listing{}, fmt.Errorf("fetch %s: %w", cat, err)
	}

	parsed := payload.Parse(res.Body())
	switch {
	case parsed.Shape == payload.ShapeNone:
		// Not cached: the next call asks the server again.
		c.logger.Warn("unrecognised product envelope",
			zap.String("category", string(cat)),
			zap.Int("bytes", len(res.Body())),
		)
	case c.cache != nil:
		c.cache.Add(key, parsed)
	}
	return Listing{Category: cat, Shape: parsed.Shape, Records: parsed.Records}, nil
}

// Product fetches one record by id. When the direct lookup 404s, or
// answers with a different product, the category listing is scanned.
func (c *Client) Product(ctx context.Context, id string, cat models.Category) (payload.Record, error) {
	rec, err := c.productDirect(ctx, id, cat)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	c.logger.Debug("direct product lookup missed, scanning listing",
		zap.String("id", id),
		zap.String("category", string(cat)),
		zap.Error(err),
	)
	listing, err := c.Products(ctx, cat)
	if err != nil {
		return nil, err
	}
	for _, r := range listing.Records {
		if recordID(r) == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("product %s in %s: %w", id, cat, ErrNotFound)
}

func (c *Client) productDirect(ctx context.Context, id string, cat models.Category) (payload.Record, error) {
	req, err := c.request(ctx, "products/{id}")
	if err != nil {
		return nil, err
	}
	res, err := req.
		SetQueryParam("category", string(cat)).
		Get("/products/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, mapError(err))
	}
	if err := checkStatus(res); err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", id, err)
	}

	for _, r := range payload.Parse(res.Body()).Records {
		if recordID(r) == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("product %s: response did not contain it: %w", id, ErrNotFound)
}

// recordID reads the identity of a raw record the way the normalizer does.
func recordID(r payload.Record) string {
	for _, k := range []string{"product_id", "id"} {
		switch v := r[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case fmt.Stringer:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
