// Package collab holds the REST-backed wishlist and price alert
// collaborators. Both are persisted by the catalog service; this package
// only shapes requests and keeps a per-session view of the wishlist.
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Doer sends a JSON request to the catalog service. *catalogapi.Client
// implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// ErrNoPrice is returned when an alert is requested for a product whose
// price is unknown and no target was given.
var ErrNoPrice = errors.New("collab: product has no known price")

// listKeys are the envelope fields that may carry a collection.
var listKeys = []string{"items", "data", "wishlist", "alerts", "results"}

// decodeList accepts a bare JSON array or an object wrapping one under a
// known key. An empty body decodes to an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("collab: decode list: %w", err)
	}
	for _, k := range listKeys {
		inner, ok := obj[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, fmt.Errorf("collab: decode %s: %w", k, err)
		}
		return list, nil
	}
	return nil, fmt.Errorf("collab: no list in response")
}
