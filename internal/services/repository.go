// Package services provides the repositories PriceScout keeps local state
// in: committed filter selections per category, behind interchangeable
// SQLite, Redis and in-memory backends.
package services

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrCorruptState = errors.New("corrupt persisted state")
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// ListOptions selects a window of keys in key order.
type ListOptions struct {
	Limit  int    // 0 means 50; capped at 1000
	Offset int
	Prefix string // only keys starting with Prefix
}

// ListResult is one window of a listing. Total counts every match.
type ListResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func normalizeListOptions(opts ListOptions) ListOptions {
	switch {
	case opts.Limit <= 0:
		opts.Limit = defaultListLimit
	case opts.Limit > maxListLimit:
		opts.Limit = maxListLimit
	}
	opts.Offset = max(opts.Offset, 0)
	return opts
}

// window returns the part of sorted items that normalized opts select.
func window[T any](items []T, opts ListOptions) []T {
	lo := min(opts.Offset, len(items))
	hi := min(lo+opts.Limit, len(items))
	return items[lo:hi:hi]
}
