package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// StateSchemaVersion is the persisted view state format version.
const StateSchemaVersion = 1

// ViewState is the committed view of one category page as persisted
// between sessions.
type ViewState struct {
	Version            int      `json:"version"`
	SelectedBrands     []string `json:"selectedBrands"`
	SelectedOS         []string `json:"selectedOS"`
	SelectedFeatures   []string `json:"selectedFeatures"`
	SelectedPriceRange string   `json:"selectedPriceRange"`
	CurrentPage        int      `json:"currentPage"`
	Sort               string   `json:"sort"`
	Category           string   `json:"category"`
}

// ViewStates reads and writes ViewState values keyed by category.
type ViewStates struct {
	repo   StateRepository
	logger *zap.Logger
}

// NewViewStates wraps repo.
func NewViewStates(repo StateRepository, logger *zap.Logger) *ViewStates {
	return &ViewStates{repo: repo, logger: logger.Named("viewstate")}
}

// Load returns the state saved under key. ok is false when nothing usable
// is stored; malformed or wrong-version entries are deleted.
func (s *ViewStates) Load(ctx context.Context, key string) (state ViewState, ok bool, err error) {
	entry, err := s.repo.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return ViewState{}, false, nil
	case errors.Is(err, ErrCorruptState):
		s.discard(ctx, key, err)
		return ViewState{}, false, nil
	case err != nil:
		return ViewState{}, false, err
	}

	state, err = decodeViewState(entry.Value)
	if err != nil {
		s.discard(ctx, key, err)
		return ViewState{}, false, nil
	}
	return state, true, nil
}

// Save stores state under key, stamping the schema version.
func (s *ViewStates) Save(ctx context.Context, key string, state ViewState) error {
	state.Version = StateSchemaVersion
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode view state: %w", err)
	}
	return s.repo.Set(ctx, key, string(raw))
}

// Clear removes the state saved under key. Missing keys are not an error.
func (s *ViewStates) Clear(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// List returns the stored entries.
func (s *ViewStates) List(ctx context.Context, opts ListOptions) (*ListResult[StateEntry], error) {
	return s.repo.List(ctx, opts)
}

func (s *ViewStates) discard(ctx context.Context, key string, cause error) {
	s.logger.Warn("discarding persisted view state",
		zap.String("key", key),
		zap.Error(cause),
	)
	if err := s.repo.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("delete corrupt view state", zap.String("key", key), zap.Error(err))
	}
}

func decodeViewState(raw string) (ViewState, error) {
	var st ViewState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return ViewState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if st.Version != StateSchemaVersion {
		return ViewState{}, fmt.Errorf("%w: version %d", ErrCorruptState, st.Version)
	}
	if st.CurrentPage < 1 {
		st.CurrentPage = 1
	}
	return st, nil
}
