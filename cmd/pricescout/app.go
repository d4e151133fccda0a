package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/HerbHall/pricescout/internal/auth"
	"github.com/HerbHall/pricescout/internal/catalogapi"
	"github.com/HerbHall/pricescout/internal/category"
	"github.com/HerbHall/pricescout/internal/collab"
	"github.com/HerbHall/pricescout/internal/config"
	"github.com/HerbHall/pricescout/internal/controller"
	"github.com/HerbHall/pricescout/internal/event"
	"github.com/HerbHall/pricescout/internal/filter"
	"github.com/HerbHall/pricescout/internal/logging"
	"github.com/HerbHall/pricescout/internal/metrics"
	"github.com/HerbHall/pricescout/internal/normalize"
	"github.com/HerbHall/pricescout/internal/services"
	"github.com/HerbHall/pricescout/internal/sorting"
	"github.com/HerbHall/pricescout/internal/store"
	"github.com/HerbHall/pricescout/internal/version"
	"github.com/HerbHall/pricescout/pkg/models"
)

// app holds every component a command may need. Components are built once
// per invocation in the root command's pre-run hook.
type app struct {
	settings   config.Settings
	logger     *zap.Logger
	metrics    *metrics.Metrics
	bus        *event.MemoryBus
	api        *catalogapi.Client
	session    *auth.Session
	states     *services.ViewStates
	wishlist   *collab.Wishlist
	alerts     *collab.Alerts
	categories *category.Table
	brands     *normalize.BrandTable
	normalizer *normalize.Normalizer
	sorter     *sorting.Sorter

	// db and configFile are set when state lives in SQLite and when a
	// configuration file was read. Backups need both.
	db         *store.SQLiteStore
	configFile string

	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(settings.Log.Level, settings.Log.Format)
	if err != nil {
		return nil, err
	}

	a := &app{
		settings:   settings,
		logger:     logger,
		metrics:    metrics.New(),
		bus:        event.NewBus(logger),
		categories: category.NewTable(),
		brands:     normalize.NewBrandTable(),
		sorter:     sorting.New(language.English),
		configFile: cfg.Viper().ConfigFileUsed(),
	}
	a.normalizer = normalize.New(a.brands, a.categories)
	a.closers = append(a.closers, a.metrics.Subscribe(a.bus))

	a.api, err = catalogapi.New(catalogapi.Options{
		BaseURL:   settings.API.BaseURL,
		Timeout:   settings.API.Timeout,
		RateLimit: settings.API.RateLimit,
		PageLimit: settings.API.PageLimit,
		CacheTTL:  settings.API.CacheTTL,
		CacheSize: settings.API.CacheSize,
		UserAgent: version.UserAgent(),
	}, logger, catalogapi.WithObserver(a.metrics))
	if err != nil {
		a.close()
		return nil, err
	}

	a.wishlist = collab.NewWishlist(a.api, logger)
	a.alerts = collab.NewAlerts(a.api, logger)
	a.session = auth.NewSession(a.bus, a.api, logger)
	a.closers = append(a.closers, a.session.Close)

	repo, err := a.openStateRepository(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.states = services.NewViewStates(repo, logger)

	if tok := settings.Auth.Token; tok != "" {
		if _, err := a.session.Login(ctx, tok); err != nil {
			logger.Warn("ignoring configured auth token", zap.Error(err))
		}
	}
	return a, nil
}

func (a *app) openStateRepository(ctx context.Context) (services.StateRepository, error) {
	switch a.settings.State.Backend {
	case config.BackendMemory:
		return services.NewMemoryStateRepository(), nil
	case config.BackendRedis:
		client, err := services.NewRedisClient(ctx, a.settings.State.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return services.NewRedisStateRepository(client, services.DefaultRedisPrefix), nil
	default:
		db, err := store.New(ctx, a.settings.State.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.db = db
		return services.NewSQLiteStateRepository(ctx, db)
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.logger.Sync()
}

// selection resolves a page name and a category parameter.
func (a *app) selection(pageName, raw string) (category.Selection, error) {
	page, err := a.categories.Page(pageName)
	if err != nil {
		return category.Selection{}, err
	}
	return a.categories.ResolveValue(page, raw), nil
}

// controller builds a controller wired to every collaborator.
func (a *app) controller(sel category.Selection) (*controller.Controller, error) {
	page, err := a.categories.Page(sel.Page)
	if err != nil {
		return nil, err
	}
	tiers := filter.Tiers{LowestMax: a.settings.Pricing.LowestTierMax, TopMin: a.settings.Pricing.TopTierMin}
	return controller.New(sel, controller.Deps{
		Source:     a.api,
		Normalizer: a.normalizer,
		Filters:    filter.NewEngine(a.brands, tiers, page.SpecFilter),
		Sorter:     a.sorter,
		States:     a.states,
		Wishlist:   a.wishlist,
		Alerts:     a.alerts,
		Bus:        a.bus,
		Metrics:    a.metrics,
		Logger:     a.logger,
	}, controller.Options{
		PageSize:    a.settings.Pagination.PageSize,
		Concurrency: a.settings.API.Concurrency,
	})
}

// product fetches one product by id, falling back to a scan of the
// category listing.
func (a *app) product(ctx context.Context, id string, cat models.Category) (models.Product, error) {
	rec, err := a.api.Product(ctx, id, cat)
	if err != nil {
		if errors.Is(err, catalogapi.ErrNotFound) {
			return models.Product{}, fmt.Errorf("product %s not found in %s", id, cat)
		}
		return models.Product{}, err
	}
	return a.normalizer.Normalize(rec, cat), nil
}

// categoryFlag resolves a category parameter without a page context.
func (a *app) categoryFlag(raw string) (models.Category, error) {
	c, ok := a.categories.Lookup(raw)
	if !ok {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}
