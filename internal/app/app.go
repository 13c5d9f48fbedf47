package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"wellness-meal-planner/internal/clipper"
	"wellness-meal-planner/internal/config"
	"wellness-meal-planner/internal/database"
	"wellness-meal-planner/internal/ghost"
	"wellness-meal-planner/internal/llm"
	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/metrics"
	"wellness-meal-planner/internal/planner"
	"wellness-meal-planner/internal/recipe"
	"wellness-meal-planner/internal/storage"
)

// ErrNotConfigured is returned by integrations whose settings are missing.
var ErrNotConfigured = errors.New("integration not configured")

// StateStore is a planner blob store that can also list its keys.
type StateStore interface {
	planner.BlobStore
	Keys(ctx context.Context, kind string) ([]string, error)
}

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	db           *database.DB
	store        StateStore
	metricsStore *metrics.Store
	imports      *storage.ImportStore
	base         *recipe.Catalog
	seed         *uint64
	logger       *log.Logger

	ghostClient   ghost.Client
	textGen       llm.TextGenerator
	recipeClipper *clipper.Clipper
	closers       []func() error

	mu          sync.RWMutex
	mealPlanner *planner.Planner
}

// Option configures an App.
type Option func(*App)

// WithSeed makes plan generation reproducible.
func WithSeed(seed uint64) Option {
	return func(a *App) { a.seed = &seed }
}

// WithTextGenerator replaces the Gemini client used for imports.
func WithTextGenerator(g llm.TextGenerator) Option {
	return func(a *App) { a.textGen = g }
}

// WithGhostClient replaces the Ghost client built from the config.
func WithGhostClient(c ghost.Client) Option {
	return func(a *App) { a.ghostClient = c }
}

// New opens storage, loads the catalog and builds the planner.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, logger: log.Default()}
	for _, opt := range opts {
		opt(a)
	}

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	a.metricsStore = metrics.NewStore(db.SQL)

	switch cfg.StoreBackend {
	case config.StoreFile:
		fs, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		a.store = fs
	default:
		a.store = planner.NewStateRepository(db.SQL)
	}

	if cfg.CatalogPath != "" {
		a.base, err = recipe.LoadFile(cfg.CatalogPath)
	} else {
		a.base, err = recipe.LoadDefault()
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}
	a.imports = storage.NewImportStore(cfg.ImportsPath)
	if err := a.reloadCatalog(); err != nil {
		a.Close()
		return nil, err
	}

	if a.ghostClient == nil && cfg.RequireGhost() == nil {
		a.ghostClient = ghost.NewClient(cfg)
	}
	if a.textGen == nil && cfg.RequireGemini() == nil {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, llm.DefaultGeminiModel)
		if err != nil {
			a.logger.Printf("Warning: Gemini unavailable, imports will rely on page markup: %v", err)
		} else {
			a.textGen = gemini
			a.closers = append(a.closers, gemini.Close)
		}
	}
	a.recipeClipper = clipper.NewClipper(a.textGen)

	return a, nil
}

// Close releases the database and LLM clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// reloadCatalog merges imported recipes into the base catalog and swaps in
// a planner built on the result.
func (a *App) reloadCatalog() error {
	extra, err := a.imports.Load()
	if err != nil {
		return fmt.Errorf("failed to load imported recipes: %w", err)
	}
	catalog := a.base
	if len(extra) > 0 {
		if catalog, err = a.base.Merge(extra); err != nil {
			return fmt.Errorf("failed to merge imported recipes: %w", err)
		}
	}

	var engineOpts []mealplan.Option
	if a.seed != nil {
		engineOpts = append(engineOpts, mealplan.WithPicker(mealplan.NewRandomPicker(*a.seed)))
	}
	p := planner.NewPlanner(
		mealplan.NewEngine(catalog, engineOpts...),
		planner.NewGateway(a.store),
		planner.WithMetrics(a.metricsStore),
		planner.WithFallbackBudget(a.cfg.FallbackBudget),
	)

	a.mu.Lock()
	a.mealPlanner = p
	a.mu.Unlock()
	return nil
}

// Planner returns the planner for the current catalog.
func (a *App) Planner() *planner.Planner {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mealPlanner
}

// Catalog returns the current catalog.
func (a *App) Catalog() *recipe.Catalog {
	return a.Planner().Catalog()
}

// Weeks lists the stored week keys, most recently written first.
func (a *App) Weeks(ctx context.Context) ([]string, error) {
	return a.store.Keys(ctx, planner.KindPlan)
}

// Stats renders runtime health and the daily operation summaries.
func (a *App) Stats(days int) (string, error) {
	summaries, err := a.metricsStore.GetDailySummary(days)
	if err != nil {
		return "", fmt.Errorf("failed to get daily summary: %w", err)
	}
	h := metrics.GetSysHealth(a.dataDir())
	if v, dirty, err := a.db.SchemaVersion(); err != nil {
		a.logger.Printf("Warning: %v", err)
	} else if dirty {
		h.Schema = fmt.Sprintf("v%d (dirty)", v)
	} else {
		h.Schema = fmt.Sprintf("v%d", v)
	}
	c := a.Catalog()
	h.CatalogVersion, h.Recipes = c.Version(), c.Len()
	if weeks, err := a.Weeks(context.Background()); err == nil {
		h.StoredWeeks = len(weeks)
	}
	return metrics.Report(h, summaries), nil
}

// CleanupMetrics removes metric records older than days.
func (a *App) CleanupMetrics(days int) (int64, error) {
	return a.metricsStore.Cleanup(days)
}

func (a *App) dataDir() string {
	if a.cfg.StoreBackend == config.StoreFile {
		return a.cfg.DataDir
	}
	return filepath.Dir(a.cfg.DBPath)
}
