package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"wellness-meal-planner/internal/mealplan"
	"wellness-meal-planner/internal/recipe"
	"wellness-meal-planner/internal/shared"
	"wellness-meal-planner/internal/shopping"
)

// DefaultFallbackBudget is the number of fallbacks one operation may take
// before it is reported as degraded.
const DefaultFallbackBudget = 4

var (
	// ErrPersist wraps any failure to write state back. The returned state is
	// discarded and the stored state stays as it was.
	ErrPersist = errors.New("failed to persist planner state")
	// ErrConfirmationRequired is returned by Regenerate without confirmation.
	ErrConfirmationRequired = errors.New("regenerating discards the current plan and locks; confirmation required")
)

// MetricsRecorder receives the metadata of every operation.
type MetricsRecorder interface {
	RecordMeta(meta shared.OpMeta) error
}

// State is the planner state for one week key.
type State struct {
	WeekKey string
	Plan    mealplan.Plan
	Locks   mealplan.LockGrid
	// Regenerated is set when Load had to rebuild the plan.
	Regenerated bool
}

// Context builds the engine context for s.
func (s State) Context() mealplan.PlanContext {
	return mealplan.NewPlanContext(s.Plan, s.Locks)
}

// Outcome is the result of a mutating operation.
type Outcome struct {
	State State
	Meta  shared.OpMeta
	// Previous and Current are set by Swap.
	Previous string
	Current  string
	// Failed counts cells a reroll could not change.
	Failed int
}

// Planner loads state through a Gateway, runs the engine and writes the
// result back before returning. Operations are serialized so concurrent
// callers never interleave a load with another caller's write.
type Planner struct {
	mu      sync.Mutex
	engine  *mealplan.Engine
	gateway Gateway
	metrics MetricsRecorder
	budget  int
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithMetrics records every operation.
func WithMetrics(m MetricsRecorder) Option {
	return func(p *Planner) { p.metrics = m }
}

// WithFallbackBudget overrides DefaultFallbackBudget. Negative values are ignored.
func WithFallbackBudget(n int) Option {
	return func(p *Planner) {
		if n >= 0 {
			p.budget = n
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// NewPlanner creates a new Planner.
func NewPlanner(engine *mealplan.Engine, gateway Gateway, opts ...Option) *Planner {
	p := &Planner{
		engine:  engine,
		gateway: gateway,
		budget:  DefaultFallbackBudget,
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog returns the catalog plans are built from.
func (p *Planner) Catalog() *recipe.Catalog {
	return p.engine.Catalog()
}

// Load returns the state for weekKey. A missing or malformed plan, or one
// built from another catalog version, is replaced by a freshly generated plan
// with all cells unlocked. Malformed locks on a valid plan unlock everything.
func (p *Planner) Load(ctx context.Context, weekKey string) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx, weekKey)
}

func (p *Planner) load(ctx context.Context, weekKey string) (State, error) {
	start := p.now()
	if weekKey == "" {
		return State{}, fmt.Errorf("week key is empty")
	}

	version, err := p.gateway.LoadCatalogVersion(ctx, weekKey)
	if err != nil {
		return State{}, fmt.Errorf("failed to load catalog version: %w", err)
	}
	planData, err := p.gateway.LoadPlan(ctx, weekKey)
	if err != nil {
		return State{}, fmt.Errorf("failed to load plan: %w", err)
	}

	st := State{WeekKey: weekKey}
	reason := ""
	switch {
	case planData == nil:
		reason = "no stored plan"
	case version != p.Catalog().Version():
		reason = fmt.Sprintf("catalog version changed from %q to %q", version, p.Catalog().Version())
	default:
		st.Plan, err = mealplan.DecodePlan(planData)
		if err == nil {
			err = p.checkIDs(st.Plan)
		}
		if err != nil {
			reason = err.Error()
		}
	}
	if reason != "" {
		p.logger.Printf("Rebuilding plan %s: %s", weekKey, reason)
		out, err := p.rebuild(ctx, weekKey, "load", nil)
		if err != nil {
			return State{}, err
		}
		out.Meta.Latency = p.now().Sub(start)
		p.record(out.Meta)
		return out.State, nil
	}

	locksData, err := p.gateway.LoadLocks(ctx, weekKey)
	if err != nil {
		return State{}, fmt.Errorf("failed to load locks: %w", err)
	}
	if locksData != nil {
		st.Locks, err = mealplan.DecodeLocks(locksData)
		if err != nil {
			p.logger.Printf("Warning: locks for %s are malformed, unlocking all cells: %v", weekKey, err)
			st.Locks = mealplan.LockGrid{}
		}
	}
	return st, nil
}

// checkIDs rejects plans that reference recipes the catalog does not have.
// An empty cell is only valid when the catalog has no recipe of that meal
// type.
func (p *Planner) checkIDs(plan mealplan.Plan) error {
	c := p.Catalog()
	for w := range plan {
		for d := range plan[w] {
			for _, m := range recipe.MealTypes {
				id := plan[w][d].Get(m)
				if id == "" {
					if len(c.ByMealType(m)) > 0 {
						return fmt.Errorf("%w: empty %s at week %d day %d", mealplan.ErrMalformed, m, w, d)
					}
					continue
				}
				if r, ok := c.Get(id); !ok || r.MealType != m {
					return fmt.Errorf("%w: unknown %s recipe %q at week %d day %d", mealplan.ErrMalformed, m, id, w, d)
				}
			}
		}
	}
	return nil
}

// rebuild generates a fresh plan for weekKey. With a nil prev everything is
// written; otherwise a failed write leaves prev in place.
func (p *Planner) rebuild(ctx context.Context, weekKey, op string, prev *State) (Outcome, error) {
	gen := p.engine.Generate()
	next := State{WeekKey: weekKey, Plan: gen.Plan, Locks: gen.Locks, Regenerated: true}
	if err := p.commit(ctx, prev, next, true); err != nil {
		return Outcome{}, err
	}
	return Outcome{
		State: next,
		Meta:  p.meta(op, weekKey, gen.Fallbacks, 0, mealplan.TotalDays*len(recipe.MealTypes)),
	}, nil
}

// commit writes the parts of next that differ from prev. A nil prev writes
// everything including the catalog version. If a later write fails, earlier
// writes in the same commit are reverted so the stored plan and locks stay
// consistent with each other.
func (p *Planner) commit(ctx context.Context, prev *State, next State, withVersion bool) error {
	writePlan := prev == nil || prev.Plan != next.Plan
	writeLocks := prev == nil || prev.Locks != next.Locks

	planData, err := mealplan.EncodePlan(next.Plan)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	locksData, err := mealplan.EncodeLocks(next.Locks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	// A full write first clears the version so that a failure part way
	// through leaves a state the next Load rebuilds.
	if prev == nil {
		if err := p.gateway.SaveCatalogVersion(ctx, next.WeekKey, ""); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	if writePlan {
		if err := p.gateway.SavePlan(ctx, next.WeekKey, planData); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	if writeLocks {
		if err := p.gateway.SaveLocks(ctx, next.WeekKey, locksData); err != nil {
			if writePlan && prev != nil {
				p.revertPlan(ctx, *prev)
			}
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	// The version goes last: if it is not written the next Load rebuilds.
	if withVersion {
		if err := p.gateway.SaveCatalogVersion(ctx, next.WeekKey, p.Catalog().Version()); err != nil {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	return nil
}

func (p *Planner) revertPlan(ctx context.Context, prev State) {
	data, err := mealplan.EncodePlan(prev.Plan)
	if err == nil {
		err = p.gateway.SavePlan(ctx, prev.WeekKey, data)
	}
	if err != nil {
		p.logger.Printf("Warning: failed to revert plan %s after a partial write: %v", prev.WeekKey, err)
	}
}

func (p *Planner) meta(op, weekKey string, fallbacks, fixed, changed int) shared.OpMeta {
	return shared.OpMeta{
		Operation: op,
		WeekKey:   weekKey,
		Fallbacks: fallbacks,
		Fixed:     fixed,
		Changed:   changed,
		Degraded:  fallbacks > p.budget,
	}
}

func (p *Planner) record(meta shared.OpMeta) {
	if meta.Degraded {
		p.logger.Printf("Warning: %s on %s needed %d fallbacks (budget %d); the catalog may be too small", meta.Operation, meta.WeekKey, meta.Fallbacks, p.budget)
	}
	if p.metrics == nil {
		return
	}
	if err := p.metrics.RecordMeta(meta); err != nil {
		p.logger.Printf("Warning: failed to record metrics for %s: %v", meta.Operation, err)
	}
}

// mutate runs fn against the loaded state and commits its result.
func (p *Planner) mutate(ctx context.Context, weekKey, op string, fn func(State) (Outcome, error)) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	prev, err := p.load(ctx, weekKey)
	if err != nil {
		return Outcome{}, err
	}
	out, err := fn(prev)
	if err != nil {
		return Outcome{State: prev}, err
	}
	out.State.WeekKey = weekKey
	if err := p.commit(ctx, &prev, out.State, false); err != nil {
		return Outcome{}, err
	}
	out.Meta.Operation = op
	out.Meta.WeekKey = weekKey
	out.Meta.Degraded = out.Meta.Fallbacks > p.budget
	out.Meta.Latency = p.now().Sub(start)
	p.record(out.Meta)
	return out, nil
}

func fromContext(pc mealplan.PlanContext) State {
	return State{Plan: pc.Plan, Locks: pc.Locks}
}

// ToggleLock flips the lock on one cell.
func (p *Planner) ToggleLock(ctx context.Context, weekKey string, c mealplan.Cell) (Outcome, error) {
	return p.mutate(ctx, weekKey, "toggle_lock", func(st State) (Outcome, error) {
		pc, err := mealplan.ToggleLock(st.Context(), c)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{State: fromContext(pc)}, nil
	})
}

// Swap replaces the recipe in one unlocked cell.
func (p *Planner) Swap(ctx context.Context, weekKey string, c mealplan.Cell) (Outcome, error) {
	return p.mutate(ctx, weekKey, "swap", func(st State) (Outcome, error) {
		res, err := p.engine.Swap(st.Context(), c)
		if err != nil {
			return Outcome{}, err
		}
		fallbacks := 0
		if res.Fallback {
			fallbacks = 1
		}
		return Outcome{
			State:    fromContext(res.Context),
			Meta:     shared.OpMeta{Fallbacks: fallbacks, Changed: 1},
			Previous: res.Previous,
			Current:  res.Current,
		}, nil
	})
}

// RerollDay swaps every unlocked meal of one day.
func (p *Planner) RerollDay(ctx context.Context, weekKey string, week, day int) (Outcome, error) {
	return p.mutate(ctx, weekKey, "reroll_day", func(st State) (Outcome, error) {
		res, err := p.engine.RerollDay(st.Context(), week, day)
		if err != nil {
			return Outcome{}, err
		}
		return rerollOutcome(res), nil
	})
}

// RerollWeek swaps every unlocked meal of one week.
func (p *Planner) RerollWeek(ctx context.Context, weekKey string, week int) (Outcome, error) {
	return p.mutate(ctx, weekKey, "reroll_week", func(st State) (Outcome, error) {
		res, err := p.engine.RerollWeek(st.Context(), week)
		if err != nil {
			return Outcome{}, err
		}
		return rerollOutcome(res), nil
	})
}

func rerollOutcome(res mealplan.RerollResult) Outcome {
	return Outcome{
		State:  fromContext(res.Context),
		Meta:   shared.OpMeta{Fallbacks: res.Fallbacks, Changed: res.Changed},
		Failed: res.Failed,
	}
}

// Regenerate discards the plan and all locks for weekKey and builds a new
// plan. It refuses to run unless confirm is true.
func (p *Planner) Regenerate(ctx context.Context, weekKey string, confirm bool) (Outcome, error) {
	if !confirm {
		return Outcome{}, ErrConfirmationRequired
	}
	if weekKey == "" {
		return Outcome{}, fmt.Errorf("week key is empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	prev, err := p.load(ctx, weekKey)
	if err != nil {
		return Outcome{}, err
	}
	out, err := p.rebuild(ctx, weekKey, "regenerate", &prev)
	if err != nil {
		return Outcome{}, err
	}
	out.Meta.Latency = p.now().Sub(start)
	p.record(out.Meta)
	return out, nil
}

// Repair replaces excess uses of over-cap recipes in unlocked cells.
func (p *Planner) Repair(ctx context.Context, weekKey string) (Outcome, error) {
	return p.mutate(ctx, weekKey, "repair", func(st State) (Outcome, error) {
		res := p.engine.Repair(st.Plan, st.Locks)
		next := st
		next.Plan = res.Plan
		next.Regenerated = false
		return Outcome{
			State: next,
			Meta:  shared.OpMeta{Fallbacks: res.Fallbacks, Fixed: res.Fixed, Changed: res.Fixed},
		}, nil
	})
}

func (p *Planner) loadFavorites(ctx context.Context) ([]string, error) {
	data, err := p.gateway.LoadFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		p.logger.Printf("Warning: favorites are malformed, starting empty: %v", err)
		return nil, nil
	}
	return ids, nil
}

// ToggleFavorite adds or removes id from the favorites and reports whether it
// is now a favorite.
func (p *Planner) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	if _, err := p.Catalog().Lookup(id); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ids, err := p.loadFavorites(ctx)
	if err != nil {
		return false, err
	}

	favorite := false
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, id)
		slices.Sort(ids)
		favorite = true
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := p.gateway.SaveFavorites(ctx, data); err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return favorite, nil
}

// Favorites returns the favorite recipes known to the current catalog.
func (p *Planner) Favorites(ctx context.Context) ([]recipe.Recipe, error) {
	ids, err := p.loadFavorites(ctx)
	if err != nil {
		return nil, err
	}
	var out []recipe.Recipe
	for _, id := range ids {
		if r, ok := p.Catalog().Get(id); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// ShoppingList builds the ingredient list for one week of the plan.
func (p *Planner) ShoppingList(ctx context.Context, weekKey string, week int) (shopping.ShoppingList, error) {
	st, err := p.Load(ctx, weekKey)
	if err != nil {
		return shopping.ShoppingList{}, err
	}
	list, err := shopping.BuildWeek(p.Catalog(), st.Plan, week)
	if err != nil {
		return shopping.ShoppingList{}, err
	}
	list.WeekKey = weekKey
	return list, nil
}
