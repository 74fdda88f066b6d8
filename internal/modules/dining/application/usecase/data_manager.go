package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/domain"
)

const defaultRefreshConcurrency = 8

// BatchResult is the single terminal event of a batch refresh. Stored maps each succeeded
// catalog id to the id its dining hall was stored under, which is the id the service answered with.
type BatchResult struct {
	Succeeded []string
	Stored    map[string]string
	Failed    map[string]error
	Elapsed   time.Duration
}

// Total is the number of attempted refreshes.
func (r BatchResult) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// FailedIDs returns the identifiers that failed, sorted.
func (r BatchResult) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Option customises a DataManager.
type Option func(*DataManager)

// WithCatalog replaces the dining hall identifiers refreshed by RefreshAll.
func WithCatalog(ids []string) Option {
	return func(m *DataManager) { m.catalog = domain.NewCatalog(ids) }
}

// WithMenuCatalog replaces the identifiers accepted by FetchMenu.
func WithMenuCatalog(ids []string) Option {
	return func(m *DataManager) { m.menus = domain.NewCatalog(ids) }
}

// WithConcurrency bounds the number of in-flight requests of a batch refresh. n <= 0 removes the bound.
func WithConcurrency(n int) Option {
	return func(m *DataManager) { m.concurrency = n }
}

// WithRequestTimeout applies a deadline to every individual fetch.
func WithRequestTimeout(d time.Duration) Option {
	return func(m *DataManager) { m.requestTimeout = d }
}

// WithOnUpdate registers a callback invoked after every successful single refresh.
func WithOnUpdate(fn func(context.Context, domain.DiningHall)) Option {
	return func(m *DataManager) {
		if fn != nil {
			m.onUpdate = append(m.onUpdate, fn)
		}
	}
}

// WithOnBatch registers a callback invoked once per finished batch refresh.
func WithOnBatch(fn func(context.Context, BatchResult)) Option {
	return func(m *DataManager) {
		if fn != nil {
			m.onBatch = append(m.onBatch, fn)
		}
	}
}

// DataManager owns the in-memory dining hall collection. There is exactly one entry per id;
// refreshes replace entries in place and append unseen ids, so order reflects first arrival.
type DataManager struct {
	fetcher        port.EateryFetcher
	catalog        domain.Catalog
	menus          domain.Catalog
	concurrency    int
	requestTimeout time.Duration
	onUpdate       []func(context.Context, domain.DiningHall)
	onBatch        []func(context.Context, BatchResult)

	mu    sync.RWMutex
	halls []domain.DiningHall
	index map[string]int
}

func NewDataManager(fetcher port.EateryFetcher, opts ...Option) *DataManager {
	m := &DataManager{
		fetcher:     fetcher,
		catalog:     domain.DefaultCalendarCatalog(),
		menus:       domain.DefaultMenuCatalog(),
		concurrency: defaultRefreshConcurrency,
		index:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the identifiers refreshed by RefreshAll.
func (m *DataManager) Catalog() []string {
	return m.catalog.IDs()
}

// MenuCatalog returns the identifiers accepted by FetchMenu.
func (m *DataManager) MenuCatalog() []string {
	return m.menus.IDs()
}

// RefreshOne fetches the calendar for id and stores the result. The identifier is not checked
// against the catalog. On failure the collection is left untouched.
func (m *DataManager) RefreshOne(ctx context.Context, id string) (domain.DiningHall, error) {
	ctx, cancel := m.withRequestTimeout(ctx)
	defer cancel()

	hall, err := m.fetcher.FetchDiningHall(ctx, id)
	if err != nil {
		slog.Warn("dining hall refresh failed", slog.String("hallId", id), slog.String("kind", string(port.KindOf(err))), slog.Any("error", err))
		return domain.DiningHall{}, fmt.Errorf("refresh dining hall %s: %w", id, err)
	}
	if hall.ID != id {
		slog.Debug("dining hall id differs from requested id", slog.String("requested", id), slog.String("received", hall.ID))
	}

	stored := m.upsert(hall)
	slog.Debug("dining hall refreshed", slog.String("hallId", stored.ID))
	for _, fn := range m.onUpdate {
		fn(ctx, stored.Clone())
	}
	return stored, nil
}

// RefreshAll refreshes every catalog entry concurrently and returns once all attempts have
// finished, successfully or not.
func (m *DataManager) RefreshAll(ctx context.Context) BatchResult {
	return m.refreshAll(ctx, nil)
}

// RefreshAllEach behaves like RefreshAll but also calls onEach after each individual success,
// so onEach fires up to N times. Kept for callers built around per-hall completion.
func (m *DataManager) RefreshAllEach(ctx context.Context, onEach func()) BatchResult {
	return m.refreshAll(ctx, onEach)
}

func (m *DataManager) refreshAll(ctx context.Context, onEach func()) BatchResult {
	started := time.Now()
	ids := m.catalog.IDs()
	errs := make([]error, len(ids))
	stored := make([]string, len(ids))

	var eachMu sync.Mutex
	var g errgroup.Group
	if m.concurrency > 0 {
		g.SetLimit(m.concurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			hall, err := m.RefreshOne(ctx, id)
			errs[i] = err
			stored[i] = hall.ID
			if err == nil && onEach != nil {
				eachMu.Lock()
				onEach()
				eachMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{
		Succeeded: make([]string, 0, len(ids)),
		Stored:    make(map[string]string, len(ids)),
		Failed:    make(map[string]error),
	}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failed[id] = errs[i]
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
		result.Stored[id] = stored[i]
		if stored[i] != id {
			slog.Warn("dining hall stored under a different id", slog.String("requested", id), slog.String("stored", stored[i]))
		}
	}
	result.Elapsed = time.Since(started)

	slog.Info("dining halls refreshed", slog.Int("succeeded", len(result.Succeeded)), slog.Int("failed", len(result.Failed)), slog.Duration("elapsed", result.Elapsed))
	for _, fn := range m.onBatch {
		fn(ctx, result)
	}
	return result
}

// FetchMenu loads the full menu for id. Identifiers outside the menu catalog fail with
// ErrInvalidIdentifier without any request. Menus are not retained.
func (m *DataManager) FetchMenu(ctx context.Context, id string) (*domain.Menu, error) {
	if err := m.checkMenuID(id); err != nil {
		return nil, err
	}
	ctx, cancel := m.withRequestTimeout(ctx)
	defer cancel()

	menu, err := m.fetcher.FetchMenu(ctx, id)
	if err != nil {
		slog.Warn("menu fetch failed", slog.String("hallId", id), slog.String("kind", string(port.KindOf(err))), slog.Any("error", err))
		return nil, fmt.Errorf("fetch menu %s: %w", id, err)
	}
	return menu, nil
}

// FetchMenuMeal loads a single meal for id, gated by the menu catalog like FetchMenu.
func (m *DataManager) FetchMenuMeal(ctx context.Context, id string, meal domain.MealType) (*domain.Menu, error) {
	if err := m.checkMenuID(id); err != nil {
		return nil, err
	}
	ctx, cancel := m.withRequestTimeout(ctx)
	defer cancel()

	menu, err := m.fetcher.FetchMenuMeal(ctx, id, meal)
	if err != nil {
		slog.Warn("menu meal fetch failed", slog.String("hallId", id), slog.String("meal", meal.String()), slog.String("kind", string(port.KindOf(err))), slog.Any("error", err))
		return nil, fmt.Errorf("fetch menu %s %s: %w", id, meal, err)
	}
	return menu, nil
}

// FetchHours loads a hall's hours between start and end. The result is not stored because it
// describes a different window than the current calendar.
func (m *DataManager) FetchHours(ctx context.Context, id string, start, end domain.DayRef) (domain.DiningHall, error) {
	ctx, cancel := m.withRequestTimeout(ctx)
	defer cancel()

	hall, err := m.fetcher.FetchCalendarRange(ctx, id, start, end)
	if err != nil {
		slog.Warn("dining hall hours fetch failed", slog.String("hallId", id), slog.String("start", start.String()), slog.String("end", end.String()), slog.Any("error", err))
		return domain.DiningHall{}, fmt.Errorf("fetch hours %s %s-%s: %w", id, start, end, err)
	}
	return hall, nil
}

// DiningHalls returns a snapshot of the collection. Mutating it does not affect the manager.
func (m *DataManager) DiningHalls() []domain.DiningHall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.DiningHall, len(m.halls))
	for i, hall := range m.halls {
		out[i] = hall.Clone()
	}
	return out
}

// DiningHall looks up a single hall by id.
func (m *DataManager) DiningHall(id string) (domain.DiningHall, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return domain.DiningHall{}, false
	}
	return m.halls[i].Clone(), true
}

// Len returns the number of halls held.
func (m *DataManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.halls)
}

func (m *DataManager) upsert(hall domain.DiningHall) domain.DiningHall {
	stored := hall.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.index[stored.ID]; ok {
		m.halls[i] = stored
	} else {
		m.index[stored.ID] = len(m.halls)
		m.halls = append(m.halls, stored)
	}
	return stored.Clone()
}

func (m *DataManager) checkMenuID(id string) error {
	if m.menus.Contains(id) {
		return nil
	}
	slog.Debug("menu request rejected", slog.String("hallId", id))
	return fmt.Errorf("%w: %q does not publish a menu", port.ErrInvalidIdentifier, id)
}

func (m *DataManager) withRequestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.requestTimeout > 0 {
		return context.WithTimeout(ctx, m.requestTimeout)
	}
	return ctx, func() {}
}
