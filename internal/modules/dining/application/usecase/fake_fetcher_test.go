package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/domain"
)

type fakeFetcher struct {
	mu     sync.Mutex
	halls  map[string]domain.DiningHall
	errs   map[string]error
	menus  map[string]*domain.Menu
	calls  map[string]int
	delay  time.Duration
	block  bool
	active atomic.Int32
	peak   atomic.Int32
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		halls: make(map[string]domain.DiningHall),
		errs:  make(map[string]error),
		menus: make(map[string]*domain.Menu),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) setHall(hall domain.DiningHall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halls[hall.ID] = hall
	delete(f.errs, hall.ID)
}

// answerAs makes a request for id return hall, whatever its own id.
func (f *fakeFetcher) answerAs(id string, hall domain.DiningHall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halls[id] = hall
	delete(f.errs, id)
}

func (f *fakeFetcher) fail(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[id] = err
}

func (f *fakeFetcher) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeFetcher) enter(ctx context.Context, key string) error {
	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()

	current := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if current <= peak || f.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	if f.block {
		<-ctx.Done()
		return fmt.Errorf("%w: %w", port.ErrNetwork, ctx.Err())
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", port.ErrNetwork, ctx.Err())
		}
	}
	return nil
}

func (f *fakeFetcher) FetchDiningHall(ctx context.Context, id string) (domain.DiningHall, error) {
	if err := f.enter(ctx, "calendar:"+id); err != nil {
		return domain.DiningHall{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[id]; ok {
		return domain.DiningHall{}, err
	}
	hall, ok := f.halls[id]
	if !ok {
		return domain.DiningHall{}, port.ErrNotFound
	}
	return hall, nil
}

func (f *fakeFetcher) FetchCalendarRange(ctx context.Context, id string, start, end domain.DayRef) (domain.DiningHall, error) {
	if err := f.enter(ctx, "range:"+id); err != nil {
		return domain.DiningHall{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	hall, ok := f.halls[id]
	if !ok {
		return domain.DiningHall{}, port.ErrNotFound
	}
	hall.Hours = []domain.TimeRange{domain.TimeRange(`{"start":"` + start.String() + `","end":"` + end.String() + `"}`)}
	return hall, nil
}

func (f *fakeFetcher) FetchMenu(ctx context.Context, id string) (*domain.Menu, error) {
	if err := f.enter(ctx, "menu:"+id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs["menu:"+id]; ok {
		return nil, err
	}
	menu, ok := f.menus[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return menu, nil
}

func (f *fakeFetcher) FetchMenuMeal(ctx context.Context, id string, meal domain.MealType) (*domain.Menu, error) {
	if err := f.enter(ctx, "meal:"+id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	menu, ok := f.menus[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &domain.Menu{HallID: id, Meals: map[domain.MealType][]domain.FoodItem{meal: menu.Meals[meal]}}, nil
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, msg *domain.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
}

func (b *recordingBroadcaster) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	topics := make([]string, 0, len(b.messages))
	for _, msg := range b.messages {
		topics = append(topics, msg.Topic)
	}
	return topics
}

var _ port.EateryFetcher = (*fakeFetcher)(nil)
var _ port.Broadcaster = (*recordingBroadcaster)(nil)
