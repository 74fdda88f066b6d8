package usecase

import (
	"context"

	"eateryApi/internal/modules/dining/application/port"
	"eateryApi/internal/modules/dining/domain"
)

// Result carries the outcome of an asynchronous operation.
type Result[T any] struct {
	Value T
	Err   error
}

// Kind classifies Err.
func (r Result[T]) Kind() port.ErrorKind {
	return port.KindOf(r.Err)
}

// Operation is a handle on work running in the background. Its completion callback runs
// exactly once, before Done is closed.
type Operation[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	result Result[T]
}

func startOperation[T any](parent context.Context, fn func(context.Context) (T, error), onDone func(Result[T])) *Operation[T] {
	ctx, cancel := context.WithCancel(parent)
	op := &Operation[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer cancel()
		value, err := fn(ctx)
		op.finish(Result[T]{Value: value, Err: err}, onDone)
	}()
	return op
}

func completedOperation[T any](result Result[T], onDone func(Result[T])) *Operation[T] {
	op := &Operation[T]{done: make(chan struct{}), cancel: func() {}}
	op.finish(result, onDone)
	return op
}

func (o *Operation[T]) finish(result Result[T], onDone func(Result[T])) {
	o.result = result
	if onDone != nil {
		onDone(result)
	}
	close(o.done)
}

// Done is closed once the operation has finished and its callback returned.
func (o *Operation[T]) Done() <-chan struct{} {
	return o.done
}

// Cancel aborts in-flight requests. The callback still runs, with a cancellation error.
func (o *Operation[T]) Cancel() {
	o.cancel()
}

// Wait blocks until the operation finishes and returns its result.
func (o *Operation[T]) Wait() Result[T] {
	<-o.done
	return o.result
}

// RefreshOneAsync starts RefreshOne in the background. onDone may be nil.
func (m *DataManager) RefreshOneAsync(ctx context.Context, id string, onDone func(Result[domain.DiningHall])) *Operation[domain.DiningHall] {
	return startOperation(ctx, func(ctx context.Context) (domain.DiningHall, error) {
		return m.RefreshOne(ctx, id)
	}, onDone)
}

// RefreshAllAsync starts RefreshAll in the background; onDone receives the single aggregate result.
func (m *DataManager) RefreshAllAsync(ctx context.Context, onDone func(BatchResult)) *Operation[BatchResult] {
	var callback func(Result[BatchResult])
	if onDone != nil {
		callback = func(r Result[BatchResult]) { onDone(r.Value) }
	}
	return startOperation(ctx, func(ctx context.Context) (BatchResult, error) {
		return m.RefreshAll(ctx), nil
	}, callback)
}

// FetchMenuAsync starts FetchMenu in the background. Identifiers outside the menu catalog complete
// synchronously, before FetchMenuAsync returns, and never reach the network.
func (m *DataManager) FetchMenuAsync(ctx context.Context, id string, onResult func(Result[*domain.Menu])) *Operation[*domain.Menu] {
	if err := m.checkMenuID(id); err != nil {
		return completedOperation(Result[*domain.Menu]{Err: err}, onResult)
	}
	return startOperation(ctx, func(ctx context.Context) (*domain.Menu, error) {
		return m.FetchMenu(ctx, id)
	}, onResult)
}
