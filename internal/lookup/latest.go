package lookup

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/contactkeeper/internal/common"
)

// Latest runs lookups where only the most recent call matters, such as
// resolving a CEP while it is being typed. When a newer call starts, older
// ones finish with common.ErrSuperseded and their results are dropped; the
// requests already in flight are not cancelled.
//
// With a debounce delay each call waits before running fn, and a call that is
// superseded during the wait never runs fn at all.
type Latest[T any] struct {
	mu       sync.Mutex
	gen      uint64
	debounce time.Duration
}

func NewLatest[T any](debounce time.Duration) *Latest[T] {
	return &Latest[T]{debounce: debounce}
}

func (l *Latest[T]) Do(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	l.mu.Lock()
	l.gen++
	my := l.gen
	l.mu.Unlock()

	if l.debounce > 0 {
		t := time.NewTimer(l.debounce)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
		if !l.isCurrent(my) {
			return zero, common.ErrSuperseded
		}
	}

	v, err := fn(ctx)
	if !l.isCurrent(my) {
		return zero, common.ErrSuperseded
	}
	return v, err
}

func (l *Latest[T]) isCurrent(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen == gen
}
