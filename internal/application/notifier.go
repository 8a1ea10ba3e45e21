package application

import (
	"context"
	"log/slog"
	"sync"
)

// authListeners is an in-process broadcast list. Scoped managers share one.
type authListeners struct {
	mu      sync.RWMutex
	nextID  uint64
	entries []listenerEntry
}

type listenerEntry struct {
	id uint64
	fn AuthListener
}

func (l *authListeners) add(fn AuthListener) func() {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listenerEntry{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for i, e := range l.entries {
				if e.id == id {
					l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
					return
				}
			}
		})
	}
}

func (l *authListeners) count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// publish delivers event to each listener in registration order. A panicking
// listener is logged and skipped.
func (l *authListeners) publish(ctx context.Context, logger *slog.Logger, event AuthEvent) {
	l.mu.RLock()
	snapshot := make([]listenerEntry, len(l.entries))
	copy(snapshot, l.entries)
	l.mu.RUnlock()

	for _, e := range snapshot {
		deliver(ctx, logger, e.fn, event)
	}
}

func deliver(ctx context.Context, logger *slog.Logger, fn AuthListener, event AuthEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "auth listener panicked", "event", string(event.Type), "panic", r)
		}
	}()
	fn(ctx, event)
}
