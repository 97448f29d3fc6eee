package watcher

import (
	"sync"
	"time"
)

// BatchDebouncer collects changes and emits them as one batch once a quiet
// period has passed. The batch lives behind the mutex, so producers and the
// timer goroutine never touch it concurrently.
type BatchDebouncer struct {
	delay   time.Duration
	timer   *time.Timer
	mu      sync.Mutex
	changes []Change
	emit    func([]Change)
}

// NewBatchDebouncer creates a batch debouncer that calls emit after delay of
// quiet.
func NewBatchDebouncer(delay time.Duration, emit func([]Change)) *BatchDebouncer {
	return &BatchDebouncer{
		delay: delay,
		emit:  emit,
	}
}

// Add appends changes to the pending batch and resets the quiet timer.
func (b *BatchDebouncer) Add(changes ...Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.changes = append(b.changes, changes...)

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

// flush hands the collected batch to emit. The batch is detached under the
// lock; emit runs outside it.
func (b *BatchDebouncer) flush() {
	b.mu.Lock()
	changes := b.changes
	b.changes = nil
	b.timer = nil
	b.mu.Unlock()

	if len(changes) > 0 && b.emit != nil {
		b.emit(changes)
	}
}

// Cancel drops any pending batch without emitting it.
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.changes = nil
}

// Flush immediately emits any pending batch.
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// PendingCount returns the number of changes waiting to be emitted.
func (b *BatchDebouncer) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.changes)
}
