// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logwriter implements the buffered log delivery pipelines: a bounded
// in-memory queue with periodic batch flushes to the durable store, immediate
// synchronous escalation for top-severity events, severity classification and
// the activity-to-audit forwarder.
package logwriter

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Persister writes a single record to the durable store.
type Persister[T any] func(ctx context.Context, entry T) error

// Config holds the tunables of one writer instance.
type Config struct {
	// FlushInterval is how often the background flush fires.
	FlushInterval time.Duration
	// BatchSize is the maximum number of records drained per flush.
	BatchSize int
	// QueueCapacity bounds the in-memory queue. When full, new submissions are
	// dropped (drop-newest) with a logged error.
	QueueCapacity int
}

// DefaultAuditConfig returns the audit pipeline cadence: a slower flush with
// smaller batches, matching the compliance log's lower volume.
func DefaultAuditConfig() Config {
	return Config{
		FlushInterval: 5 * time.Second,
		BatchSize:     10,
		QueueCapacity: 10000,
	}
}

// DefaultActivityConfig returns the activity pipeline cadence.
func DefaultActivityConfig() Config {
	return Config{
		FlushInterval: 3 * time.Second,
		BatchSize:     20,
		QueueCapacity: 10000,
	}
}

// Writer buffers submitted records and flushes them to the store in FIFO
// batches on a fixed interval. Records satisfying the critical predicate are
// additionally persisted synchronously before Submit returns; the queued copy
// is intentionally kept, so a critical record is persisted twice. Exactly one
// Writer per pipeline should exist per process; construct it at startup and
// Close it on shutdown to drain the queue.
type Writer[T any] struct {
	name     string
	persist  Persister[T]
	critical func(T) bool
	cfg      Config
	logger   *slog.Logger

	mu    sync.Mutex
	queue []T

	flushing atomic.Bool
	closed   atomic.Bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a writer. The critical predicate may be nil, disabling the
// immediate-write escalation path.
func New[T any](name string, persist Persister[T], critical func(T) bool, cfg Config, logger *slog.Logger) *Writer[T] {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 3 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 20
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 10000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer[T]{
		name:     name,
		persist:  persist,
		critical: critical,
		cfg:      cfg,
		logger:   logger.With("writer", name),
		done:     make(chan struct{}),
	}
}

// Start launches the background flush loop.
func (w *Writer[T]) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Submit enqueues a record for eventual persistence. It is fire-and-forget:
// the caller receives no persistence confirmation and no error. When the
// record is critical it is also persisted synchronously before Submit returns,
// independent of the queued copy's eventual flush.
func (w *Writer[T]) Submit(entry T) {
	if w.closed.Load() {
		w.logger.Warn("event dropped: writer is closed")
		return
	}

	w.mu.Lock()
	if len(w.queue) >= w.cfg.QueueCapacity {
		w.mu.Unlock()
		// Drop-newest overflow policy: the store is likely down and the queue
		// has grown to capacity. The event is lost from the batched path.
		w.logger.Error("queue overflow, event dropped", "capacity", w.cfg.QueueCapacity)
	} else {
		w.queue = append(w.queue, entry)
		w.mu.Unlock()
	}

	if w.critical != nil && w.critical(entry) {
		w.persistImmediate(entry)
	}
}

// Flush drains up to one batch from the queue. At most one flush runs at a
// time; a call that arrives while another flush is in flight is a no-op and
// reports zero. Returns the number of records successfully persisted.
func (w *Writer[T]) Flush(ctx context.Context) int {
	if !w.flushing.CompareAndSwap(false, true) {
		return 0
	}
	defer w.flushing.Store(false)
	return w.drainBatch(ctx)
}

// QueueLen reports the number of records waiting in the queue.
func (w *Writer[T]) QueueLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Close stops the background loop and drains the remaining queue completely.
// Submissions arriving after Close are dropped with a logged warning.
func (w *Writer[T]) Close() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	close(w.done)
	w.wg.Wait()

	// Final drain: the loop has stopped, so no flush can be in flight.
	ctx := context.Background()
	for w.QueueLen() > 0 {
		if w.Flush(ctx) == 0 && w.QueueLen() > 0 {
			// Every record in the batch failed to persist; they were logged
			// and dropped, so the loop still terminates.
			continue
		}
	}
	w.logger.Info("writer closed, queue drained")
}

// loop runs the periodic flush until Close.
func (w *Writer[T]) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.Flush(context.Background())
		}
	}
}

// drainBatch dequeues up to BatchSize records in FIFO order and persists them
// as individual inserts. A failed insert is logged and skipped; the batch
// continues. The caller holds the flushing guard.
func (w *Writer[T]) drainBatch(ctx context.Context) int {
	w.mu.Lock()
	n := len(w.queue)
	if n == 0 {
		w.mu.Unlock()
		return 0
	}
	if n > w.cfg.BatchSize {
		n = w.cfg.BatchSize
	}
	batch := make([]T, n)
	copy(batch, w.queue[:n])
	w.queue = w.queue[n:]
	w.mu.Unlock()

	persisted := 0
	for _, entry := range batch {
		if err := w.persist(ctx, entry); err != nil {
			w.logger.Error("batch persist failed, event dropped", "error", err)
			continue
		}
		persisted++
	}
	return persisted
}

// persistImmediate writes a critical record synchronously, with one direct
// fallback retry. Failures are logged and swallowed to preserve the
// fire-and-forget contract of Submit; the queued copy still gets its chance
// in the next batch flush.
func (w *Writer[T]) persistImmediate(entry T) {
	ctx := context.Background()
	err := w.persist(ctx, entry)
	if err == nil {
		return
	}
	w.logger.Error("immediate persist failed, retrying once", "error", err)
	if err := w.persist(ctx, entry); err != nil {
		w.logger.Error("immediate persist retry failed", "error", err)
	}
}
