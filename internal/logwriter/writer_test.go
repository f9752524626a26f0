// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logwriter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/olegiv/posaudit-go/internal/model"
	"github.com/olegiv/posaudit-go/internal/testutil"
)

// recordingStore is an in-memory Persister that records inserts in order.
type recordingStore struct {
	mu      sync.Mutex
	entries []model.AuditLog
	failOn  func(model.AuditLog) error
}

func (s *recordingStore) persist(_ context.Context, entry model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		if err := s.failOn(entry); err != nil {
			return err
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *recordingStore) all() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AuditLog, len(s.entries))
	copy(out, s.entries)
	return out
}

func criticalSeverity(entry model.AuditLog) bool {
	return entry.Severity == model.SeverityCritical
}

func newTestWriter(store *recordingStore, cfg Config) *Writer[model.AuditLog] {
	return New("audit", store.persist, criticalSeverity, cfg, testutil.TestLoggerSilent())
}

func auditEntry(description string) model.AuditLog {
	return model.AuditLog{
		CompanyID:   "co-1",
		UserID:      "user-1",
		Action:      model.AuditDataAccess,
		Severity:    model.SeverityLow,
		Description: description,
	}
}

func TestFlushFIFOOrder(t *testing.T) {
	store := &recordingStore{}
	w := newTestWriter(store, Config{BatchSize: 10})

	for i := 1; i <= 5; i++ {
		w.Submit(auditEntry(fmt.Sprintf("e%d", i)))
	}

	if got := w.Flush(context.Background()); got != 5 {
		t.Fatalf("Flush persisted %d, want 5", got)
	}

	entries := store.all()
	for i, entry := range entries {
		want := fmt.Sprintf("e%d", i+1)
		if entry.Description != want {
			t.Errorf("entry %d = %q, want %q", i, entry.Description, want)
		}
	}
}

func TestFlushRespectsBatchSize(t *testing.T) {
	store := &recordingStore{}
	w := newTestWriter(store, Config{BatchSize: 10})

	for i := 0; i < 25; i++ {
		w.Submit(auditEntry(fmt.Sprintf("e%d", i)))
	}

	if got := w.Flush(context.Background()); got != 10 {
		t.Errorf("first flush persisted %d, want 10", got)
	}
	if got := w.QueueLen(); got != 15 {
		t.Errorf("queue after first flush = %d, want 15", got)
	}
	if got := w.Flush(context.Background()); got != 10 {
		t.Errorf("second flush persisted %d, want 10", got)
	}
	if got := w.Flush(context.Background()); got != 5 {
		t.Errorf("third flush persisted %d, want 5", got)
	}
}

func TestCriticalDoubleWrite(t *testing.T) {
	store := &recordingStore{}
	w := newTestWriter(store, Config{BatchSize: 10})

	entry := auditEntry("backup restored")
	entry.Severity = model.SeverityCritical
	w.Submit(entry)

	// The synchronous escalation path must have persisted one copy before
	// Submit returned.
	if got := store.count(); got < 1 {
		t.Fatalf("store has %d entries immediately after Submit, want >= 1", got)
	}

	// The queued copy is intentionally not removed: after one flush the
	// record exists twice.
	w.Flush(context.Background())
	if got := store.count(); got != 2 {
		t.Errorf("store has %d entries after flush, want 2 (duplicate by design)", got)
	}
}

func TestNonCriticalNotEscalated(t *testing.T) {
	store := &recordingStore{}
	w := newTestWriter(store, Config{BatchSize: 10})

	w.Submit(auditEntry("routine read"))
	if got := store.count(); got != 0 {
		t.Errorf("store has %d entries before flush, want 0", got)
	}
}

func TestBatchItemFailureContinues(t *testing.T) {
	store := &recordingStore{
		failOn: func(entry model.AuditLog) error {
			if entry.Description == "poison" {
				return errors.New("store rejected entry")
			}
			return nil
		},
	}
	w := newTestWriter(store, Config{BatchSize: 10})

	w.Submit(auditEntry("e1"))
	w.Submit(auditEntry("poison"))
	w.Submit(auditEntry("e3"))

	if got := w.Flush(context.Background()); got != 2 {
		t.Errorf("Flush persisted %d, want 2", got)
	}
	// The failed item is dropped, not retried.
	if got := w.QueueLen(); got != 0 {
		t.Errorf("queue after flush = %d, want 0", got)
	}
	if got := w.Flush(context.Background()); got != 0 {
		t.Errorf("second flush persisted %d, want 0", got)
	}
}

func TestImmediateFallbackRetry(t *testing.T) {
	var calls int
	store := &recordingStore{}
	store.failOn = func(model.AuditLog) error {
		calls++
		if calls == 1 {
			return errors.New("transient store failure")
		}
		return nil
	}
	w := newTestWriter(store, Config{BatchSize: 10})

	entry := auditEntry("critical op")
	entry.Severity = model.SeverityCritical
	w.Submit(entry)

	if got := store.count(); got != 1 {
		t.Errorf("store has %d entries after retry, want 1", got)
	}
	// The queued copy is untouched by the fast path.
	if got := w.QueueLen(); got != 1 {
		t.Errorf("queue = %d, want 1", got)
	}
}

func TestQueueOverflowDropsNewest(t *testing.T) {
	store := &recordingStore{}
	w := newTestWriter(store, Config{BatchSize: 10, QueueCapacity: 3})

	for i := 1; i <= 5; i++ {
		w.Submit(auditEntry(fmt.Sprintf("e%d", i)))
	}

	if got := w.QueueLen(); got != 3 {
		t.Fatalf("queue = %d, want 3 (capacity)", got)
	}

	w.Flush(context.Background())
	entries := store.all()
	if len(entries) != 3 {
		t.Fatalf("store has %d entries, want 3", len(entries))
	}
	// The oldest submissions survive; e4 and e5 were dropped.
	for i, want := range []string{"e1", "e2", "e3"} {
		if entries[i].Description != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Description, want)
		}
	}
}

func TestFlushReentrancyGuard(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &recordingStore{}
	blocking := func(ctx context.Context, entry model.AuditLog) error {
		close(entered)
		<-release
		return store.persist(ctx, entry)
	}

	w := New("audit", blocking, nil, Config{BatchSize: 10}, testutil.TestLoggerSilent())
	w.Submit(auditEntry("e1"))

	done := make(chan int)
	go func() { done <- w.Flush(context.Background()) }()

	<-entered
	// A flush that fires while another is in flight is a no-op.
	if got := w.Flush(context.Background()); got != 0 {
		t.Errorf("concurrent Flush persisted %d, want 0", got)
	}

	close(release)
	if got := <-done; got != 1 {
		t.Errorf("first Flush persisted %d, want 1", got)
	}
}

func TestSubmitDuringFlushGrowsNextBatch(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	store := &recordingStore{}
	var once sync.Once
	blocking := func(ctx context.Context, entry model.AuditLog) error {
		once.Do(func() { close(entered) })
		<-release
		return store.persist(ctx, entry)
	}

	w := New("audit", blocking, nil, Config{BatchSize: 10}, testutil.TestLoggerSilent())
	w.Submit(auditEntry("e1"))

	done := make(chan int)
	go func() { done <- w.Flush(context.Background()) }()

	<-entered
	// Submissions during an in-flight flush are accepted and flushed next time.
	w.Submit(auditEntry("e2"))
	close(release)
	<-done

	if got := w.Flush(context.Background()); got != 1 {
		t.Errorf("next flush persisted %d, want 1", got)
	}
	if got := store.count(); got != 2 {
		t.Errorf("store has %d entries, want 2", got)
	}
}

func TestBackgroundFlush(t *testing.T) {
	store := &recordingStore{}
	w := newTestWriter(store, Config{FlushInterval: 10 * time.Millisecond, BatchSize: 10})
	w.Start()
	defer w.Close()

	for i := 0; i < 3; i++ {
		w.Submit(auditEntry(fmt.Sprintf("e%d", i)))
	}

	deadline := time.Now().Add(2 * time.Second)
	for store.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("background flush did not persist entries, store has %d", store.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	store := &recordingStore{}
	w := newTestWriter(store, Config{FlushInterval: time.Hour, BatchSize: 2})
	w.Start()

	for i := 1; i <= 7; i++ {
		w.Submit(auditEntry(fmt.Sprintf("e%d", i)))
	}

	w.Close()
	if got := store.count(); got != 7 {
		t.Errorf("store has %d entries after Close, want 7", got)
	}

	// Submissions after Close are dropped.
	w.Submit(auditEntry("late"))
	if got := store.count(); got != 7 {
		t.Errorf("store has %d entries after late Submit, want 7", got)
	}
}
