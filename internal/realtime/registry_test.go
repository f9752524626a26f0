// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package realtime

import (
	"testing"

	"github.com/olegiv/posaudit-go/internal/model"
	"github.com/olegiv/posaudit-go/internal/testutil"
)

func TestSubscribeAndPublishChange(t *testing.T) {
	reg := NewRegistry(testutil.TestLogger())

	var got []InventoryChangeEvent
	reg.SubscribeChanges("dashboard", func(event InventoryChangeEvent) {
		got = append(got, event)
	})

	reg.PublishChange(InventoryChangeEvent{ProductID: "product-7", QuantityChange: -2})

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].ProductID != "product-7" || got[0].QuantityChange != -2 {
		t.Errorf("event = %+v", got[0])
	}
}

func TestSubscribeLastWriteWins(t *testing.T) {
	reg := NewRegistry(testutil.TestLogger())

	firstCalls, secondCalls := 0, 0
	reg.SubscribeChanges("dashboard", func(InventoryChangeEvent) { firstCalls++ })
	reg.SubscribeChanges("dashboard", func(InventoryChangeEvent) { secondCalls++ })

	reg.PublishChange(InventoryChangeEvent{ProductID: "product-7"})

	if firstCalls != 0 {
		t.Errorf("replaced callback invoked %d times", firstCalls)
	}
	if secondCalls != 1 {
		t.Errorf("current callback invoked %d times, want 1", secondCalls)
	}
}

func TestUnsubscribe(t *testing.T) {
	reg := NewRegistry(testutil.TestLogger())

	calls := 0
	reg.SubscribeChanges("dashboard", func(InventoryChangeEvent) { calls++ })
	reg.UnsubscribeChanges("dashboard")
	reg.UnsubscribeChanges("never-registered")

	reg.PublishChange(InventoryChangeEvent{ProductID: "product-7"})

	if calls != 0 {
		t.Errorf("unsubscribed callback invoked %d times", calls)
	}
}

func TestPanickingSubscriberIsolated(t *testing.T) {
	reg := NewRegistry(testutil.TestLoggerSilent())

	delivered := 0
	reg.SubscribeAlerts("broken", func(model.InventoryAlert) {
		panic("subscriber bug")
	})
	reg.SubscribeAlerts("healthy-1", func(model.InventoryAlert) { delivered++ })
	reg.SubscribeAlerts("healthy-2", func(model.InventoryAlert) { delivered++ })

	reg.PublishAlert(model.InventoryAlert{ProductID: "product-7", AlertType: model.AlertLowStock})

	if delivered != 2 {
		t.Errorf("healthy subscribers received %d alerts, want 2", delivered)
	}
}

func TestClearDropsAllSubscribers(t *testing.T) {
	reg := NewRegistry(testutil.TestLogger())

	reg.SubscribeChanges("a", func(InventoryChangeEvent) {})
	reg.SubscribeChanges("b", func(InventoryChangeEvent) {})
	reg.SubscribeAlerts("c", func(model.InventoryAlert) {})

	reg.Clear()

	changes, alerts := reg.SubscriberCount()
	if changes != 0 || alerts != 0 {
		t.Errorf("after Clear: %d change, %d alert subscribers", changes, alerts)
	}

	// The registry stays usable after a teardown.
	calls := 0
	reg.SubscribeChanges("a", func(InventoryChangeEvent) { calls++ })
	reg.PublishChange(InventoryChangeEvent{})
	if calls != 1 {
		t.Errorf("resubscribed callback invoked %d times, want 1", calls)
	}
}
