// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package realtime watches the live inventory change feed, evaluates stock
// alert conditions and fans both out to in-process subscribers.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/olegiv/posaudit-go/internal/model"
)

// ChangeCallback receives inventory change events.
type ChangeCallback func(event InventoryChangeEvent)

// AlertCallback receives stock alerts.
type AlertCallback func(alert model.InventoryAlert)

// Registry holds the subscriber callbacks of one realtime service instance.
// Subscribing under an existing ID replaces the previous callback. Delivery is
// synchronous in registration-iteration order; a panicking callback is
// recovered and logged so the remaining subscribers still receive the event.
type Registry struct {
	mu         sync.RWMutex
	changeSubs map[string]ChangeCallback
	alertSubs  map[string]AlertCallback
	logger     *slog.Logger
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		changeSubs: make(map[string]ChangeCallback),
		alertSubs:  make(map[string]AlertCallback),
		logger:     logger,
	}
}

// SubscribeChanges registers a callback for inventory change events.
func (r *Registry) SubscribeChanges(subscriberID string, cb ChangeCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changeSubs[subscriberID] = cb
}

// UnsubscribeChanges removes a change subscriber. Unknown IDs are a no-op.
func (r *Registry) UnsubscribeChanges(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.changeSubs, subscriberID)
}

// SubscribeAlerts registers a callback for stock alerts.
func (r *Registry) SubscribeAlerts(subscriberID string, cb AlertCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alertSubs[subscriberID] = cb
}

// UnsubscribeAlerts removes an alert subscriber. Unknown IDs are a no-op.
func (r *Registry) UnsubscribeAlerts(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.alertSubs, subscriberID)
}

// PublishChange delivers an event to every change subscriber.
func (r *Registry) PublishChange(event InventoryChangeEvent) {
	r.mu.RLock()
	callbacks := make(map[string]ChangeCallback, len(r.changeSubs))
	for id, cb := range r.changeSubs {
		callbacks[id] = cb
	}
	r.mu.RUnlock()

	for id, cb := range callbacks {
		r.deliver(id, func() { cb(event) })
	}
}

// PublishAlert delivers an alert to every alert subscriber.
func (r *Registry) PublishAlert(alert model.InventoryAlert) {
	r.mu.RLock()
	callbacks := make(map[string]AlertCallback, len(r.alertSubs))
	for id, cb := range r.alertSubs {
		callbacks[id] = cb
	}
	r.mu.RUnlock()

	for id, cb := range callbacks {
		r.deliver(id, func() { cb(alert) })
	}
}

// Clear drops every subscriber. Used on teardown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changeSubs = make(map[string]ChangeCallback)
	r.alertSubs = make(map[string]AlertCallback)
}

// SubscriberCount reports the number of change and alert subscribers.
func (r *Registry) SubscriberCount() (changes, alerts int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.changeSubs), len(r.alertSubs)
}

// deliver invokes one callback, isolating panics.
func (r *Registry) deliver(subscriberID string, call func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("subscriber panicked", "subscriber", subscriberID, "panic", rec)
		}
	}()
	call()
}
