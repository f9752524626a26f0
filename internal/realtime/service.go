// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olegiv/posaudit-go/internal/model"
	"github.com/olegiv/posaudit-go/internal/store"
)

// Connection states of the realtime service.
const (
	StateDisconnected = "disconnected"
	StateConnecting   = "connecting"
	StateConnected    = "connected"
)

// overstockFactor multiplies the reorder quantity to get the overstock
// threshold.
const overstockFactor = 3

// ErrAlreadyStarted is returned by Start when the service is not in the
// disconnected state.
var ErrAlreadyStarted = errors.New("realtime: service already started")

// InventoryRecord is a stock row as carried on the change feed.
type InventoryRecord struct {
	ProductID       string `json:"product_id"`
	LocationID      string `json:"location_id"`
	QuantityOnHand  int64  `json:"quantity_on_hand"`
	ReorderLevel    int64  `json:"reorder_level"`
	ReorderQuantity int64  `json:"reorder_quantity"`
}

// changeMessage is the wire format published on the inventory channel.
type changeMessage struct {
	Type string           `json:"type"`
	Old  *InventoryRecord `json:"old,omitempty"`
	New  *InventoryRecord `json:"new,omitempty"`
}

// InventoryChangeEvent is what change subscribers receive.
type InventoryChangeEvent struct {
	Type           string           `json:"type"`
	Old            *InventoryRecord `json:"old,omitempty"`
	New            *InventoryRecord `json:"new,omitempty"`
	ProductID      string           `json:"product_id"`
	LocationID     string           `json:"location_id"`
	QuantityChange int64            `json:"quantity_change"`
	Timestamp      time.Time        `json:"timestamp"`
}

// Service consumes the inventory change feed from a Redis pub/sub channel,
// fans events out through its registry, evaluates stock alert conditions and
// persists raised alerts. The connection moves disconnected -> connecting ->
// connected on Start and back to disconnected on Stop or feed loss; there is
// no automatic reconnect, the caller decides when to Start again.
type Service struct {
	registry *Registry
	rdb      *redis.Client
	queries  *store.Queries
	channel  string
	logger   *slog.Logger

	mu     sync.Mutex
	state  string
	pubsub *redis.PubSub
	wg     sync.WaitGroup
}

// NewService creates a realtime service reading from the given channel.
func NewService(registry *Registry, rdb *redis.Client, queries *store.Queries, channel string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		rdb:      rdb,
		queries:  queries,
		channel:  channel,
		logger:   logger,
		state:    StateDisconnected,
	}
}

// State reports the current connection state.
func (s *Service) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Registry returns the subscriber registry of this instance.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Start subscribes to the change feed and launches the listener. It fails if
// the service is already started or the subscription cannot be confirmed.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateConnecting
	s.mu.Unlock()

	pubsub := s.rdb.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		s.setState(StateDisconnected)
		return fmt.Errorf("subscribing to %s: %w", s.channel, err)
	}

	s.mu.Lock()
	s.pubsub = pubsub
	s.state = StateConnected
	s.mu.Unlock()

	s.wg.Add(1)
	go s.listen(pubsub.Channel())

	s.logger.Info("realtime inventory feed connected", "channel", s.channel)
	return nil
}

// Stop tears the service down: the subscription is closed, the listener
// drains and every subscriber is dropped. The service returns to the
// disconnected state and can be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	pubsub := s.pubsub
	s.pubsub = nil
	// Flip the state before closing the feed so the listener can tell a
	// deliberate stop from a lost connection.
	s.state = StateDisconnected
	s.mu.Unlock()

	if pubsub != nil {
		_ = pubsub.Close()
	}
	s.wg.Wait()

	s.registry.Clear()
	s.logger.Info("realtime inventory feed stopped")
}

// listen consumes the feed until the pub/sub channel closes. Feed loss is
// terminal for this connection.
func (s *Service) listen(ch <-chan *redis.Message) {
	defer s.wg.Done()
	for msg := range ch {
		s.HandleMessage([]byte(msg.Payload))
	}

	s.mu.Lock()
	lost := s.state == StateConnected
	s.state = StateDisconnected
	s.mu.Unlock()
	if lost {
		s.logger.Warn("realtime inventory feed lost, not reconnecting", "channel", s.channel)
	}
}

// HandleMessage processes one raw change feed message: decode, fan out the
// change event, evaluate alert conditions. Malformed messages are logged and
// dropped.
func (s *Service) HandleMessage(payload []byte) {
	var msg changeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.logger.Error("malformed inventory change message", "error", err)
		return
	}

	var current *InventoryRecord
	var quantityChange int64
	switch msg.Type {
	case "INSERT":
		if msg.New == nil {
			return
		}
		current = msg.New
		quantityChange = msg.New.QuantityOnHand
	case "UPDATE":
		if msg.New == nil {
			return
		}
		current = msg.New
		if msg.Old != nil {
			quantityChange = msg.New.QuantityOnHand - msg.Old.QuantityOnHand
		} else {
			quantityChange = msg.New.QuantityOnHand
		}
	case "DELETE":
		if msg.Old == nil {
			return
		}
		current = msg.Old
		quantityChange = -msg.Old.QuantityOnHand
	default:
		s.logger.Debug("ignoring unknown change type", "type", msg.Type)
		return
	}

	s.registry.PublishChange(InventoryChangeEvent{
		Type:           msg.Type,
		Old:            msg.Old,
		New:            msg.New,
		ProductID:      current.ProductID,
		LocationID:     current.LocationID,
		QuantityChange: quantityChange,
		Timestamp:      time.Now().UTC(),
	})

	if alert, ok := EvaluateStock(*current); ok {
		s.raiseAlert(alert)
	}
}

// EvaluateStock checks one stock row against the alert conditions. At most
// one alert is raised per change; overstock takes precedence when both
// conditions somehow hold.
func EvaluateStock(record InventoryRecord) (model.InventoryAlert, bool) {
	var alert model.InventoryAlert
	raised := false

	if record.QuantityOnHand <= record.ReorderLevel && record.ReorderLevel > 0 {
		alertType := model.AlertLowStock
		severity := model.AlertSeverityWarning
		if record.QuantityOnHand <= 0 {
			alertType = model.AlertOutOfStock
			severity = model.AlertSeverityCritical
		}
		alert = model.InventoryAlert{
			ProductID:         record.ProductID,
			LocationID:        record.LocationID,
			AlertType:         alertType,
			Severity:          severity,
			CurrentQuantity:   record.QuantityOnHand,
			ThresholdQuantity: record.ReorderLevel,
		}
		raised = true
	}

	if record.ReorderQuantity > 0 && record.QuantityOnHand > overstockFactor*record.ReorderQuantity {
		alert = model.InventoryAlert{
			ProductID:         record.ProductID,
			LocationID:        record.LocationID,
			AlertType:         model.AlertOverstock,
			Severity:          model.AlertSeverityInfo,
			CurrentQuantity:   record.QuantityOnHand,
			ThresholdQuantity: record.ReorderLevel,
		}
		raised = true
	}

	if raised {
		alert.Message = fmt.Sprintf("%s at %s: %s (%d)",
			alert.ProductID, alert.LocationID,
			strings.ReplaceAll(alert.AlertType, "_", " "),
			alert.CurrentQuantity)
	}
	return alert, raised
}

// raiseAlert fans an alert out and persists it for historical tracking. A
// store failure loses history but never blocks delivery.
func (s *Service) raiseAlert(alert model.InventoryAlert) {
	s.registry.PublishAlert(alert)

	if s.queries == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.queries.InsertInventoryAlert(ctx, alert); err != nil {
		s.logger.Error("storing inventory alert failed",
			"product_id", alert.ProductID, "error", err)
	}
}

func (s *Service) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
