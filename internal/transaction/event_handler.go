package transaction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eygar/payment-service/internal/core/events"
)

// EventHandler subscribes to transaction lifecycle events and records them
// in the audit log. Downstream consumers (notifications, reconciliation)
// hook in through the same bus.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleTransactionCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.TransactionCreatedEvent)
	if !ok {
		h.logger.Error("invalid event type for transaction created handler", "event_type", event.EventType())
		return fmt.Errorf("expected TransactionCreatedEvent, got %T", event)
	}

	h.logger.Info("transaction created",
		"transaction_id", created.TransactionID,
		"payment_id", created.PaymentID,
		"user_id", created.UserID,
		"amount_total", created.AmountTotal,
		"currency", created.Currency,
		"provider", created.Provider,
		"event_id", created.EventID())

	return nil
}

func (h *EventHandler) HandleTransactionStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(events.TransactionStatusChangedEvent)
	if !ok {
		h.logger.Error("invalid event type for status changed handler", "event_type", event.EventType())
		return fmt.Errorf("expected TransactionStatusChangedEvent, got %T", event)
	}

	h.logger.Info("transaction status changed",
		"transaction_id", changed.TransactionID,
		"payment_id", changed.PaymentID,
		"old_status", changed.OldStatus,
		"new_status", changed.NewStatus,
		"event_id", changed.EventID())

	return nil
}

func (h *EventHandler) HandleTransactionCanceled(ctx context.Context, event events.Event) error {
	canceled, ok := event.(events.TransactionCanceledEvent)
	if !ok {
		h.logger.Error("invalid event type for transaction canceled handler", "event_type", event.EventType())
		return fmt.Errorf("expected TransactionCanceledEvent, got %T", event)
	}

	h.logger.Info("transaction canceled",
		"transaction_id", canceled.TransactionID,
		"payment_id", canceled.PaymentID,
		"user_id", canceled.UserID,
		"event_id", canceled.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeTransactionCreated, h.HandleTransactionCreated)
	eventBus.Subscribe(events.EventTypeTransactionStatusChanged, h.HandleTransactionStatusChanged)
	eventBus.Subscribe(events.EventTypeTransactionCanceled, h.HandleTransactionCanceled)

	h.logger.Info("transaction event handlers registered",
		"handlers", []string{
			events.EventTypeTransactionCreated,
			events.EventTypeTransactionStatusChanged,
			events.EventTypeTransactionCanceled,
		})
}
