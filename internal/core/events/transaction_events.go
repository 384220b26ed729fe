package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeTransactionCreated       = "transaction.created"
	EventTypeTransactionStatusChanged = "transaction.status_changed"
	EventTypeTransactionCanceled      = "transaction.canceled"
)

type TransactionCreatedEvent struct {
	BaseEvent
	TransactionID int64           `json:"transaction_id"`
	PaymentID     string          `json:"payment_id"`
	UserID        string          `json:"user_id"`
	AmountTotal   decimal.Decimal `json:"amount_total"`
	Currency      string          `json:"currency"`
	Provider      string          `json:"provider"`
}

func NewTransactionCreatedEvent(transactionID int64, paymentID, userID string, amount decimal.Decimal, currency, provider string) TransactionCreatedEvent {
	return TransactionCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeTransactionCreated,
			Timestamp: time.Now(),
		},
		TransactionID: transactionID,
		PaymentID:     paymentID,
		UserID:        userID,
		AmountTotal:   amount,
		Currency:      currency,
		Provider:      provider,
	}
}

type TransactionStatusChangedEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	PaymentID     string `json:"payment_id"`
	UserID        string `json:"user_id"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}

func NewTransactionStatusChangedEvent(transactionID int64, paymentID, userID, oldStatus, newStatus string) TransactionStatusChangedEvent {
	return TransactionStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeTransactionStatusChanged,
			Timestamp: time.Now(),
		},
		TransactionID: transactionID,
		PaymentID:     paymentID,
		UserID:        userID,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
	}
}

type TransactionCanceledEvent struct {
	BaseEvent
	TransactionID int64  `json:"transaction_id"`
	PaymentID     string `json:"payment_id"`
	UserID        string `json:"user_id"`
}

func NewTransactionCanceledEvent(transactionID int64, paymentID, userID string) TransactionCanceledEvent {
	return TransactionCanceledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeTransactionCanceled,
			Timestamp: time.Now(),
		},
		TransactionID: transactionID,
		PaymentID:     paymentID,
		UserID:        userID,
	}
}
