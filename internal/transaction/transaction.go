package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	txDatamodel "github.com/eygar/payment-service/internal/core/datamodel/transaction"
)

// Payment status values a transaction can hold.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
	StatusRefunded   = "refunded"
)

// Payment providers the gateway can report.
const (
	ProviderStripe   = "stripe"
	ProviderPaypal   = "paypal"
	ProviderSquare   = "square"
	ProviderRazorpay = "razorpay"
	ProviderOther    = "other"
)

var (
	ValidStatuses  = []string{StatusPending, StatusProcessing, StatusPaid, StatusFailed, StatusCanceled, StatusRefunded}
	ValidProviders = []string{ProviderStripe, ProviderPaypal, ProviderSquare, ProviderRazorpay, ProviderOther}
)

func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func IsValidProvider(p string) bool {
	for _, v := range ValidProviders {
		if p == v {
			return true
		}
	}
	return false
}

// Transaction is the wire-level representation of a stored payment record.
type Transaction struct {
	ID                int64           `json:"id"`
	CheckoutSessionID *string         `json:"checkout_session_id,omitempty"`
	PaymentID         string          `json:"payment_id"`
	PaymentMethodID   *string         `json:"payment_method_id,omitempty"`
	PaymentMethodType *string         `json:"payment_method_type,omitempty"`
	PaymentStatus     string          `json:"payment_status"`
	Currency          string          `json:"currency"`
	AmountTotal       decimal.Decimal `json:"amount_total"`
	CustomerID        *string         `json:"customer_id,omitempty"`
	CustomerEmail     *string         `json:"customer_email,omitempty"`
	BookingID         *string         `json:"booking_id,omitempty"`
	PropertyID        *string         `json:"property_id,omitempty"`
	UserID            string          `json:"user_id"`
	Provider          string          `json:"provider"`
	Description       *string         `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (t *Transaction) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}

func FromDataModel(row *txDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:                row.ID,
		CheckoutSessionID: row.CheckoutSessionID,
		PaymentID:         row.PaymentID,
		PaymentMethodID:   row.PaymentMethodID,
		PaymentMethodType: row.PaymentMethodType,
		PaymentStatus:     row.PaymentStatus,
		Currency:          row.Currency,
		AmountTotal:       row.AmountTotal,
		CustomerID:        row.CustomerID,
		CustomerEmail:     row.CustomerEmail,
		BookingID:         row.BookingID,
		PropertyID:        row.PropertyID,
		UserID:            row.UserID,
		Provider:          row.Provider,
		Description:       row.Description,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*txDatamodel.Transaction) []*Transaction {
	result := make([]*Transaction, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
