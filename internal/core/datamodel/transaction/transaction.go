package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the row model for the transactions table. One row per
// payment event reported by an external gateway.
type Transaction struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	CheckoutSessionID *string         `json:"checkout_session_id,omitempty" gorm:"column:checkout_session_id;size:255;uniqueIndex"`
	PaymentID         string          `json:"payment_id" gorm:"column:payment_id;size:255;not null;uniqueIndex"`
	PaymentMethodID   *string         `json:"payment_method_id,omitempty" gorm:"column:payment_method_id;size:255"`
	PaymentMethodType *string         `json:"payment_method_type,omitempty" gorm:"column:payment_method_type;size:100"`
	PaymentStatus     string          `json:"payment_status" gorm:"column:payment_status;size:20;not null;default:pending;index"`
	Currency          string          `json:"currency" gorm:"column:currency;size:3;not null;default:USD"`
	AmountTotal       decimal.Decimal `json:"amount_total" gorm:"column:amount_total;type:numeric(10,2);not null"`
	CustomerID        *string         `json:"customer_id,omitempty" gorm:"column:customer_id;size:255;index"`
	CustomerEmail     *string         `json:"customer_email,omitempty" gorm:"column:customer_email;size:255;index"`
	BookingID         *string         `json:"booking_id,omitempty" gorm:"column:booking_id;size:255;index"`
	PropertyID        *string         `json:"property_id,omitempty" gorm:"column:property_id;size:255;index"`
	UserID            string          `json:"user_id" gorm:"column:user_id;size:255;not null;index"`
	Provider          string          `json:"provider" gorm:"column:provider;size:20;not null;default:stripe"`
	Description       *string         `json:"description,omitempty" gorm:"column:description;type:text"`
	CreatedAt         time.Time       `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
