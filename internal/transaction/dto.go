package transaction

import (
	"github.com/shopspring/decimal"

	errors "github.com/eygar/payment-service/internal"
	"github.com/eygar/payment-service/internal/core/common/validation"
)

// CreateTransactionDTO is the request payload for recording a transaction.
// payment_id and amount_total are required; status, currency and provider
// fall back to their documented defaults.
type CreateTransactionDTO struct {
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
	Provider          string          `json:"provider"`
	Description       *string         `json:"description,omitempty"`
}

// ApplyDefaults fills the optional enum fields before validation.
func (dto *CreateTransactionDTO) ApplyDefaults() {
	if dto.PaymentStatus == "" {
		dto.PaymentStatus = StatusPending
	}
	if dto.Currency == "" {
		dto.Currency = "USD"
	}
	if dto.Provider == "" {
		dto.Provider = ProviderStripe
	}
}

func (dto *CreateTransactionDTO) Validate() error {
	dto.ApplyDefaults()

	validator := validation.NewValidator()
	validator.Field("payment_id", dto.PaymentID).Required().MaxLen(255)
	validator.Field("amount_total", dto.AmountTotal).Required().PositiveDecimal(errors.ErrCodeInvalidAmount)
	validator.Field("currency", dto.Currency).ExactLen(3, errors.ErrCodeInvalidCurrency)
	validator.Field("payment_status", dto.PaymentStatus).OneOf(ValidStatuses, errors.ErrCodeInvalidStatus)
	validator.Field("provider", dto.Provider).OneOf(ValidProviders, errors.ErrCodeInvalidProvider)
	validator.Field("customer_email", dto.CustomerEmail).Email(errors.ErrCodeInvalidEmail)
	validator.Field("checkout_session_id", dto.CheckoutSessionID).MaxLen(255)
	validator.Field("payment_method_id", dto.PaymentMethodID).MaxLen(255)
	validator.Field("payment_method_type", dto.PaymentMethodType).MaxLen(100)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateTransactionDTO is the partial-update payload. Every field is
// independently present-or-absent; payment_id and user_id are immutable and
// deliberately not part of this shape.
type UpdateTransactionDTO struct {
	CheckoutSessionID Optional[string]          `json:"checkout_session_id"`
	PaymentMethodID   Optional[string]          `json:"payment_method_id"`
	PaymentMethodType Optional[string]          `json:"payment_method_type"`
	PaymentStatus     Optional[string]          `json:"payment_status"`
	Currency          Optional[string]          `json:"currency"`
	AmountTotal       Optional[decimal.Decimal] `json:"amount_total"`
	CustomerID        Optional[string]          `json:"customer_id"`
	CustomerEmail     Optional[string]          `json:"customer_email"`
	BookingID         Optional[string]          `json:"booking_id"`
	PropertyID        Optional[string]          `json:"property_id"`
	Provider          Optional[string]          `json:"provider"`
	Description       Optional[string]          `json:"description"`
}

func (dto *UpdateTransactionDTO) Validate() error {
	// NOT NULL columns reject explicit nulls.
	for field, opt := range map[string]Optional[string]{
		"payment_status": dto.PaymentStatus,
		"currency":       dto.Currency,
		"provider":       dto.Provider,
	} {
		if opt.Set && !opt.Valid {
			return errors.NewValidationError(field+" cannot be null", errors.ErrCodeValidationFailed)
		}
	}
	if dto.AmountTotal.Set && !dto.AmountTotal.Valid {
		return errors.NewValidationError("amount_total cannot be null", errors.ErrCodeValidationFailed)
	}

	validator := validation.NewValidator()
	if dto.PaymentStatus.Set {
		validator.Field("payment_status", dto.PaymentStatus.Value).OneOf(ValidStatuses, errors.ErrCodeInvalidStatus)
	}
	if dto.Provider.Set {
		validator.Field("provider", dto.Provider.Value).OneOf(ValidProviders, errors.ErrCodeInvalidProvider)
	}
	if dto.Currency.Set {
		validator.Field("currency", dto.Currency.Value).ExactLen(3, errors.ErrCodeInvalidCurrency)
	}
	if dto.AmountTotal.Set {
		validator.Field("amount_total", dto.AmountTotal.Value).PositiveDecimal(errors.ErrCodeInvalidAmount)
	}
	if dto.CustomerEmail.Set && dto.CustomerEmail.Valid {
		validator.Field("customer_email", dto.CustomerEmail.Value).Email(errors.ErrCodeInvalidEmail)
	}
	if dto.CheckoutSessionID.Set && dto.CheckoutSessionID.Valid {
		validator.Field("checkout_session_id", dto.CheckoutSessionID.Value).MaxLen(255)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ColumnUpdates translates the present fields into a column map for the
// repository. Explicit nulls become NULLs; omitted fields are not included.
func (dto *UpdateTransactionDTO) ColumnUpdates() map[string]interface{} {
	updates := make(map[string]interface{})

	setString := func(column string, opt Optional[string]) {
		if !opt.Set {
			return
		}
		if opt.Valid {
			updates[column] = opt.Value
		} else {
			updates[column] = nil
		}
	}

	setString("checkout_session_id", dto.CheckoutSessionID)
	setString("payment_method_id", dto.PaymentMethodID)
	setString("payment_method_type", dto.PaymentMethodType)
	setString("payment_status", dto.PaymentStatus)
	setString("currency", dto.Currency)
	setString("customer_id", dto.CustomerID)
	setString("customer_email", dto.CustomerEmail)
	setString("booking_id", dto.BookingID)
	setString("property_id", dto.PropertyID)
	setString("provider", dto.Provider)
	setString("description", dto.Description)

	if dto.AmountTotal.Set {
		updates["amount_total"] = dto.AmountTotal.Value
	}

	return updates
}

// StatusUpdateDTO is the status-only mutation payload.
type StatusUpdateDTO struct {
	TransactionStatus string `json:"transaction_status"`
}

func (dto *StatusUpdateDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("transaction_status", dto.TransactionStatus).Required().OneOf(ValidStatuses, errors.ErrCodeInvalidStatus)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ListResponse is the paginated listing envelope.
type ListResponse struct {
	Total        int64          `json:"total"`
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	Transactions []*Transaction `json:"transactions"`
}

// ListFilters is the conjunction of optional admin-listing constraints;
// empty strings mean "no constraint on that field".
type ListFilters struct {
	Status     string
	Provider   string
	UserID     string
	BookingID  string
	PropertyID string
}
