package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	apperrors "github.com/eygar/payment-service/internal"
	txDatamodel "github.com/eygar/payment-service/internal/core/datamodel/transaction"
	"github.com/eygar/payment-service/internal/core/events"
)

// Repository defines the data access methods for transactions. Lookup
// methods return (nil, nil) when no row matches.
type Repository interface {
	Create(row *txDatamodel.Transaction) error
	GetByID(id int64) (*txDatamodel.Transaction, error)
	GetByPaymentID(paymentID string) (*txDatamodel.Transaction, error)
	GetByCheckoutSessionID(sessionID string) (*txDatamodel.Transaction, error)
	GetByUserID(userID string, offset, limit int, status string) ([]*txDatamodel.Transaction, int64, error)
	GetByBookingID(bookingID string) ([]*txDatamodel.Transaction, error)
	GetAll(offset, limit int, filters ListFilters) ([]*txDatamodel.Transaction, int64, error)
	Update(id int64, updates map[string]interface{}) (*txDatamodel.Transaction, error)
	UpdateStatus(id int64, status string) (*txDatamodel.Transaction, error)
	SoftDelete(id int64) (bool, error)
	ExistsByPaymentID(paymentID string) (bool, error)
}

// Service enforces ownership and uniqueness rules on top of the repository.
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Create records a new transaction owned by the caller. The existence
// pre-check is a fast path; the unique constraint on payment_id is the
// authoritative guard, so a duplicate-key insert maps to the same outcome.
func (s *Service) Create(ctx context.Context, dto *CreateTransactionDTO, callerID string) (*Transaction, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("transaction validation failed", "error", err, "user_id", callerID)
		return nil, err
	}

	exists, err := s.repo.ExistsByPaymentID(dto.PaymentID)
	if err != nil {
		s.logger.Error("failed to check payment_id uniqueness", "error", err, "payment_id", dto.PaymentID)
		return nil, apperrors.NewInternalError("failed to create transaction", err)
	}
	if exists {
		return nil, s.duplicateError(dto.PaymentID)
	}

	row := &txDatamodel.Transaction{
		CheckoutSessionID: dto.CheckoutSessionID,
		PaymentID:         dto.PaymentID,
		PaymentMethodID:   dto.PaymentMethodID,
		PaymentMethodType: dto.PaymentMethodType,
		PaymentStatus:     dto.PaymentStatus,
		Currency:          dto.Currency,
		AmountTotal:       dto.AmountTotal,
		CustomerID:        dto.CustomerID,
		CustomerEmail:     dto.CustomerEmail,
		BookingID:         dto.BookingID,
		PropertyID:        dto.PropertyID,
		UserID:            callerID,
		Provider:          dto.Provider,
		Description:       dto.Description,
	}

	if err := s.repo.Create(row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(dto.PaymentID)
		}
		s.logger.Error("failed to create transaction", "error", err, "payment_id", dto.PaymentID)
		return nil, apperrors.NewInternalError("failed to create transaction", err)
	}

	s.logger.Info("transaction created",
		"transaction_id", row.ID,
		"payment_id", row.PaymentID,
		"user_id", callerID,
		"amount_total", row.AmountTotal,
		"provider", row.Provider)

	s.bus.Publish(ctx, events.NewTransactionCreatedEvent(
		row.ID, row.PaymentID, row.UserID, row.AmountTotal, row.Currency, row.Provider))

	return FromDataModel(row), nil
}

// GetByID fetches a transaction by internal id. Existence is checked before
// ownership so a forbidden response never masquerades as a missing row.
func (s *Service) GetByID(id int64, callerID string) (*Transaction, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get transaction", "error", err, "transaction_id", id)
		return nil, apperrors.NewInternalError("failed to get transaction", err)
	}
	if row == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	if row.UserID != callerID {
		s.logger.Warn("transaction access denied", "transaction_id", id, "user_id", callerID, "owner_id", row.UserID)
		return nil, apperrors.NewForbiddenError("Not authorized to access this transaction", apperrors.ErrCodeNotOwner)
	}
	return FromDataModel(row), nil
}

// GetByPaymentID fetches a transaction by its gateway payment id.
func (s *Service) GetByPaymentID(paymentID string, callerID string) (*Transaction, error) {
	row, err := s.repo.GetByPaymentID(paymentID)
	if err != nil {
		s.logger.Error("failed to get transaction", "error", err, "payment_id", paymentID)
		return nil, apperrors.NewInternalError("failed to get transaction", err)
	}
	if row == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	if row.UserID != callerID {
		s.logger.Warn("transaction access denied", "payment_id", paymentID, "user_id", callerID, "owner_id", row.UserID)
		return nil, apperrors.NewForbiddenError("Not authorized to access this transaction", apperrors.ErrCodeNotOwner)
	}
	return FromDataModel(row), nil
}

// ListForUser returns a page of the caller's own transactions.
func (s *Service) ListForUser(callerID string, page, pageSize int, status string) (*ListResponse, error) {
	offset := (page - 1) * pageSize

	rows, total, err := s.repo.GetByUserID(callerID, offset, pageSize, status)
	if err != nil {
		s.logger.Error("failed to list user transactions", "error", err, "user_id", callerID)
		return nil, apperrors.NewInternalError("failed to list transactions", err)
	}

	return &ListResponse{
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		Transactions: FromDataModelSlice(rows),
	}, nil
}

// ListForBooking returns the caller-owned subset of a booking's
// transactions. Rows belonging to other users sharing the booking are
// silently filtered out.
func (s *Service) ListForBooking(bookingID string, callerID string) ([]*Transaction, error) {
	rows, err := s.repo.GetByBookingID(bookingID)
	if err != nil {
		s.logger.Error("failed to list booking transactions", "error", err, "booking_id", bookingID)
		return nil, apperrors.NewInternalError("failed to list transactions", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrBookingNotFound
	}

	owned := make([]*txDatamodel.Transaction, 0, len(rows))
	for _, row := range rows {
		if row.UserID == callerID {
			owned = append(owned, row)
		}
	}
	if len(owned) == 0 {
		s.logger.Warn("booking access denied", "booking_id", bookingID, "user_id", callerID)
		return nil, apperrors.NewForbiddenError("Not authorized to access these transactions", apperrors.ErrCodeNotOwner)
	}

	return FromDataModelSlice(owned), nil
}

// Update applies a partial update after the existence and ownership gates.
func (s *Service) Update(id int64, dto *UpdateTransactionDTO, callerID string) (*Transaction, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("update validation failed", "error", err, "transaction_id", id)
		return nil, err
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get transaction", err)
	}
	if row == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	if row.UserID != callerID {
		return nil, apperrors.NewForbiddenError("Not authorized to update this transaction", apperrors.ErrCodeNotOwner)
	}

	updates := dto.ColumnUpdates()
	if len(updates) == 0 {
		return FromDataModel(row), nil
	}

	updated, err := s.repo.Update(id, updates)
	if err != nil {
		s.logger.Error("failed to update transaction", "error", err, "transaction_id", id)
		return nil, apperrors.NewInternalError("failed to update transaction", err)
	}
	if updated == nil {
		return nil, apperrors.ErrTransactionNotFound
	}

	s.logger.Info("transaction updated", "transaction_id", id, "user_id", callerID, "fields", len(updates))
	return FromDataModel(updated), nil
}

// UpdateStatus applies a status-only mutation after the ownership gate.
func (s *Service) UpdateStatus(ctx context.Context, id int64, dto *StatusUpdateDTO, callerID string) (*Transaction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get transaction", err)
	}
	if row == nil {
		return nil, apperrors.ErrTransactionNotFound
	}
	if row.UserID != callerID {
		return nil, apperrors.NewForbiddenError("Not authorized to update this transaction", apperrors.ErrCodeNotOwner)
	}

	oldStatus := row.PaymentStatus
	updated, err := s.repo.UpdateStatus(id, dto.TransactionStatus)
	if err != nil {
		s.logger.Error("failed to update transaction status", "error", err, "transaction_id", id)
		return nil, apperrors.NewInternalError("failed to update transaction status", err)
	}
	if updated == nil {
		return nil, apperrors.ErrTransactionNotFound
	}

	s.logger.Info("transaction status updated",
		"transaction_id", id,
		"old_status", oldStatus,
		"new_status", dto.TransactionStatus,
		"user_id", callerID)

	s.bus.Publish(ctx, events.NewTransactionStatusChangedEvent(
		id, updated.PaymentID, updated.UserID, oldStatus, dto.TransactionStatus))

	return FromDataModel(updated), nil
}

// Cancel soft-deletes a transaction by marking it canceled. Canceling an
// already-canceled transaction succeeds again with the same message.
func (s *Service) Cancel(ctx context.Context, id int64, callerID string) (string, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return "", apperrors.NewInternalError("failed to get transaction", err)
	}
	if row == nil {
		return "", apperrors.ErrTransactionNotFound
	}
	if row.UserID != callerID {
		return "", apperrors.NewForbiddenError("Not authorized to delete this transaction", apperrors.ErrCodeNotOwner)
	}

	found, err := s.repo.SoftDelete(id)
	if err != nil || !found {
		s.logger.Error("failed to cancel transaction", "error", err, "transaction_id", id)
		return "", apperrors.NewInternalError("Failed to delete transaction", err)
	}

	s.logger.Info("transaction canceled", "transaction_id", id, "user_id", callerID)

	s.bus.Publish(ctx, events.NewTransactionCanceledEvent(id, row.PaymentID, row.UserID))

	return "Transaction successfully canceled", nil
}

// ListAll is the administrative listing; any authenticated caller is
// implicitly trusted here, matching the upstream behavior.
func (s *Service) ListAll(page, pageSize int, filters ListFilters) (*ListResponse, error) {
	offset := (page - 1) * pageSize

	rows, total, err := s.repo.GetAll(offset, pageSize, filters)
	if err != nil {
		s.logger.Error("failed to list all transactions", "error", err)
		return nil, apperrors.NewInternalError("failed to list transactions", err)
	}

	return &ListResponse{
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		Transactions: FromDataModelSlice(rows),
	}, nil
}

func (s *Service) duplicateError(paymentID string) error {
	return apperrors.NewConflictError(
		fmt.Sprintf("Payment with payment_id '%s' already exists", paymentID),
		apperrors.ErrCodeDuplicatePaymentID)
}
