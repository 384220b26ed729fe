package postgres

import (
	"errors"

	"gorm.io/gorm"

	txDatamodel "github.com/eygar/payment-service/internal/core/datamodel/transaction"
	txpkg "github.com/eygar/payment-service/internal/transaction"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) txpkg.Repository {
	return &TransactionRepository{
		db: db,
	}
}

func (r *TransactionRepository) Create(row *txDatamodel.Transaction) error {
	return r.db.Create(row).Error
}

func (r *TransactionRepository) GetByID(id int64) (*txDatamodel.Transaction, error) {
	var row txDatamodel.Transaction
	err := r.db.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *TransactionRepository) GetByPaymentID(paymentID string) (*txDatamodel.Transaction, error) {
	var row txDatamodel.Transaction
	err := r.db.Where("payment_id = ?", paymentID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *TransactionRepository) GetByCheckoutSessionID(sessionID string) (*txDatamodel.Transaction, error) {
	var row txDatamodel.Transaction
	err := r.db.Where("checkout_session_id = ?", sessionID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetByUserID returns one page of a user's transactions plus the total count
// over the same predicate.
func (r *TransactionRepository) GetByUserID(userID string, offset, limit int, status string) ([]*txDatamodel.Transaction, int64, error) {
	query := r.db.Model(&txDatamodel.Transaction{}).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("payment_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*txDatamodel.Transaction
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *TransactionRepository) GetByBookingID(bookingID string) ([]*txDatamodel.Transaction, error) {
	var rows []*txDatamodel.Transaction
	err := r.db.Where("booking_id = ?", bookingID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *TransactionRepository) GetAll(offset, limit int, filters txpkg.ListFilters) ([]*txDatamodel.Transaction, int64, error) {
	query := r.db.Model(&txDatamodel.Transaction{})

	if filters.Status != "" {
		query = query.Where("payment_status = ?", filters.Status)
	}
	if filters.Provider != "" {
		query = query.Where("provider = ?", filters.Provider)
	}
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.BookingID != "" {
		query = query.Where("booking_id = ?", filters.BookingID)
	}
	if filters.PropertyID != "" {
		query = query.Where("property_id = ?", filters.PropertyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*txDatamodel.Transaction
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update applies the given column map and returns the refreshed row, or
// (nil, nil) when the id does not exist.
func (r *TransactionRepository) Update(id int64, updates map[string]interface{}) (*txDatamodel.Transaction, error) {
	result := r.db.Model(&txDatamodel.Transaction{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

func (r *TransactionRepository) UpdateStatus(id int64, status string) (*txDatamodel.Transaction, error) {
	result := r.db.Model(&txDatamodel.Transaction{}).Where("id = ?", id).Update("payment_status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

// SoftDelete marks the transaction canceled; the row is never removed.
func (r *TransactionRepository) SoftDelete(id int64) (bool, error) {
	result := r.db.Model(&txDatamodel.Transaction{}).Where("id = ?", id).Update("payment_status", txpkg.StatusCanceled)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TransactionRepository) ExistsByPaymentID(paymentID string) (bool, error) {
	var count int64
	err := r.db.Model(&txDatamodel.Transaction{}).Where("payment_id = ?", paymentID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
