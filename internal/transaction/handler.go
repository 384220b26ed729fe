package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	apperrors "github.com/eygar/payment-service/internal"
	"github.com/eygar/payment-service/internal/transport"
	"github.com/eygar/payment-service/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto *CreateTransactionDTO, callerID string) (*Transaction, error)
	GetByID(id int64, callerID string) (*Transaction, error)
	GetByPaymentID(paymentID string, callerID string) (*Transaction, error)
	ListForUser(callerID string, page, pageSize int, status string) (*ListResponse, error)
	ListForBooking(bookingID string, callerID string) ([]*Transaction, error)
	Update(id int64, dto *UpdateTransactionDTO, callerID string) (*Transaction, error)
	UpdateStatus(ctx context.Context, id int64, dto *StatusUpdateDTO, callerID string) (*Transaction, error)
	Cancel(ctx context.Context, id int64, callerID string) (string, error)
	ListAll(page, pageSize int, filters ListFilters) (*ListResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
	}
}

// CreateTransaction handles POST /payments
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	var dto CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateTransaction: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), &dto, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

// ListTransactions handles GET /payments
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	page, pageSize, appErr := parsePagination(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !IsValidStatus(status) {
		h.WriteError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	resp, err := h.Service.ListForUser(identity.ID, page, pageSize, status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// GetTransaction handles GET /payments/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	id, appErr := parseID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	record, err := h.Service.GetByID(id, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// GetTransactionByPaymentID handles GET /payments/payment-gateway/{paymentID}
func (h *Handler) GetTransactionByPaymentID(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	paymentID := chi.URLParam(r, "paymentID")

	record, err := h.Service.GetByPaymentID(paymentID, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// ListBookingTransactions handles GET /payments/booking/{bookingID}
func (h *Handler) ListBookingTransactions(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	bookingID := chi.URLParam(r, "bookingID")

	records, err := h.Service.ListForBooking(bookingID, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

// UpdateTransaction handles PUT /payments/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	id, appErr := parseID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	var dto UpdateTransactionDTO
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&dto); err != nil {
		h.Logger.Error("UpdateTransaction: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.Service.Update(id, &dto, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// UpdateTransactionStatus handles PATCH /payments/{id}/status
func (h *Handler) UpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	id, appErr := parseID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	var dto StatusUpdateDTO
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&dto); err != nil {
		h.Logger.Error("UpdateTransactionStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.Service.UpdateStatus(r.Context(), id, &dto, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// CancelTransaction handles DELETE /payments/{id}
func (h *Handler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	identity, ok := apperrors.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	id, appErr := parseID(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	message, err := h.Service.Cancel(r.Context(), id, identity.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

// ListAllTransactions handles GET /payments/admin/all. Any valid credential
// is accepted; there is no role gate on this listing.
func (h *Handler) ListAllTransactions(w http.ResponseWriter, r *http.Request) {
	if _, ok := apperrors.IdentityFromContext(r.Context()); !ok {
		h.HandleServiceError(w, apperrors.ErrMissingToken)
		return
	}

	page, pageSize, appErr := parsePagination(r)
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}

	q := r.URL.Query()
	filters := ListFilters{
		Status:     q.Get("status"),
		Provider:   q.Get("provider"),
		UserID:     q.Get("user_id"),
		BookingID:  q.Get("booking_id"),
		PropertyID: q.Get("property_id"),
	}
	if filters.Status != "" && !IsValidStatus(filters.Status) {
		h.WriteError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}
	if filters.Provider != "" && !IsValidProvider(filters.Provider) {
		h.WriteError(w, http.StatusBadRequest, "Invalid provider filter")
		return
	}

	resp, err := h.Service.ListAll(page, pageSize, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func parseID(r *http.Request) (int64, *apperrors.AppError) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid transaction ID", apperrors.ErrCodeValidationFailed)
	}
	return id, nil
}

func parsePagination(r *http.Request) (page, pageSize int, appErr *apperrors.AppError) {
	page = 1
	pageSize = 10

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return 0, 0, apperrors.NewValidationError("page must be >= 1", apperrors.ErrCodeValidationFailed)
		}
		page = p
	}

	if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
		s, err := strconv.Atoi(sizeStr)
		if err != nil || s < 1 || s > 100 {
			return 0, 0, apperrors.NewValidationError("page_size must be between 1 and 100", apperrors.ErrCodeValidationFailed)
		}
		pageSize = s
	}

	return page, pageSize, nil
}
