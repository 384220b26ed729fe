package transaction_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	apperrors "github.com/eygar/payment-service/internal"
	"github.com/eygar/payment-service/internal/transaction"
)

type mockTransactionService struct {
	createError       error
	getError          error
	listError         error
	updateError       error
	cancelError       error
	result            *transaction.Transaction
	listResult        *transaction.ListResponse
	bookingResult     []*transaction.Transaction
	cancelMessage     string
	lastListPage      int
	lastListPageSize  int
	lastListStatus    string
	lastUpdateDTO     *transaction.UpdateTransactionDTO
	lastStatusDTO     *transaction.StatusUpdateDTO
	lastListFilters   transaction.ListFilters
	lastCallerID      string
	lastLookupID      int64
	lastPaymentID     string
	lastBookingID     string
}

func (m *mockTransactionService) Create(ctx context.Context, dto *transaction.CreateTransactionDTO, callerID string) (*transaction.Transaction, error) {
	m.lastCallerID = callerID
	if m.createError != nil {
		return nil, m.createError
	}
	return m.result, nil
}

func (m *mockTransactionService) GetByID(id int64, callerID string) (*transaction.Transaction, error) {
	m.lastLookupID = id
	m.lastCallerID = callerID
	if m.getError != nil {
		return nil, m.getError
	}
	return m.result, nil
}

func (m *mockTransactionService) GetByPaymentID(paymentID string, callerID string) (*transaction.Transaction, error) {
	m.lastPaymentID = paymentID
	m.lastCallerID = callerID
	if m.getError != nil {
		return nil, m.getError
	}
	return m.result, nil
}

func (m *mockTransactionService) ListForUser(callerID string, page, pageSize int, status string) (*transaction.ListResponse, error) {
	m.lastCallerID = callerID
	m.lastListPage = page
	m.lastListPageSize = pageSize
	m.lastListStatus = status
	if m.listError != nil {
		return nil, m.listError
	}
	return m.listResult, nil
}

func (m *mockTransactionService) ListForBooking(bookingID string, callerID string) ([]*transaction.Transaction, error) {
	m.lastBookingID = bookingID
	m.lastCallerID = callerID
	if m.listError != nil {
		return nil, m.listError
	}
	return m.bookingResult, nil
}

func (m *mockTransactionService) Update(id int64, dto *transaction.UpdateTransactionDTO, callerID string) (*transaction.Transaction, error) {
	m.lastLookupID = id
	m.lastUpdateDTO = dto
	m.lastCallerID = callerID
	if m.updateError != nil {
		return nil, m.updateError
	}
	return m.result, nil
}

func (m *mockTransactionService) UpdateStatus(ctx context.Context, id int64, dto *transaction.StatusUpdateDTO, callerID string) (*transaction.Transaction, error) {
	m.lastLookupID = id
	m.lastStatusDTO = dto
	m.lastCallerID = callerID
	if m.updateError != nil {
		return nil, m.updateError
	}
	return m.result, nil
}

func (m *mockTransactionService) Cancel(ctx context.Context, id int64, callerID string) (string, error) {
	m.lastLookupID = id
	m.lastCallerID = callerID
	if m.cancelError != nil {
		return "", m.cancelError
	}
	return m.cancelMessage, nil
}

func (m *mockTransactionService) ListAll(page, pageSize int, filters transaction.ListFilters) (*transaction.ListResponse, error) {
	m.lastListPage = page
	m.lastListPageSize = pageSize
	m.lastListFilters = filters
	if m.listError != nil {
		return nil, m.listError
	}
	return m.listResult, nil
}

var _ = Describe("TransactionHandler", func() {
	var (
		handler     *transaction.Handler
		mockService *mockTransactionService
		router      *chi.Mux
		identity    *apperrors.Identity
	)

	sample := &transaction.Transaction{
		ID:            1,
		PaymentID:     "pay_123",
		PaymentStatus: transaction.StatusPending,
		Currency:      "USD",
		AmountTotal:   decimal.NewFromFloat(50),
		UserID:        "user-1",
		Provider:      transaction.ProviderStripe,
	}

	BeforeEach(func() {
		mockService = &mockTransactionService{
			result:        sample,
			listResult:    &transaction.ListResponse{Total: 1, Page: 1, PageSize: 10, Transactions: []*transaction.Transaction{sample}},
			bookingResult: []*transaction.Transaction{sample},
			cancelMessage: "Transaction successfully canceled",
		}
		handler = transaction.NewHandler(mockService)
		identity = &apperrors.Identity{ID: "user-1", IsActive: true}

		router = chi.NewRouter()
		router.Route("/payments", func(r chi.Router) {
			r.Post("/", handler.CreateTransaction)
			r.Get("/", handler.ListTransactions)
			r.Get("/admin/all", handler.ListAllTransactions)
			r.Get("/payment-gateway/{paymentID}", handler.GetTransactionByPaymentID)
			r.Get("/booking/{bookingID}", handler.ListBookingTransactions)
			r.Get("/{id}", handler.GetTransaction)
			r.Put("/{id}", handler.UpdateTransaction)
			r.Patch("/{id}/status", handler.UpdateTransactionStatus)
			r.Delete("/{id}", handler.CancelTransaction)
		})
	})

	do := func(method, target string, body []byte, withIdentity bool) *httptest.ResponseRecorder {
		var req *http.Request
		if body != nil {
			req = httptest.NewRequest(method, target, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, target, nil)
		}
		if withIdentity {
			req = req.WithContext(apperrors.ContextWithIdentity(req.Context(), identity))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	detailOf := func(rec *httptest.ResponseRecorder) string {
		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body["detail"]
	}

	Describe("CreateTransaction", func() {
		It("should return 201 with the created transaction", func() {
			payload := []byte(`{"payment_id": "pay_123", "amount_total": "50.00"}`)

			rec := do(http.MethodPost, "/payments/", payload, true)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(mockService.lastCallerID).To(Equal("user-1"))
		})

		It("should return 401 without an identity", func() {
			rec := do(http.MethodPost, "/payments/", []byte(`{}`), false)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(detailOf(rec)).To(Equal("Not authenticated"))
		})

		It("should return 400 for a malformed body", func() {
			rec := do(http.MethodPost, "/payments/", []byte(`{"payment_id":`), true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should surface a duplicate payment id as 400", func() {
			mockService.createError = apperrors.NewConflictError(
				"Payment with payment_id 'pay_123' already exists", apperrors.ErrCodeDuplicatePaymentID)

			rec := do(http.MethodPost, "/payments/", []byte(`{"payment_id": "pay_123", "amount_total": "5"}`), true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(detailOf(rec)).To(Equal("Payment with payment_id 'pay_123' already exists"))
		})
	})

	Describe("ListTransactions", func() {
		It("should default to page 1 size 10", func() {
			rec := do(http.MethodGet, "/payments/", nil, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastListPage).To(Equal(1))
			Expect(mockService.lastListPageSize).To(Equal(10))
		})

		It("should pass page, page_size and status through", func() {
			rec := do(http.MethodGet, "/payments/?page=3&page_size=25&status=paid", nil, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastListPage).To(Equal(3))
			Expect(mockService.lastListPageSize).To(Equal(25))
			Expect(mockService.lastListStatus).To(Equal("paid"))
		})

		It("should reject page 0", func() {
			rec := do(http.MethodGet, "/payments/?page=0", nil, true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject page_size above 100", func() {
			rec := do(http.MethodGet, "/payments/?page_size=101", nil, true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject an unknown status filter", func() {
			rec := do(http.MethodGet, "/payments/?status=limbo", nil, true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GetTransaction", func() {
		It("should return the transaction", func() {
			rec := do(http.MethodGet, "/payments/1", nil, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastLookupID).To(Equal(int64(1)))
		})

		It("should return 400 for a non-numeric id", func() {
			rec := do(http.MethodGet, "/payments/abc", nil, true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should map not-found from the service", func() {
			mockService.getError = apperrors.ErrTransactionNotFound

			rec := do(http.MethodGet, "/payments/42", nil, true)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(detailOf(rec)).To(Equal("Transaction not found"))
		})

		It("should map forbidden from the service", func() {
			mockService.getError = apperrors.NewForbiddenError(
				"Not authorized to access this transaction", apperrors.ErrCodeNotOwner)

			rec := do(http.MethodGet, "/payments/42", nil, true)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("GetTransactionByPaymentID", func() {
		It("should look up by the gateway payment id", func() {
			rec := do(http.MethodGet, "/payments/payment-gateway/pay_abc", nil, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastPaymentID).To(Equal("pay_abc"))
		})
	})

	Describe("ListBookingTransactions", func() {
		It("should return the booking's owned transactions", func() {
			rec := do(http.MethodGet, "/payments/booking/bk-1", nil, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastBookingID).To(Equal("bk-1"))
		})

		It("should map the empty-booking not-found", func() {
			mockService.listError = apperrors.ErrBookingNotFound

			rec := do(http.MethodGet, "/payments/booking/bk-x", nil, true)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(detailOf(rec)).To(Equal("No transactions found for this booking"))
		})
	})

	Describe("UpdateTransaction", func() {
		It("should decode a partial update", func() {
			payload := []byte(`{"payment_status": "paid"}`)

			rec := do(http.MethodPut, "/payments/1", payload, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastUpdateDTO.PaymentStatus.Set).To(BeTrue())
			Expect(mockService.lastUpdateDTO.PaymentStatus.Value).To(Equal("paid"))
			Expect(mockService.lastUpdateDTO.Currency.Set).To(BeFalse())
		})

		It("should keep explicit nulls distinct from omissions", func() {
			payload := []byte(`{"description": null}`)

			rec := do(http.MethodPut, "/payments/1", payload, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastUpdateDTO.Description.Set).To(BeTrue())
			Expect(mockService.lastUpdateDTO.Description.Valid).To(BeFalse())
		})

		It("should reject unknown fields", func() {
			payload := []byte(`{"payment_id": "pay_sneaky"}`)

			rec := do(http.MethodPut, "/payments/1", payload, true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("UpdateTransactionStatus", func() {
		It("should decode the status payload", func() {
			payload := []byte(`{"transaction_status": "refunded"}`)

			rec := do(http.MethodPatch, "/payments/1/status", payload, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastStatusDTO.TransactionStatus).To(Equal("refunded"))
		})

		It("should reject unknown fields", func() {
			payload := []byte(`{"status": "paid"}`)

			rec := do(http.MethodPatch, "/payments/1/status", payload, true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("CancelTransaction", func() {
		It("should return the confirmation message", func() {
			rec := do(http.MethodDelete, "/payments/1", nil, true)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var body map[string]string
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body["message"]).To(Equal("Transaction successfully canceled"))
		})

		It("should map forbidden from the service", func() {
			mockService.cancelError = apperrors.NewForbiddenError(
				"Not authorized to delete this transaction", apperrors.ErrCodeNotOwner)

			rec := do(http.MethodDelete, "/payments/1", nil, true)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(detailOf(rec)).To(Equal("Not authorized to delete this transaction"))
		})
	})

	Describe("ListAllTransactions", func() {
		It("should pass all filters through", func() {
			rec := do(http.MethodGet, "/payments/admin/all?status=paid&provider=stripe&user_id=u-9&booking_id=bk-9&property_id=pr-9", nil, true)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(mockService.lastListFilters.Status).To(Equal("paid"))
			Expect(mockService.lastListFilters.Provider).To(Equal("stripe"))
			Expect(mockService.lastListFilters.UserID).To(Equal("u-9"))
			Expect(mockService.lastListFilters.BookingID).To(Equal("bk-9"))
			Expect(mockService.lastListFilters.PropertyID).To(Equal("pr-9"))
		})

		It("should reject an unknown provider filter", func() {
			rec := do(http.MethodGet, "/payments/admin/all?provider=barter", nil, true)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should still require authentication", func() {
			rec := do(http.MethodGet, "/payments/admin/all", nil, false)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
