package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/eygar/payment-service/internal"
	"github.com/eygar/payment-service/internal/auth"
	"github.com/eygar/payment-service/internal/transaction"
	"github.com/eygar/payment-service/internal/transport/middleware"
	"github.com/eygar/payment-service/internal/transport/swagger"
)

// RegisterAllRoutes wires the transaction API onto the router. RootPath from
// config prefixes everything, so the service can sit behind a path-routing
// gateway without rewrites.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cfg *internal.Config, authMiddleware *auth.Middleware, transactionHandler *transaction.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, cfg.Service.Name, cfg.Service.Version)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	mount := func(r chi.Router) {
		r.Get("/", healthHandler.rootHandler)
		r.Get("/health", healthHandler.healthCheckHandler)

		r.Get("/openapi.yml", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, "./api/openapi.yml")
		})
		r.Handle("/swagger/*", swagger.Handler())

		r.Route("/api/v1", func(api chi.Router) {
			api.Get("/health", healthHandler.healthCheckHandler)
			api.Get("/ping", healthHandler.pingHandler)

			api.Route("/payments", func(pr chi.Router) {
				pr.Use(authMiddleware.RequireIdentity)

				pr.Post("/", transactionHandler.CreateTransaction)
				pr.Get("/", transactionHandler.ListTransactions)
				pr.Get("/admin/all", transactionHandler.ListAllTransactions)
				pr.Get("/payment-gateway/{paymentID}", transactionHandler.GetTransactionByPaymentID)
				pr.Get("/booking/{bookingID}", transactionHandler.ListBookingTransactions)
				pr.Get("/{id}", transactionHandler.GetTransaction)
				pr.Put("/{id}", transactionHandler.UpdateTransaction)
				pr.Patch("/{id}/status", transactionHandler.UpdateTransactionStatus)
				pr.Delete("/{id}", transactionHandler.CancelTransaction)
			})
		})
	}

	if cfg.Server.RootPath != "" {
		router.Route(cfg.Server.RootPath, mount)
	} else {
		mount(router)
	}
}
