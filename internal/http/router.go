package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rental-backend/internal/handlers"
	"rental-backend/internal/middleware"
	"rental-backend/internal/notifications"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	totpHandler *handlers.TOTPHandler,
	roomHandler *handlers.RoomHandler,
	roomStateHandler *handlers.RoomStateHandler,
	tenantHandler *handlers.TenantHandler,
	contractHandler *handlers.ContractHandler,
	depositHandler *handlers.DepositContractHandler,
	agreementHandler *handlers.RentalAgreementHandler,
	invoiceHandler *handlers.InvoiceHandler,
	amenityHandler *handlers.AmenityHandler,
	dashboardHandler *handlers.DashboardHandler,
	paymentHandler *handlers.PaymentHandler,
	healthHandler *handlers.HealthHandler,
	hub *notifications.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/api/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify-2fa", totpHandler.VerifyTOTP).Methods("POST")

	// Payment gateway webhook is authenticated by its signature header
	r.HandleFunc("/api/payments/webhook", paymentHandler.HandleWebhook).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.UpdateUser)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.DeleteUser)).ServeHTTP).Methods("DELETE")
	usersAPI.HandleFunc("/{id}/toggle-active", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ToggleActive)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Two-factor auth
	totpAPI := r.PathPrefix("/api/2fa").Subrouter()
	totpAPI.Use(authMiddleware.Authenticate)
	totpAPI.HandleFunc("/setup", totpHandler.SetupTOTP).Methods("POST")
	totpAPI.HandleFunc("/enable", totpHandler.EnableTOTP).Methods("POST")
	totpAPI.HandleFunc("/disable", totpHandler.DisableTOTP).Methods("POST")
	totpAPI.HandleFunc("/status", totpHandler.GetStatus).Methods("GET")
	totpAPI.HandleFunc("/backup-codes", totpHandler.RegenerateBackupCodes).Methods("POST")

	// Protected API routes - Rooms
	roomsAPI := r.PathPrefix("/api/rooms").Subrouter()
	roomsAPI.Use(authMiddleware.Authenticate)
	roomsAPI.HandleFunc("", roomHandler.ListRooms).Methods("GET")
	roomsAPI.HandleFunc("", roomHandler.CreateRoom).Methods("POST")
	roomsAPI.HandleFunc("/statistics", roomHandler.GetStatistics).Methods("GET")
	roomsAPI.HandleFunc("/{id}", roomHandler.GetRoom).Methods("GET")
	roomsAPI.HandleFunc("/{id}", roomHandler.UpdateRoom).Methods("PUT")
	roomsAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(roomHandler.DeleteRoom)).ServeHTTP).Methods("DELETE")
	roomsAPI.HandleFunc("/{id}/images", roomHandler.UploadImages).Methods("POST")
	roomsAPI.HandleFunc("/{id}/mark-expiring", roomStateHandler.MarkExpiring).Methods("POST")
	roomsAPI.HandleFunc("/{id}/cancel-expiring", roomStateHandler.CancelExpiring).Methods("POST")

	// Protected API routes - Tenants
	tenantsAPI := r.PathPrefix("/api/tenants").Subrouter()
	tenantsAPI.Use(authMiddleware.Authenticate)
	tenantsAPI.HandleFunc("", tenantHandler.ListTenants).Methods("GET")
	tenantsAPI.HandleFunc("/{id}", tenantHandler.GetTenant).Methods("GET")
	tenantsAPI.HandleFunc("/{id}", tenantHandler.UpdateTenant).Methods("PUT")
	tenantsAPI.HandleFunc("/{id}/archive", tenantHandler.ArchiveTenant).Methods("POST")

	// Protected API routes - Contracts
	contractsAPI := r.PathPrefix("/api/contracts").Subrouter()
	contractsAPI.Use(authMiddleware.Authenticate)
	contractsAPI.HandleFunc("", contractHandler.ListContracts).Methods("GET")
	contractsAPI.HandleFunc("/{id}", contractHandler.GetContract).Methods("GET")
	contractsAPI.HandleFunc("/{id}/terminate", contractHandler.TerminateContract).Methods("POST")
	contractsAPI.HandleFunc("/{contractId}/invoices/prepare", invoiceHandler.PrepareInvoice).Methods("GET")

	// Protected API routes - Rental agreements (the saga commit)
	agreementsAPI := r.PathPrefix("/api/rental-agreements").Subrouter()
	agreementsAPI.Use(authMiddleware.Authenticate)
	agreementsAPI.HandleFunc("", agreementHandler.CommitAgreement).Methods("POST")

	// Protected API routes - Deposit contracts
	depositsAPI := r.PathPrefix("/api/deposit-contracts").Subrouter()
	depositsAPI.Use(authMiddleware.Authenticate)
	depositsAPI.HandleFunc("", depositHandler.ListDepositContracts).Methods("GET")
	depositsAPI.HandleFunc("", depositHandler.CreateDepositContract).Methods("POST")
	depositsAPI.HandleFunc("/{id}", depositHandler.GetDepositContract).Methods("GET")
	depositsAPI.HandleFunc("/{id}/cancel", depositHandler.CancelDepositContract).Methods("POST")

	// Protected API routes - Invoices
	invoicesAPI := r.PathPrefix("/api/invoices").Subrouter()
	invoicesAPI.Use(authMiddleware.Authenticate)
	invoicesAPI.HandleFunc("", invoiceHandler.ListInvoices).Methods("GET")
	invoicesAPI.HandleFunc("", invoiceHandler.CreateInvoice).Methods("POST")
	invoicesAPI.HandleFunc("/{id}", invoiceHandler.GetInvoice).Methods("GET")
	invoicesAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(invoiceHandler.DeleteInvoice)).ServeHTTP).Methods("DELETE")
	invoicesAPI.HandleFunc("/{id}/status", invoiceHandler.UpdateStatus).Methods("PATCH")
	invoicesAPI.HandleFunc("/{id}/pdf", invoiceHandler.DownloadPDF).Methods("GET")

	// Protected API routes - Amenities
	amenitiesAPI := r.PathPrefix("/api/amenities").Subrouter()
	amenitiesAPI.Use(authMiddleware.Authenticate)
	amenitiesAPI.HandleFunc("", amenityHandler.ListAmenities).Methods("GET")
	amenitiesAPI.HandleFunc("", amenityHandler.CreateAmenity).Methods("POST")
	amenitiesAPI.HandleFunc("/{id}", amenityHandler.UpdateAmenity).Methods("PUT")
	amenitiesAPI.HandleFunc("/{id}", amenityHandler.DeleteAmenity).Methods("DELETE")

	// Protected API routes - Dashboard
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.Use(authMiddleware.Authenticate)
	dashboardAPI.HandleFunc("", dashboardHandler.GetSummary).Methods("GET")

	// Protected API routes - Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("/status", paymentHandler.CheckStatus).Methods("GET")
	paymentsAPI.HandleFunc("/invoices/{id}/order", paymentHandler.CreateOrder).Methods("POST")
	paymentsAPI.HandleFunc("/verify", paymentHandler.VerifyPayment).Methods("POST")

	// Realtime notifications for the back office UI
	r.HandleFunc("/ws", hub.HandleWebSocket)

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
