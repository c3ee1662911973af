package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/cache"
	"rental-backend/internal/config"
	"rental-backend/internal/database"
	"rental-backend/internal/db"
	"rental-backend/internal/handlers"
	"rental-backend/internal/health"
	h "rental-backend/internal/http"
	"rental-backend/internal/metrics"
	"rental-backend/internal/middleware"
	"rental-backend/internal/notifications"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/storage"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(cfg); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	totpRepo := repositories.NewTOTPRepository(pool)
	roomRepo := repositories.NewRoomRepository(pool)
	tenantRepo := repositories.NewTenantRepository(pool)
	contractRepo := repositories.NewContractRepository(pool)
	depositRepo := repositories.NewDepositContractRepository(pool)
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	amenityRepo := repositories.NewAmenityRepository(pool)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Object storage for image attachments (optional - uploads are
	// skipped when credentials are missing)
	var imageStore services.ImageStore
	if client, err := storage.New(context.Background(), cfg); err != nil {
		log.Printf("[Storage] Object storage unavailable: %v (image uploads disabled)", err)
	} else {
		imageStore = client
	}

	// Realtime notification hub
	hub := notifications.NewHub()
	go hub.Run()

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(cfg.JWT.Issuer, userRepo, totpRepo)
	roomService := services.NewRoomService(roomRepo, imageStore)
	tenantService := services.NewTenantService(tenantRepo)
	contractService := services.NewContractService(contractRepo, tenantRepo, roomRepo)
	depositService := services.NewDepositContractService(depositRepo, roomRepo)
	rentalService := services.NewRentalService(tenantRepo, roomRepo, contractRepo, depositRepo, imageStore)
	roomStateService := services.NewRoomStateService(roomRepo, contractRepo)
	invoiceService := services.NewInvoiceService(invoiceRepo, contractRepo)
	pdfService := services.NewPDFService(invoiceRepo, roomRepo)
	paymentService := services.NewPaymentService(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.WebhookSecret,
		invoiceService,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	totpHandler := handlers.NewTOTPHandler(totpService, userRepo, jwtManager)
	roomHandler := handlers.NewRoomHandler(roomService)
	roomStateHandler := handlers.NewRoomStateHandler(roomStateService, hub)
	tenantHandler := handlers.NewTenantHandler(tenantService)
	contractHandler := handlers.NewContractHandler(contractService, hub)
	depositHandler := handlers.NewDepositContractHandler(depositService, hub)
	agreementHandler := handlers.NewRentalAgreementHandler(rentalService, hub)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, pdfService, hub)
	amenityHandler := handlers.NewAmenityHandler(amenityRepo)
	dashboardHandler := handlers.NewDashboardHandler(roomService, invoiceRepo, contractRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentService, hub)
	healthHandler := handlers.NewHealthHandler(healthChecker, hub)

	router := h.NewRouter(
		authHandler,
		userHandler,
		totpHandler,
		roomHandler,
		roomStateHandler,
		tenantHandler,
		contractHandler,
		depositHandler,
		agreementHandler,
		invoiceHandler,
		amenityHandler,
		dashboardHandler,
		paymentHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	// Host metrics for the /metrics endpoint
	collector := metrics.NewSystemCollector(30 * time.Second)
	collector.Start()
	defer collector.Stop()

	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
