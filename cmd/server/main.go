package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/anshikasharma148/restaurant-management-metro/internal/auth"
	"github.com/anshikasharma148/restaurant-management-metro/internal/config"
	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
	"github.com/anshikasharma148/restaurant-management-metro/internal/menu"
	"github.com/anshikasharma148/restaurant-management-metro/internal/messaging"
	"github.com/anshikasharma148/restaurant-management-metro/internal/middleware"
	"github.com/anshikasharma148/restaurant-management-metro/internal/orders"
	"github.com/anshikasharma148/restaurant-management-metro/internal/payments"
	"github.com/anshikasharma148/restaurant-management-metro/internal/reports"
	"github.com/anshikasharma148/restaurant-management-metro/internal/settings"
	"github.com/anshikasharma148/restaurant-management-metro/internal/tables"
	"github.com/anshikasharma148/restaurant-management-metro/internal/telemetry"
	"github.com/anshikasharma148/restaurant-management-metro/internal/users"
)

const (
	serviceName    = "restaurant-api"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := otelruntime.Start(); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var createdEvents, statusEvents *messaging.Producer
	if len(cfg.KafkaBrokers) > 0 {
		createdEvents = messaging.NewProducer(cfg.KafkaBrokers, "order.created")
		defer func() { _ = createdEvents.Close() }()

		statusEvents = messaging.NewProducer(cfg.KafkaBrokers, "order.status-changed")
		defer func() { _ = statusEvents.Close() }()
	}

	userRepo := users.NewUserRepository(db)
	menuRepo := menu.NewMenuRepository(db)
	tableRepo := tables.NewTableRepository(db)
	orderRepo := orders.NewOrderRepository(db)
	paymentRepo := payments.NewPaymentRepository(db)
	settingsRepo := settings.NewSettingsRepository(db)
	reportRepo := reports.NewReportRepository(db)

	authHandler := auth.NewHandler(userRepo, cfg.JWTSecret, logger)
	userHandler := users.NewHandler(userRepo, logger)
	menuHandler := menu.NewHandler(menuRepo, logger)
	tableHandler := tables.NewHandler(tableRepo, logger)
	settingsHandler := settings.NewHandler(settingsRepo, logger)
	reportHandler := reports.NewHandler(reportRepo, logger)
	paymentHandler := payments.NewHandler(paymentRepo, orderRepo, tableRepo, logger)

	var orderHandler *orders.Handler
	if createdEvents != nil {
		orderHandler = orders.NewHandler(orderRepo, tableRepo, settingsRepo, createdEvents, statusEvents, logger)
	} else {
		orderHandler = orders.NewHandler(orderRepo, tableRepo, settingsRepo, nil, nil, logger)
	}

	mux := http.NewServeMux()
	limiter := middleware.NewRateLimiter()

	staff := []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleCashier}
	managers := []domain.Role{domain.RoleAdmin, domain.RoleManager}
	admins := []domain.Role{domain.RoleAdmin}
	kitchen := []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleCashier, domain.RoleKitchen}

	// Rate limiting sits behind auth so authenticated traffic is keyed by
	// user rather than by client IP.
	route := func(pattern string, h http.HandlerFunc, roles ...domain.Role) {
		var handler http.Handler = telemetry.WithHTTPRoute(h)
		if len(roles) > 0 {
			handler = auth.RequireRole(handler, roles...)
		}
		handler = limiter.Limit(handler)
		mux.Handle(pattern, auth.RequireAuth(cfg.JWTSecret, handler))
	}

	mux.Handle("POST /auth/login", limiter.Limit(telemetry.WithHTTPRoute(authHandler.HandleLogin)))
	route("GET /auth/me", authHandler.HandleMe)

	route("GET /users", userHandler.HandleList, admins...)
	route("POST /users", userHandler.HandleCreate, admins...)
	route("GET /users/{id}", userHandler.HandleGet, admins...)
	route("PUT /users/{id}", userHandler.HandleUpdate, admins...)
	route("DELETE /users/{id}", userHandler.HandleDelete, admins...)

	route("GET /menu/items", menuHandler.HandleListItems)
	route("GET /menu/items/{id}", menuHandler.HandleGetItem)
	route("POST /menu/items", menuHandler.HandleCreateItem, managers...)
	route("PUT /menu/items/{id}", menuHandler.HandleUpdateItem, managers...)
	route("DELETE /menu/items/{id}", menuHandler.HandleDeleteItem, managers...)
	route("GET /menu/categories", menuHandler.HandleListCategories)
	route("POST /menu/categories", menuHandler.HandleCreateCategory, managers...)
	route("PUT /menu/categories/{id}", menuHandler.HandleUpdateCategory, managers...)
	route("DELETE /menu/categories/{id}", menuHandler.HandleDeleteCategory, managers...)

	route("GET /tables", tableHandler.HandleList)
	route("POST /tables", tableHandler.HandleCreate, managers...)
	route("GET /tables/{id}", tableHandler.HandleGet)
	route("PUT /tables/{id}", tableHandler.HandleUpdate, managers...)
	route("PATCH /tables/{id}/status", tableHandler.HandleUpdateStatus, staff...)
	route("DELETE /tables/{id}", tableHandler.HandleDelete, managers...)

	route("GET /orders", orderHandler.HandleList, kitchen...)
	route("POST /orders", orderHandler.HandleCreate, staff...)
	route("GET /orders/{id}", orderHandler.HandleGet, kitchen...)
	route("PUT /orders/{id}", orderHandler.HandleUpdate, staff...)
	route("PATCH /orders/{id}/status", orderHandler.HandleUpdateStatus, kitchen...)
	route("DELETE /orders/{id}", orderHandler.HandleDelete, managers...)

	route("POST /payments", paymentHandler.HandleProcess, staff...)
	route("GET /payments", paymentHandler.HandleList, staff...)
	route("GET /payments/{id}", paymentHandler.HandleGet, staff...)
	route("GET /payments/order/{orderId}", paymentHandler.HandleGetByOrder, staff...)

	route("GET /reports/sales", reportHandler.HandleSalesSummary, managers...)
	route("GET /reports/top-items", reportHandler.HandleTopItems, managers...)
	route("GET /reports/category-sales", reportHandler.HandleCategorySales, managers...)
	route("GET /reports/dashboard", reportHandler.HandleDashboard, managers...)

	route("GET /settings", settingsHandler.HandleGet)
	route("PUT /settings", settingsHandler.HandleUpdate, admins...)

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting restaurant api", "port", cfg.Port, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
