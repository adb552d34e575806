package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantry-be/internal/analytics"
	"pantry-be/internal/auth"
	"pantry-be/internal/category"
	"pantry-be/internal/config"
	"pantry-be/internal/coupon"
	"pantry-be/internal/db"
	"pantry-be/internal/handler"
	"pantry-be/internal/inventory"
	"pantry-be/internal/logger"
	"pantry-be/internal/middleware"
	"pantry-be/internal/order"
	"pantry-be/internal/payment"
	"pantry-be/internal/pos"
	"pantry-be/internal/product"
	"pantry-be/internal/uom"
	"pantry-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.NewDatabase(cfg)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens := auth.NewTokenManager(cfg.JWTSecret)
	h := buildHandlers(database, cfg, tokens)

	if err := h.Users.EnsureAdmin(ctx, "Administrator", cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("failed to seed admin account", zap.Error(err))
	}

	limiter := middleware.NewRateLimiter(ctx)
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           setupRouter(handler.NewRouter(h, tokens, cfg.CORSOrigin), limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildHandlers wires repositories and services onto one connection pool.
func buildHandlers(database *sql.DB, cfg *config.Config, tokens *auth.TokenManager) *handler.Handlers {
	txm := db.NewTxManager(database)

	stock := inventory.NewService(inventory.NewRepository(database), txm, inventory.Options{
		StrictStock:       cfg.StrictStock,
		LowStockThreshold: cfg.LowStockThreshold,
	})
	products := product.NewService(product.NewRepository(database), stock)
	coupons := coupon.NewService(coupon.NewRepository(database), database)
	gateway := payment.NewHTTPGateway(cfg.PaymentKeyID, cfg.PaymentKeySecret, cfg.PaymentBaseURL)

	orders := order.NewService(order.Deps{
		Repo:     order.NewRepository(database),
		Tx:       txm,
		Catalog:  products,
		Stock:    stock,
		Coupons:  coupons,
		Verifier: gateway,
		Pricing: order.Pricing{
			TaxRate:               cfg.TaxRate,
			ShippingFee:           cfg.OnlineShippingFee,
			FreeShippingThreshold: cfg.FreeShippingThreshold,
		},
	})

	return &handler.Handlers{
		Users:      user.NewService(user.NewRepository(database), tokens),
		Products:   products,
		Categories: category.NewService(category.NewRepository(database)),
		UOMs:       uom.NewService(uom.NewRepository(database)),
		Inventory:  stock,
		Orders:     orders,
		POS: pos.NewService(products, orders, pos.Options{
			TaxRate: cfg.TaxRate,
			QRSize:  cfg.ReceiptQRSize,
			QRLevel: cfg.ReceiptQRLevel,
		}),
		Coupons:   coupons,
		Payments:  payment.NewService(payment.NewRepository(database), gateway, orders),
		Analytics: analytics.NewService(analytics.NewRepository(database), stock),
	}
}

// setupRouter wraps the API with request ids, access logs and rate limits.
// The request id is outermost so every later log line carries it.
func setupRouter(api http.Handler, limiter *middleware.RateLimiter) http.Handler {
	return logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			limiter.Middleware(api),
		),
	)
}
