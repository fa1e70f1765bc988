package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edupode/mysterybox/internal/config"
	"github.com/edupode/mysterybox/internal/handler"
	"github.com/edupode/mysterybox/internal/infra/cache"
	"github.com/edupode/mysterybox/internal/infra/db"
	"github.com/edupode/mysterybox/internal/infra/mail"
	"github.com/edupode/mysterybox/internal/infra/payment"
	infraRepo "github.com/edupode/mysterybox/internal/infra/repository"
	"github.com/edupode/mysterybox/internal/server"
	"github.com/edupode/mysterybox/internal/usecase"
	"github.com/edupode/mysterybox/internal/validator"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.GoEnv)

	//DB接続
	gormDB, err := db.Connect(cfg.DB, cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get sql.DB")
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(sqlDB, getenv("MIGRATIONS_DIR", "migrations")); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Database ready")

	//Redis（任意）
	var statusCache usecase.PaymentStatusCache
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, payment status cache disabled")
		} else {
			defer rdb.Close()
			statusCache = cache.NewPaymentStatusCache(rdb)
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connected")
		}
	}

	//決済
	var provider payment.Provider
	if cfg.Stripe.SecretKey != "" {
		provider = payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.Currency)
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, using mock payment provider")
		provider = payment.NewMockProvider()
	}

	//メール
	var sender mail.Sender
	if cfg.Mail.APIKey != "" {
		sender = mail.NewResendSender(cfg.Mail.APIKey, cfg.Mail.From)
	} else {
		log.Warn().Msg("RESEND_API_KEY not set, emails are only logged")
		sender = mail.LogSender{}
	}

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase
	notifier := usecase.NewMailNotifier(sender)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator(userRepo))
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, couponUC)
	checkoutUC := usecase.NewCheckoutUsecase(txm, cartRepo, cartRepo, productRepo, couponRepo, couponUC, provider, notifier, cfg.Store)
	paymentUC := usecase.NewPaymentUsecase(orderRepo, orderItemRepo, cartRepo, provider, statusCache, notifier, cfg.Store.ClearCartOn)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, auditRepo, notifier, cfg.Store.StrictOrderTransitions)

	srv := server.New(cfg, server.Handlers{
		Users:        userRepo,
		Auth:         handler.NewAuthHandler(authUC),
		Products:     handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Coupons:      handler.NewCouponHandler(couponUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, paymentUC),
		Orders:       handler.NewOrderHandler(orderUC),
		AdminOrders:  handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminUsers:   handler.NewAdminUserHandler(cfg, userRepo, authUC),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
