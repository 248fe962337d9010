package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dayumstir/bnpl-ledger/internal/config"
	"github.com/dayumstir/bnpl-ledger/internal/database"
	"github.com/dayumstir/bnpl-ledger/internal/gateway"
	"github.com/dayumstir/bnpl-ledger/internal/handler"
	"github.com/dayumstir/bnpl-ledger/internal/middleware"
	"github.com/dayumstir/bnpl-ledger/internal/rates"
	"github.com/dayumstir/bnpl-ledger/internal/repository"
	"github.com/dayumstir/bnpl-ledger/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := database.RunMigrations(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		if err := database.SeedData(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("failed to seed data")
		}
	}

	// Fee tiers load once at startup; an invalid tier set is fatal rather
	// than a per-request surprise.
	feeRateRepo := repository.NewFeeRateRepository(pool)
	tiers, err := feeRateRepo.LoadAll(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load fee tiers")
	}
	snap, err := rates.NewSnapshot(tiers)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid fee tier configuration")
	}
	table := rates.NewTable(snap)
	log.Info().Int("tiers", len(tiers)).Msg("fee tier snapshot loaded")

	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(gin.Recovery())

	healthHandler := handler.NewHealthHandler(pool)
	router.GET("/health", healthHandler.Health)

	planSvc, voucherSvc := setupAPIRoutes(router, pool, cfg, feeRateRepo, table)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go runSweeps(sweepCtx, cfg.SweepInterval, planSvc, voucherSvc)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopSweep()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func setupAPIRoutes(router *gin.Engine, pool *pgxpool.Pool, cfg *config.Config, feeRateRepo *repository.FeeRateRepository, table *rates.Table) (*service.PlanService, *service.VoucherService) {
	txnRepo := repository.NewTransactionRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)
	merchantRepo := repository.NewMerchantRepository(pool)
	cashbackRepo := repository.NewCashbackRepository(pool)

	scoreClient := gateway.NewCreditScoreClient(cfg.CreditScoreURL, cfg.CreditScoreTimeout)

	ratingSvc := service.NewRatingService(ratingRepo, scoreClient, cfg.CreditScoreRetries)
	voucherSvc := service.NewVoucherService(voucherRepo)
	planSvc := service.NewPlanService(pool, planRepo, txnRepo, historyRepo, cashbackRepo, voucherSvc, ratingSvc)
	txnSvc := service.NewTransactionService(pool, txnRepo, planRepo, merchantRepo, historyRepo, ratingRepo, planSvc, ratingSvc)
	feeSvc := service.NewFeeService(merchantRepo, feeRateRepo, table)
	historySvc := service.NewHistoryService(historyRepo, pool)
	overviewSvc := service.NewOverviewService(historySvc, ratingSvc, planRepo)
	cashbackSvc := service.NewCashbackService(cashbackRepo)

	txnHandler := handler.NewTransactionHandler(txnSvc)
	paymentHandler := handler.NewPaymentHandler(planSvc)
	voucherHandler := handler.NewVoucherHandler(voucherSvc)
	customerHandler := handler.NewCustomerHandler(historySvc, overviewSvc, ratingSvc, cashbackSvc)
	merchantHandler := handler.NewMerchantHandler(feeSvc)
	feeRateHandler := handler.NewFeeRateHandler(feeSvc)

	api := router.Group("/api/v1")
	{
		api.POST("/transactions", txnHandler.Create)
		api.GET("/transactions/:id", txnHandler.Get)
		api.POST("/transactions/:id/refund", txnHandler.Refund)

		api.GET("/instalment-payments/:id", paymentHandler.Get)
		api.POST("/instalment-payments/:id/pay", paymentHandler.Pay)

		api.POST("/vouchers", voucherHandler.Create)
		api.POST("/vouchers/:id/assign", voucherHandler.Assign)
		api.POST("/vouchers/:id/deactivate", voucherHandler.Deactivate)

		api.GET("/customers/:id/balance", customerHandler.Balance)
		api.POST("/customers/:id/top-up", customerHandler.TopUp)
		api.GET("/customers/:id/overview", customerHandler.Overview)
		api.GET("/customers/:id/rating", customerHandler.Rating)
		api.GET("/customers/:id/cashback-wallets", customerHandler.CashbackWallets)

		api.POST("/merchants/:id/withdrawals", merchantHandler.Withdraw)
		api.GET("/merchants/:id/fees/quote", merchantHandler.FeeQuote)
		api.PUT("/merchants/:id/snapshot", merchantHandler.UpdateSnapshot)

		api.POST("/admin/fee-rates", feeRateHandler.Create)
		api.POST("/admin/fee-rates/reload", feeRateHandler.Reload)
	}

	return planSvc, voucherSvc
}

// runSweeps periodically flags overdue instalment payments and expires
// voucher assignments whose voucher passed its expiry date.
func runSweeps(ctx context.Context, interval time.Duration, planSvc *service.PlanService, voucherSvc *service.VoucherService) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			if n, err := planSvc.MarkOverdue(ctx, now); err != nil {
				log.Error().Err(err).Msg("overdue sweep failed")
			} else if n > 0 {
				log.Info().Int64("payments", n).Msg("marked instalment payments overdue")
			}
			if n, err := voucherSvc.ExpireSweep(ctx, now); err != nil {
				log.Error().Err(err).Msg("voucher expiry sweep failed")
			} else if n > 0 {
				log.Info().Int64("assignments", n).Msg("expired voucher assignments")
			}
		}
	}
}
