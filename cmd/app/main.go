// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"case-portal/internal/config"
	"case-portal/internal/domain/ports/adapter"
	"case-portal/internal/domain/ports/repository"
	pg "case-portal/internal/infra/db/postgres"
	"case-portal/internal/infra/db/seed"
	"case-portal/internal/infra/logging"
	"case-portal/internal/infra/memory"
	"case-portal/internal/infra/metrics"
	red "case-portal/internal/infra/redis"
	"case-portal/internal/infra/sched"
	"case-portal/internal/infra/security"
	"case-portal/internal/infra/web"
	"case-portal/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, optional config file, demo cases")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}

	// ---- Case registry: Postgres or memory ----
	var (
		caseRepo repository.CaseRepository
		txm      repository.TransactionManager
	)
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema")
		}
		caseRepo = pg.NewCaseRepo(pool)
		txm = pg.NewTxManager(pool)
		go func() {
			t := time.NewTicker(30 * time.Second)
			defer t.Stop()
			for {
				pg.ReportPoolStats(pool)
				select {
				case <-ctx.Done():
					return
				case <-t.C:
				}
			}
		}()
		logger.Info().Msg("case registry: postgres")
	} else {
		caseRepo = memory.NewCaseRepo()
		txm = memory.NewTxManager()
		logger.Info().Msg("case registry: in-memory")
	}

	// ---- Flow sessions and submit guard: Redis or memory ----
	var (
		flowRepo repository.FlowStateRepository
		locker   adapter.Locker
		limiter  adapter.RateLimiter
		memFlows *memory.FlowStateRepo
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()

		var sealer red.Sealer
		if cfg.Security.EncryptionKey != "" {
			enc, err := security.NewEncryptionService(cfg.Security.EncryptionKey, "case_flow")
			if err != nil {
				logger.Fatal().Err(err).Msg("encryption")
			}
			sealer = enc
		} else {
			logger.Warn().Msg("security.encryption_key not set; applicant details are stored unencrypted in redis")
		}
		flowRepo = red.NewFlowStateRepo(redisClient, cfg.Flow.StateTTL, sealer)
		locker = red.NewLocker(redisClient)
		limiter = red.NewRateLimiter(redisClient)
		logger.Info().Msg("flow sessions: redis")
	} else {
		memFlows = memory.NewFlowStateRepo()
		flowRepo = memFlows
		locker = memory.NewLocker()
		limiter = memory.NewRateLimiter()
		logger.Info().Msg("flow sessions: in-memory")
	}

	// ---- Use cases ----
	flowUC := usecase.NewFlowUseCase(flowRepo, caseRepo, locker, limiter, usecase.FlowOptions{
		SubmitDelay:        cfg.Flow.SubmitDelay,
		SubmissionsPerHour: cfg.Flow.SubmissionsPerHour,
		Dev:                cfg.Runtime.Dev,
	}, logger)
	caseUC := usecase.NewCaseUseCase(caseRepo, txm, logger)

	if cfg.Runtime.Dev && cfg.Database.URL == "" {
		if n, err := caseUC.Import(ctx, seed.DemoCases()); err != nil {
			logger.Warn().Err(err).Msg("demo cases")
		} else {
			logger.Info().Int("count", n).Msg("demo cases loaded")
		}
	}

	// ---- Background workers ----
	if memFlows != nil {
		sweeper := sched.NewFlowSweeper(cfg.Flow.SweepInterval, cfg.Flow.StateTTL, memFlows, logger)
		go func() { _ = sweeper.Run(ctx) }()
	}
	refresher := sched.NewStatsRefresher(time.Minute, caseUC, logger)
	go func() { _ = refresher.Run(ctx) }()

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.SecureCookie, cfg.Admin.CookieDomain, cfg.Admin.SessionTTL)
	srv := web.NewServer(flowUC, caseUC, auth, web.Options{
		APIKey:         cfg.Admin.APIKey,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Str("version", version).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Flow.SubmitDelay+10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
