package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"facegate/internal/biometric"
	jwttoken "facegate/internal/jwt_token"
	"facegate/internal/platform/config"
	"facegate/internal/platform/httpserver"
	"facegate/internal/platform/logger"
	"facegate/internal/platform/metrics"
	"facegate/internal/platform/redis"
	"facegate/internal/proof"
	"facegate/internal/proof/nullifier"
	"facegate/internal/risk"
	httptransport "facegate/internal/transport/http"
	"facegate/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	reg := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Nullifier registry: Redis when configured, process-local otherwise.
	var nullifiers nullifier.Store = nullifier.NewInMemoryStore()
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory nullifier registry", "error", err)
	} else if redisClient != nil {
		defer redisClient.Close()
		nullifiers = nullifier.NewRedisStore(redisClient.Client, 0)
		log.Info("nullifier registry backed by redis")
	}

	// Assessment audit trail: Postgres when configured.
	var assessments risk.Store = risk.NewMemoryStore()
	if cfg.Risk.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Risk.PostgresURL)
		if err != nil {
			log.Warn("postgres unavailable, using in-memory assessment trail", "error", err)
		} else {
			defer pool.Close()
			pgStore := risk.NewPostgresStore(pool)
			if err := pgStore.Migrate(ctx); err != nil {
				log.Warn("assessment trail migration failed, using in-memory store", "error", err)
			} else {
				assessments = pgStore
				log.Info("assessment trail backed by postgres")
			}
		}
	}

	prover := proof.NewSnarkProver(cfg.Circuit.ProverBin)
	monitor := proof.NewMonitor(cfg.Circuit, prover,
		proof.WithMonitorLogger(log),
		proof.WithMonitorMetrics(reg),
	)
	engine, err := proof.NewEngine(cfg.Circuit, prover, monitor,
		proof.WithEngineLogger(log),
		proof.WithEngineMetrics(reg),
		proof.WithNullifierStore(nullifiers),
		proof.WithBreaker(circuit.New("prover")),
	)
	if err != nil {
		log.Error("engine initialization failed", "error", err)
		os.Exit(1)
	}

	analyzerCfg := biometric.DefaultAnalyzerConfig()
	if cfg.SecurityLevel == "strict" {
		analyzerCfg.LivenessThreshold = biometric.ThresholdStrict
	}
	analyzerCfg.Advanced = cfg.AdvancedLiveness

	riskSvc := risk.NewService(assessments,
		risk.WithServiceLogger(log),
		risk.WithServiceMetrics(reg),
	)

	handler := httptransport.NewHandler(
		biometric.NewStubDetector(),
		biometric.NewAnalyzer(analyzerCfg, biometric.WithLogger(log)),
		engine,
		monitor,
		riskSvc,
		httptransport.WithHandlerLogger(log),
		httptransport.WithHandlerMetrics(reg),
		httptransport.WithTokens(jwttoken.NewJWTService(cfg.JWTSigningKey, "facegate", "facegate-clients")),
	)
	router := httptransport.NewRouter(handler, log, reg, promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting facegate", "addr", cfg.Addr, "security_level", cfg.SecurityLevel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("facegate stopped")
}
