// Command exampleserver hosts InspectMo's Inspector behind a small HTTP
// API: two methods (greet, transfer) inspected the way a real canister
// would inspect its own update/query calls at the boundary and again at
// guard time. It exists to exercise the engine end to end, not as a
// production message router.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/icdevs/inspect-mo-sub000/internal/api"
	authchain "github.com/icdevs/inspect-mo-sub000/internal/auth"
	"github.com/icdevs/inspect-mo-sub000/internal/auditsink"
	"github.com/icdevs/inspect-mo-sub000/internal/collab"
	"github.com/icdevs/inspect-mo-sub000/internal/config"
	"github.com/icdevs/inspect-mo-sub000/internal/telemetry"
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
	"github.com/icdevs/inspect-mo-sub000/pkg/inspector"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("inspectmo exampleserver starting")

	cfg := config.Load()
	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Init(cfg.Telemetry, cfg.Inspector)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer shutdownTelemetry(ctx)

	auth := collab.NewStaticAuthCollaborator()
	rateLimiter := collab.NewTokenBucketRateLimiter(2, 10)

	var sinks []ictx.TelemetrySink
	sinks = append(sinks, collab.NewOtelTelemetrySink(cfg.Telemetry.ServiceName))

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, audit trail will be otel-only")
	} else {
		defer pool.Close()
		pgSink := auditsink.NewPostgresAuditSink(pool, func(err error) {
			log.Error().Err(err).Msg("audit sink write failed")
		})
		if err := pgSink.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure audit schema, continuing without it")
		} else {
			sinks = append(sinks, pgSink)
		}
	}

	insp := inspector.New(inspector.Config{
		AllowAnonymous:    boolPtr(cfg.Inspector.AllowAnonymous),
		DefaultMaxArgSize: intPtr(cfg.Inspector.DefaultMaxArgSize),
		AuthProvider:      auth,
		RateLimit:         rateLimiter,
		QueryDefaults:     inspector.MethodKindDefaults{AllowAnonymous: boolPtr(true)},
		AuditLog:          cfg.Inspector.AuditLog,
		TelemetrySink:     fanOutSink(sinks),
		StructuralLimits:  ictx.StructuralLimits{MaxDepth: 16, MaxSize: 1 << 20},
	})

	if err := api.RegisterMethods(insp); err != nil {
		log.Fatal().Err(err).Msg("failed to register inspected methods")
	}

	authChain := authchain.NewProviderChain()
	authChain.RegisterProvider(authchain.NewAPIKeyProvider())
	authChain.RegisterProvider(authchain.NewServiceAccountProvider())

	router := api.NewRouter(cfg, insp, authChain, rateLimiter)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info().Int("port", cfg.Port).Msg("inspectmo exampleserver ready")
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

// fanOutSink reports a rejection to every configured sink. Returns nil if
// sinks is empty so Config.AuditLog has nothing to call.
func fanOutSink(sinks []ictx.TelemetrySink) ictx.TelemetrySink {
	if len(sinks) == 0 {
		return nil
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return multiSink(sinks)
}

type multiSink []ictx.TelemetrySink

func (m multiSink) RecordRejection(ctx context.Context, event ictx.TelemetryEvent) {
	for _, s := range m {
		s.RecordRejection(ctx, event)
	}
}
