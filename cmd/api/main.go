package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callbridge/internal/assistant"
	"callbridge/internal/audit"
	"callbridge/internal/auth"
	"callbridge/internal/config"
	"callbridge/internal/directory"
	"callbridge/internal/httpapi"
	"callbridge/internal/registry"
	"callbridge/internal/reporting"
	"callbridge/internal/telephony"
	"callbridge/internal/transfer"
	"callbridge/pkg/logger"
	"callbridge/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	store, err := registry.NewRedisStore(rdb, cfg.Transfer.SlotTTL)
	if err != nil {
		log.Error("call registry init failed", "err", err)
		os.Exit(1)
	}

	slots, err := registry.NewRedisSlotGuard(rdb, cfg.Transfer.SlotTTL)
	if err != nil {
		log.Error("slot guard init failed", "err", err)
		os.Exit(1)
	}

	dir, err := directory.New(cfg.Transfer.Departments, cfg.Transfer.Aliases, cfg.Transfer.DefaultDepartment)
	if err != nil {
		log.Error("department directory init failed", "err", err)
		os.Exit(1)
	}

	provider, err := telephony.NewTwilioClient(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken)
	if err != nil {
		log.Error("telephony provider init failed", "err", err)
		os.Exit(1)
	}

	connector, err := assistant.NewVapiClient(cfg.Assistant.APIKey, cfg.Assistant.AssistantID, cfg.Assistant.PhoneNumberID)
	if err != nil {
		log.Error("assistant connector init failed", "err", err)
		os.Exit(1)
	}

	orch, err := transfer.NewOrchestrator(dir, store, provider, transfer.Endpoints{
		ConferenceURL:     cfg.App.PublicBaseURL + "/twiml/conference",
		AnnounceURL:       cfg.App.PublicBaseURL + "/twiml/announce",
		StatusCallbackURL: cfg.App.PublicBaseURL + "/webhooks/voice/status",
	}, cfg.Twilio.FromNumber, slots)
	if err != nil {
		log.Error("transfer orchestrator init failed", "err", err)
		os.Exit(1)
	}

	repo, err := reporting.NewPostgresRepo(db)
	if err != nil {
		log.Error("reporting repo init failed", "err", err)
		os.Exit(1)
	}

	trailRepo, err := audit.NewPostgresRepo(db)
	if err != nil {
		log.Error("trail repo init failed", "err", err)
		os.Exit(1)
	}

	h := httpapi.Handlers{
		Auth:           authManager,
		Assistant:      connector,
		Registry:       store,
		Transfers:      orch,
		Reports:        reporting.NewService(repo),
		Trail:          audit.NewService(trailRepo),
		ConferenceRoom: cfg.Transfer.ConferenceRoom,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, cfg, auth.RequireAccessToken(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
