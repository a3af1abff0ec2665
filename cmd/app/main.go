package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-chat-client/internal/config"
	"ai-chat-client/internal/domain/ports/adapter"
	"ai-chat-client/internal/domain/ports/storage"
	"ai-chat-client/internal/infra/adapters/backend"
	"ai-chat-client/internal/infra/adapters/otp"
	"ai-chat-client/internal/infra/countries"
	"ai-chat-client/internal/infra/kv"
	"ai-chat-client/internal/infra/logging"
	"ai-chat-client/internal/infra/metrics"
	"ai-chat-client/internal/infra/security"
	"ai-chat-client/internal/infra/web"
	"ai-chat-client/internal/infra/worker"
	"ai-chat-client/internal/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed secrets)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		log.Warn().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Storage backend ----
	var kvStore storage.KeyValue
	switch cfg.Storage.Backend {
	case "memory":
		kvStore = kv.NewMemory()
	case "file":
		kvStore, err = kv.NewFile(cfg.Storage.Dir)
		if err != nil {
			log.Fatal().Err(err).Msg("file storage")
		}
	case "redis":
		rdb, err := kv.NewRedis(ctx, &cfg.Storage.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("redis storage")
		}
		defer rdb.Close()
		kvStore = rdb
	case "postgres":
		pgs, err := kv.NewPostgres(ctx, cfg.Storage.Postgres.URL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres storage")
		}
		defer pgs.Close()
		kvStore = pgs
	}
	if cfg.Storage.EncryptionKey != "" {
		cipher, err := security.NewCipher(cfg.Storage.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("encryption")
		}
		kvStore = kv.NewEncrypted(kvStore, cipher)
	}

	// ---- Persistence pool ----
	pool := worker.NewPool(4, log)
	pool.Start(ctx)
	defer pool.Stop()
	saver := store.NewKVSaver(kvStore, pool, log)

	// ---- Stores ----
	session := store.NewSession(ctx, kvStore, saver, log)
	conv := store.NewConversation(ctx, kvStore, saver, log)

	// ---- Reply backend ----
	var replies adapter.ReplyGenerator
	switch cfg.Backend.Provider {
	case "openai":
		replies, err = backend.NewOpenAI(cfg.Backend.OpenAIKey, cfg.Backend.Model, log)
		if err != nil {
			log.Fatal().Err(err).Msg("openai backend")
		}
		log.Info().Str("model", cfg.Backend.Model).Msg("reply backend: openai")
	case "gemini":
		replies, err = backend.NewGemini(ctx, cfg.Backend.GeminiKey, cfg.Backend.GeminiURL, cfg.Backend.Model, log)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini backend")
		}
		log.Info().Str("model", cfg.Backend.Model).Msg("reply backend: gemini")
	default:
		replies = backend.NewSimulated(log)
		log.Info().Msg("reply backend: simulated")
	}
	replies = backend.NewLimitedReplies(replies, cfg.Backend.ConcurrentLimit)

	// ---- OTP channel ----
	var otpGW adapter.OTPGateway
	if cfg.Backend.OTPChannel == "telegram" {
		otpGW, err = otp.NewTelegram(cfg.Backend.Telegram.Token, cfg.Backend.Telegram.ChatID, log)
		if err != nil {
			log.Fatal().Err(err).Msg("telegram otp")
		}
		log.Info().Msg("otp channel: telegram")
	} else {
		otpGW = backend.NewSimulated(log)
		log.Info().Msg("otp channel: simulated")
	}

	// ---- HTTP surface ----
	authMgr := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	countrySvc := countries.NewService(log)
	srv := web.NewServer(session, conv, otpGW, replies, countrySvc, authMgr, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
}
