package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memeindex-bot/internal/api"
	"memeindex-bot/internal/bot"
	"memeindex-bot/internal/config"
	"memeindex-bot/internal/database"
	"memeindex-bot/internal/logging"
	"memeindex-bot/internal/referral"
	"memeindex-bot/internal/telegram"
	"memeindex-bot/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.LoadConfig()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "main")

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tg, err := telegram.NewClient(cfg.BotToken, cfg.RequestTimeout, cfg.PollTimeout)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Telegram")
	}
	log.WithField("username", tg.Self.UserName).Info("authorized on Telegram")
	if cfg.BotUsername == "" {
		log.Warn("BOT_USERNAME is not set, inline invitations and /send-template are disabled")
	}

	hubDone := make(chan struct{})
	hub := ws.NewHub(logging.Component(logger, "ws"))
	go hub.Run(hubDone)
	defer close(hubDone)

	recorders := bot.Recorders{hub}
	deps := api.Deps{Stream: hub.Handle, Logger: logging.Component(logger, "http")}

	if cfg.JournalEnabled() {
		db, err := database.OpenGorm(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed to open delivery journal")
		}
		store := database.NewDeliveryStore(db, logging.Component(logger, "journal"))
		recorders = append(recorders, store)
		deps.Deliveries = store
		log.WithField("driver", cfg.DBDriver).Info("delivery journal enabled")
	}

	var verifier bot.ReferralVerifier
	if cfg.BackendURL != "" {
		verifier = referral.NewClient(cfg.BackendURL, cfg.RequestTimeout)
		log.WithField("backend", cfg.BackendURL).Info("referral verification enabled")
	}

	router := bot.NewRouter(tg, verifier, recorders, bot.RouterOptions{
		MiniAppURL:     cfg.MiniAppURL,
		BotUsername:    cfg.BotUsername,
		RequestTimeout: cfg.RequestTimeout,
	}, logging.Component(logger, "router"))
	deps.Bot = router

	supervisor := bot.NewSupervisor(tg, router, bot.SupervisorOptions{
		MaxAttempts: cfg.MaxReconnectAttempts,
		Delay:       cfg.ReconnectDelay,
		PollTimeout: cfg.PollTimeout,
	}, logging.Component(logger, "poller"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	pollErr := make(chan error, 1)
	go func() { pollErr <- supervisor.Run(ctx) }()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Bot server is running on port %s", cfg.Port)
		serveErr <- srv.ListenAndServe()
	}()

	exitCode := 0
	polling := true
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-pollErr:
		polling = false
		if errors.Is(err, bot.ErrTooManyReconnects) {
			log.WithError(err).Error("Telegram polling gave up")
			exitCode = 1
		}
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server failed")
			exitCode = 1
		}
	}
	stop()

	// The poller returns once the pending long poll ends and every
	// in-flight update handler has finished.
	drainTimeout := shutdownTimeout + time.Duration(cfg.PollTimeout)*time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown incomplete")
	}
	if polling && !awaitPoller(shutdownCtx, pollErr) {
		log.Warn("update handlers still running at shutdown deadline")
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// awaitPoller blocks until the supervisor reports back or ctx expires. It
// reports whether the supervisor finished.
func awaitPoller(ctx context.Context, pollErr <-chan error) bool {
	select {
	case <-pollErr:
		return true
	case <-ctx.Done():
		return false
	}
}
