package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"medical-assistant/internal/advice"
	"medical-assistant/internal/config"
	"medical-assistant/internal/consultation"
	"medical-assistant/internal/diagnosis"
	"medical-assistant/internal/platform/logger"
	"medical-assistant/internal/platform/middleware"
	"medical-assistant/internal/platform/telegram"
	"medical-assistant/internal/report"
	"medical-assistant/internal/speech"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init("medical-assistant", cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Clients
	diagClient := diagnosis.NewClient(cfg.DiagnosisAPIURL, cfg.DiagnosisTimeout)

	var stt consultation.Transcriber = speech.Disabled{}
	if cfg.STTURL != "" {
		stt = speech.NewWhisperClient(cfg.STTURL, cfg.STTTimeout)
	} else {
		log.Warn().Msg("STT_URL is not set, voice input is disabled")
	}

	opts := []consultation.Option{consultation.WithTranscriber(stt)}
	if cfg.TTSAPIKey != "" {
		opts = append(opts, consultation.WithSynthesizer(speech.NewElevenLabsClient(cfg.TTSURL, cfg.TTSAPIKey, cfg.TTSVoiceID, cfg.TTSTimeout)))
	}

	var reportSvc *report.Service
	if cfg.NotificationsEnabled() {
		tgClient, err := telegram.NewClient(cfg.TelegramBotToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create telegram client")
		}
		reportSvc = report.NewService(tgClient, cfg.CareTeamChatID, cfg.PDFFontPaths)
		opts = append(opts, consultation.WithNotifier(telegram.NewCareTeamNotifier(tgClient, cfg.CareTeamChatID)))
	} else {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN or CARE_TEAM_CHAT_ID is not set, care team notifications are disabled")
		reportSvc = report.NewService(nil, 0, cfg.PDFFontPaths)
	}

	// 2. Services
	repo := consultation.NewRepository()
	consultationSvc := consultation.NewService(repo, diagClient, reportSvc, opts...)
	consultationHandler := consultation.NewHandler(consultationSvc)
	adviceHandler := advice.NewHandler(advice.DefaultCatalog())

	if h := consultationSvc.Health(ctx); h.Warning != "" {
		log.Warn().Str("url", cfg.DiagnosisAPIURL).Msg(h.Warning)
	}

	// 3. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		consultation.RegisterRoutes(r, consultationHandler)
		advice.RegisterRoutes(r, adviceHandler)
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
