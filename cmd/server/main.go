package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/cmd/bootstrap"
	"github.com/LingByte/LingReception/internal/handlers"
	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/constants"
	"github.com/LingByte/LingReception/pkg/interactions"
	"github.com/LingByte/LingReception/pkg/knowledge"
	"github.com/LingByte/LingReception/pkg/llm"
	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/media"
	"github.com/LingByte/LingReception/pkg/metrics"
	"github.com/LingByte/LingReception/pkg/persona"
	"github.com/LingByte/LingReception/pkg/receptionist"
	"github.com/LingByte/LingReception/pkg/session"
	"github.com/LingByte/LingReception/pkg/speech"
	"github.com/LingByte/LingReception/pkg/twilio"
	"github.com/LingByte/LingReception/pkg/utils"
)

func main() {
	// 1. Parse Command Line Parameters
	mode := flag.String("mode", "", "running environment (development, test, production)")
	initDB := flag.Bool("init", false, "migrate the database and seed demo data")
	initSQL := flag.String("init-sql", "", "path to database init .sql script (optional)")
	addrFlag := flag.String("addr", "", "HTTP serve address, overrides PORT")
	flag.Parse()

	// 2. Set Environment Variables
	if *mode != "" {
		os.Setenv("APP_ENV", *mode)
	}

	// 3. Load Global Configuration
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	cfg := config.GlobalConfig
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	// 4. Load Log Configuration
	if err := logger.Init(&cfg.Log, cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 5. Print Banner
	p := persona.New()
	mood := p.CurrentMood()
	if err := bootstrap.PrintBannerFromFile(os.Stdout, "banner.txt", cfg.Server.Name, mood.Name, mood.Traits); err != nil {
		logger.Warn("banner unavailable", zap.Error(err))
	}

	// 6. Load Data Source
	db, err := bootstrap.SetupDatabase(os.Stdout, &bootstrap.Options{
		InitSQLPath: *initSQL,
		AutoMigrate: *initDB,
		SeedNonProd: *initDB,
	})
	if err != nil {
		logger.Error("database setup failed", zap.Error(err))
		return
	}
	logger.Info("checked config -- addr: ", zap.String("addr", cfg.Server.Addr))
	logger.Info("checked config -- db-driver: ", zap.String("db-driver", cfg.Database.Driver), zap.String("dsn", cfg.Database.DSN))
	logger.Info("checked config -- mode: ", zap.String("mode", cfg.Server.Mode))

	// 7. Initialize Global Cache
	utils.InitGlobalCache(cfg.Services.Speech.CacheSize, cfg.Services.Speech.CacheTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. Services
	llmLog := logrus.New()
	if cfg.Server.Mode == constants.ENV_DEVELOPMENT {
		llmLog.SetLevel(logrus.DebugLevel)
	}
	completions := llm.NewService(llm.DefaultConfig(), llmLog)
	if err := completions.Initialize(); err != nil && !errors.Is(err, llm.ErrNotConfigured) {
		logger.Warn("llm unavailable, using templates only", zap.Error(err))
	}

	stt, tts := speech.Providers(ctx, cfg.Services.Speech)
	var cached *speech.CachedSynthesizer
	if tts != nil {
		cached = speech.NewCachedSynthesizer(tts, utils.GlobalCache())
	}

	kb := knowledge.New(cfg.Knowledge, knowledge.NewCache(cfg.Knowledge, db), p)
	if err := kb.Init(ctx); err != nil && !errors.Is(err, knowledge.ErrNoSource) {
		logger.Warn("knowledge base unavailable", zap.Error(err))
	}
	go kb.Run(ctx)

	interactionLog := interactions.New(cfg.Interactions, db)
	defer interactionLog.Close()

	m := metrics.New("reception")
	store := session.NewStore()
	defer store.Close()

	deps := receptionist.Deps{
		Persona:      p,
		Store:        store,
		Knowledge:    kb,
		Interactions: interactionLog,
		Metrics:      m,
		DB:           db,
	}
	if completions.Available() {
		deps.LLM = completions
	}
	rec := receptionist.New(deps, receptionist.OptionsFromConfig(cfg.Persona))

	twilioClient, err := twilio.NewClient(twilio.Config{
		AccountSID:  cfg.Twilio.AccountSID,
		AuthToken:   cfg.Twilio.AuthToken,
		PhoneNumber: cfg.Twilio.PhoneNumber,
		BaseURL:     cfg.Twilio.APIBaseURL,
		Skip:        cfg.Twilio.Skip,
	})
	if err != nil {
		logger.Warn("twilio client disabled, web calling is unavailable", zap.Error(err))
	}

	var streams *media.Manager
	if cfg.Media.StreamEnabled {
		if cached == nil {
			logger.Warn("media streams enabled without a synthesizer, callers will hear silence")
		}
		var synth speech.Synthesizer
		if cached != nil {
			synth = cached
		}
		mediaCfg := media.Config{
			GreetingDelay: cfg.Media.GreetingDelay,
			FrameSize:     cfg.Media.FrameSize,
		}
		if twilioClient.Available() {
			mediaCfg.Hangup = func(ctx context.Context, callSid string) error {
				_, err := twilioClient.HangupCall(ctx, callSid)
				return err
			}
		}
		streams = media.NewManager(mediaCfg, rec, stt, synth, m)
		defer streams.Close()
	}

	// 9. HTTP
	if cfg.Server.Mode == constants.ENV_PRODUCTION {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.New(handlers.Deps{
		Config:       cfg,
		Receptionist: rec,
		Twilio:       twilioClient,
		Media:        streams,
		Knowledge:    kb,
		Interactions: interactionLog,
		Metrics:      m,
		Synthesizer:  cached,
		Transcriber:  stt,
		DB:           db,
		LLMAvailable: completions.Available(),
	}).Register(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("receptionist listening", zap.String("addr", cfg.Server.Addr), zap.String("mood", mood.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down, finally")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
