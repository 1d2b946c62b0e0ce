// Command server runs the reading-assistant websocket backend: it loads
// configuration, opens the Postgres pool (running migrations), wires the
// speech/LLM adapters, and serves one duplex reading session per websocket
// connection under an authenticated gin router.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oduggan21/reading-assistant/internal/adapters/notesllm"
	"github.com/oduggan21/reading-assistant/internal/adapters/qaopenai"
	"github.com/oduggan21/reading-assistant/internal/adapters/stt/whisper"
	"github.com/oduggan21/reading-assistant/internal/adapters/titlellm"
	"github.com/oduggan21/reading-assistant/internal/adapters/tts"
	"github.com/oduggan21/reading-assistant/internal/auth"
	"github.com/oduggan21/reading-assistant/internal/config"
	"github.com/oduggan21/reading-assistant/internal/controller"
	"github.com/oduggan21/reading-assistant/internal/logger"
	"github.com/oduggan21/reading-assistant/internal/storage/pg"
	"github.com/oduggan21/reading-assistant/internal/telemetry"
	"github.com/oduggan21/reading-assistant/internal/transport"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	log := logger.New(logger.Config{
		Level:  parseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})
	log.Info("starting reading-assistant server", "instance_id", logger.GetInstanceID())

	var shutdownTelemetry func(context.Context) error
	if cfg.OTelEnabled {
		tel, shutdown, err := telemetry.Setup(cfg.OTelServiceName)
		if err != nil {
			log.Error("failed to set up telemetry, continuing without it", "error", err.Error())
		} else {
			shutdownTelemetry = shutdown
			_ = tel

			metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: promhttp.Handler()}
			go func() {
				if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("metrics server failed", "error", err.Error())
				}
			}()
		}
	}

	db, err := pg.InitDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to initialize database", "error", err.Error())
		os.Exit(1)
	}
	defer db.DB.Close()
	storageAdapter := pg.NewAdapter(db)

	var validatorJWKSURL string
	if cfg.ValidatorType == "jwks" {
		if cfg.JWTJWKSURL == "" {
			log.Error("VALIDATOR_TYPE=jwks requires JWT_JWKS_URL; refusing to start with unverified tokens")
			os.Exit(1)
		}
		validatorJWKSURL = cfg.JWTJWKSURL
	}
	tokenValidator, err := auth.NewTokenValidator(validatorJWKSURL)
	if err != nil {
		log.Error("failed to initialize token validator", "error", err.Error())
		os.Exit(1)
	}
	authMiddleware := auth.NewMiddleware(tokenValidator)

	adapters := controller.Adapters{
		Storage: storageAdapter,
		STT:     whisper.New(cfg.WhisperServerURL, cfg.SpeechTimeout),
		TTS:     tts.New(cfg.TTSServerURL, cfg.SpeechTimeout),
		QA: qaopenai.New(qaopenai.Config{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.QAModel,
			MaxRetries:   cfg.LLMMaxRetries,
			RetryBackoff: cfg.LLMRetryBackoff,
		}),
		Notes: notesllm.New(notesllm.Config{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.NoteModel,
			MaxRetries:   cfg.LLMMaxRetries,
			RetryBackoff: cfg.LLMRetryBackoff,
		}),
		Title: titlellm.New(titlellm.Config{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.TitleModel,
			MaxRetries:   cfg.LLMMaxRetries,
			RetryBackoff: cfg.LLMRetryBackoff,
		}),
	}

	gin.SetMode(cfg.GinMode)
	router := setupRouter(adapters, authMiddleware, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ServerShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err.Error())
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(ctx); err != nil {
			log.Error("telemetry shutdown failed", "error", err.Error())
		}
	}

	log.Info("shutdown complete")
}

func setupRouter(adapters controller.Adapters, authMiddleware *auth.Middleware, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authorized := router.Group("/")
	authorized.Use(authMiddleware.RequireAuth())
	authorized.GET("/ws/reading-session", transport.SessionHandler(adapters, log))

	return router
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
