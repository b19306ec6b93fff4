package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yourusername/freelancedesk/assistant"
	"github.com/yourusername/freelancedesk/config"
	"github.com/yourusername/freelancedesk/dashboard"
	"github.com/yourusername/freelancedesk/handlers"
	"github.com/yourusername/freelancedesk/records"
	"github.com/yourusername/freelancedesk/store"
	"github.com/yourusername/freelancedesk/utils"
	"go.uber.org/zap"
)

var shutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP API on PORT using the backend selected by STORE_BACKEND.

AI mode of the assistant is enabled when OPENAI_API_KEY is set, and its
replies are cached in Redis when REDIS_URL is set.`,
	Example: `  # In-memory store, rule based assistant only
  JWT_SECRET=dev-secret freelancedesk serve

  # Postgres with Redis backed AI replies
  STORE_BACKEND=postgres DATABASE_URL=postgres://... REDIS_URL=localhost:6379 \
  OPENAI_API_KEY=sk-... freelancedesk serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "How long to wait for in-flight requests on shutdown")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	upstream, closeUpstream, err := buildUpstream()
	if err != nil {
		return err
	}
	defer closeUpstream()

	services := buildServices(st, upstream)
	router := handlers.NewRouter(cfg, services, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.AssistantTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting freelancedesk API", zap.String("port", cfg.Port), zap.String("backend", cfg.StoreBackend), zap.Bool("ai_enabled", upstream != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}

// buildUpstream returns the AI responder, or nil when no key is configured.
func buildUpstream() (assistant.Responder, func(), error) {
	if !cfg.AIEnabled() {
		log.Info("Assistant AI mode disabled, OPENAI_API_KEY not set")
		return nil, func() {}, nil
	}

	var upstream assistant.Responder = assistant.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.AssistantTimeout)

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		return nil, nil, err
	}
	if rdb == nil {
		return upstream, func() {}, nil
	}
	log.Info("Caching assistant replies in Redis", zap.Duration("ttl", cfg.AssistantCacheTTL))
	cached := assistant.NewCached(upstream, assistant.NewRedisCache(rdb), cfg.AssistantCacheTTL, log)
	return cached, func() { rdb.Close() }, nil
}

func buildServices(st *store.Store, upstream assistant.Responder) handlers.Services {
	dash := dashboard.NewService(st, log)
	return handlers.Services{
		Records:   records.NewService(st, utils.NewStellarClient(cfg.HorizonURL), records.WithLogger(log)),
		Dashboard: dash,
		Assistant: assistant.NewService(dash, upstream, log),
	}
}
