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
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gvaxx/ai-patient/internal/config"
	"github.com/gvaxx/ai-patient/internal/domain/cases"
	"github.com/gvaxx/ai-patient/internal/domain/catalog"
	"github.com/gvaxx/ai-patient/internal/domain/evaluation"
	"github.com/gvaxx/ai-patient/internal/domain/results"
	"github.com/gvaxx/ai-patient/internal/domain/session"
	"github.com/gvaxx/ai-patient/internal/platform/auth"
	"github.com/gvaxx/ai-patient/internal/platform/db"
	"github.com/gvaxx/ai-patient/internal/platform/llm"
	"github.com/gvaxx/ai-patient/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vp-server",
		Short: "Virtual patient training API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(casesCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func casesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Manage clinical cases",
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load all case files and report problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				dir = cfg.CasesDir
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			registry, err := cases.NewLoader(dir, logger).LoadAll()
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			fmt.Printf("Loaded %d case(s) from %s\n", registry.Len(), dir)
			for _, s := range registry.List() {
				fmt.Printf("  %-12s %s\n", s.CaseID, s.Title)
			}
			return nil
		},
	}
	validateCmd.Flags().String("dir", "", "Cases directory (defaults to CASES_DIR)")
	cmd.AddCommand(validateCmd)

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a learner access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("learner")
			name, _ := cmd.Flags().GetString("name")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if subject == "" {
				return fmt.Errorf("--learner is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSigningKey == "" {
				return fmt.Errorf("JWT_SIGNING_KEY is not configured")
			}

			token, err := auth.IssueToken([]byte(cfg.JWTSigningKey), subject, name, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("learner", "", "Learner identifier (token subject)")
	cmd.Flags().String("name", "", "Learner display name")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Static content: test catalog and clinical cases
	cat := catalog.Load(cfg.CatalogFile, logger)
	registry, err := cases.NewLoader(cfg.CasesDir, logger).LoadAll()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load cases")
	}
	logger.Info().
		Int("tests", cat.Len()).
		Int("cases", registry.Len()).
		Msg("content loaded")

	// Session store: Postgres when configured, memory otherwise
	ctx := context.Background()
	sessionRepo := session.NewMemoryRepo()
	var pool *pgxpool.Pool
	if cfg.HasDatabase() {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		sessionRepo = session.NewRepo(pool)
		logger.Info().Msg("connected to database")
	} else {
		logger.Warn().Msg("no DATABASE_URL, sessions are held in memory")
	}

	// Language model
	var client *llm.Client
	if cfg.HasLLM() {
		provider := llm.NewOpenRouterProvider(cfg.OpenRouterAPIKey, cfg.LLMModel, cfg.LLMBaseURL, logger)
		client = llm.NewClient(provider)
		logger.Info().Str("model", cfg.LLMModel).Msg("language model configured")
	} else {
		logger.Warn().Msg("no OPENROUTER_API_KEY, dialogue disabled and grading is lexical")
	}

	// Services
	resultsSvc := results.NewService(cat, cfg.ResultSeed, logger)
	var grader evaluation.Grader
	var responder session.Responder
	if client != nil {
		grader = client
		responder = client
	}
	evalSvc := evaluation.NewService(grader, logger)
	sessionSvc := session.NewService(sessionRepo, registry, resultsSvc, evalSvc, responder, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(90 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Learner"},
	}))
	e.Use(auth.Middleware(auth.Config{
		Mode:       cfg.AuthMode,
		SigningKey: []byte(cfg.JWTSigningKey),
	}))

	// API group
	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	cases.NewHandler(registry).RegisterRoutes(apiV1)
	results.NewHandler(resultsSvc, registry).RegisterRoutes(apiV1)
	session.NewHandler(sessionSvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/healthz/db", db.HealthHandler(pool))
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
