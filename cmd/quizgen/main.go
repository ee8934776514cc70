package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/quizgen/internal/handler"
	appI18n "github.com/pavelanni/quizgen/internal/i18n"
	"github.com/pavelanni/quizgen/internal/llm"
	"github.com/pavelanni/quizgen/internal/metrics"
	"github.com/pavelanni/quizgen/internal/workflow"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quizgen",
		Short:        "Multiple-choice exam generator and grader powered by LLMs",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), gradeCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `quizgen --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP exam service",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8000", "HTTP listen address")
	f.StringP("lang", "l", "en", "Default response language (en, ru)")
	f.StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins (repeatable)")
	f.Bool("llm-check", false, "Verify the LLM endpoint before serving")
	f.Duration("llm-timeout", 0, "Per-request limit for LLM work (0 = none)")
	addLLMFlags(f)
	addLogFlags(f)
	return cmd
}

func addLLMFlags(f *pflag.FlagSet) {
	f.String("llm-provider", "openai", "Text generation provider (openai, gemini)")
	f.String("llm-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "", "API key for the LLM provider (falls back to OPENAI_API_KEY or GEMINI_API_KEY)")
	f.String("llm-model", "", "Model name (default gpt-4 for openai, gemini-1.5-flash for gemini)")
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(v *viper.Viper) {
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, v.GetString("log-level"), v.GetString("log-format"))))
}

// newLogHandler builds a text or JSON handler. Unknown levels fall back to
// info; slog level syntax such as "warn" or "debug+2" is accepted.
func newLogHandler(w io.Writer, level, format string) slog.Handler {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizgen")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizgen")
	v.AddConfigPath("/etc/quizgen")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

type pinger interface {
	Ping(ctx context.Context) error
}

// newGenerator builds the configured text generator. The returned close
// function releases provider resources and is never nil.
func newGenerator(ctx context.Context, v *viper.Viper, check bool) (llm.TextGenerator, func(), error) {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("llm-provider")))
	key := v.GetString("llm-key")
	modelName := v.GetString("llm-model")

	var (
		gen     llm.TextGenerator
		closeFn = func() {}
	)
	switch provider {
	case "openai":
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if modelName == "" {
			modelName = "gpt-4"
		}
		gen = llm.NewOpenAI(v.GetString("llm-url"), key, modelName)
	case "gemini":
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		if modelName == "" {
			modelName = "gemini-1.5-flash"
		}
		g, err := llm.NewGemini(ctx, key, modelName)
		if err != nil {
			return nil, nil, err
		}
		gen = g
		closeFn = func() {
			if err := g.Close(); err != nil {
				slog.Warn("close gemini client", "error", err)
			}
		}
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q (want openai or gemini)", provider)
	}

	if key == "" {
		slog.Warn("no LLM API key configured; generation and certificates will fail", "provider", provider)
	}

	if check {
		p, ok := gen.(pinger)
		if !ok {
			slog.Warn("LLM health check not supported by provider", "provider", provider)
		} else if err := p.Ping(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("LLM health check: %w", err)
		} else {
			slog.Info("LLM endpoint OK", "provider", provider, "model", modelName)
		}
	}

	return llm.Instrument(gen, provider), closeFn, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	v := viperForCmd(cmd)
	setupLogging(v)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	gen, closeGen, err := newGenerator(ctx, v, v.GetBool("llm-check"))
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}
	defer closeGen()

	h := handler.New(workflow.New(gen), handler.Config{
		LLMTimeout: v.GetDuration("llm-timeout"),
		Version:    version,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: v.GetStringSlice("cors-origins"),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(appI18n.Middleware())
	h.Routes(r)

	srv := &http.Server{
		Addr:              v.GetString("addr"),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", srv.Addr,
			"provider", v.GetString("llm-provider"),
			"model", v.GetString("llm-model"),
			"lang", lang,
			"languages", appI18n.Languages(),
			"llm_timeout", v.GetDuration("llm-timeout"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
