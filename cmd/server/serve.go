package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soaringjerry/stylus/internal/api"
	"github.com/soaringjerry/stylus/internal/config"
	"github.com/soaringjerry/stylus/internal/middleware"
	"github.com/soaringjerry/stylus/internal/services"
	"github.com/soaringjerry/stylus/internal/utils"
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	var client services.ChatCompleter
	if cfg.OpenAI.APIKey != "" {
		client = services.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
	} else {
		logger.Warn("OPENAI_API_KEY is not set; AI routes will fail")
	}
	ai := services.NewAIService(client, cfg.OpenAI.Model, logger.Named("ai"))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(cfg, store, ai, reg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("stylus server listening",
			zap.String("addr", cfg.Addr),
			zap.String("api_prefix", cfg.APIPrefix),
			zap.String("store", cfg.Store),
			zap.String("commit", cfg.Commit),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var result *multierror.Error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("shutdown http server: %w", err))
		}
		if err := store.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close store: %w", err))
		}
		return result.ErrorOrNil()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// newHandler assembles routes, operational endpoints, the frontend and the
// middleware chain.
func newHandler(c config.Config, store api.Store, ai api.AIProxy, reg *prometheus.Registry, log *zap.Logger) http.Handler {
	router := api.NewRouter(store, ai,
		api.WithPrefix(c.APIPrefix),
		api.WithLogger(log.Named("api")),
		api.WithMaxBodyBytes(c.MaxBodyBytes),
	)

	mux := http.NewServeMux()
	router.Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		locale := middleware.LocaleFromContext(r.Context())
		writeJSON(w, map[string]any{
			"ok":         true,
			"name":       "Stylus API",
			"locale":     locale,
			"msg":        utils.T(locale, "health.ok"),
			"store":      c.Store,
			"commit":     c.Commit,
			"build_time": c.BuildTime,
		})
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"commit":     c.Commit,
			"build_time": c.BuildTime,
		})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mountFrontend(mux, c, log)

	metrics := middleware.NewMetrics(reg)
	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.AccessLog(log.Named("http")),
		metrics.Middleware(router.RouteLabel),
		middleware.Recover(log),
		middleware.SecureHeaders,
		middleware.NoStore,
		middleware.CORS,
		middleware.Locale,
	)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
