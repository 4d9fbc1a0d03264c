package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	orderform "github.com/goliatone/go-orderform"
	"github.com/goliatone/go-orderform/internal/config"
	"github.com/goliatone/go-orderform/internal/logging"
	"github.com/goliatone/go-orderform/internal/webapp"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
)

func main() {
	var (
		configFlag = flag.String("config", "", "Optional YAML config file")
		envFlag    = flag.String("env", ".env", "Optional .env file")
		graceFlag  = flag.Duration("grace", 10*time.Second, "Shutdown grace period")
	)
	flag.Parse()

	if err := run(*configFlag, *envFlag, *graceFlag); err != nil {
		fmt.Fprintf(os.Stderr, "orderform-web: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, envPath string, grace time.Duration) error {
	cfg, err := config.Load(config.WithFile(configPath), config.WithEnvFile(envPath))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	api, err := orderform.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout, logger.Named("client"))
	if err != nil {
		return err
	}

	selector := orderform.NewThemeSelector(orderform.DefaultThemeManifest())
	themeCfg, err := orderform.ResolveTheme(selector, cfg.Display.Theme, cfg.Display.Variant)
	if err != nil {
		return err
	}

	money := pricing.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
	html, err := orderform.NewHTMLRenderer(money, themeCfg, vanilla.WithStylesheets(orderform.StylesheetPath))
	if err != nil {
		return err
	}
	registry, err := orderform.NewRegistry(html)
	if err != nil {
		return err
	}

	app, err := webapp.New(api,
		webapp.WithLogger(logger.Named("webapp")),
		webapp.WithRenderers(registry, html.Name()),
		webapp.WithFormatter(money),
		webapp.WithLimits(cfg.Attachments.Limits()),
		webapp.WithLeadTime(cfg.Deadline.LeadTime),
		webapp.WithSessionTTL(cfg.Server.SessionTTL),
		webapp.WithRequestTimeout(cfg.Server.WriteTimeout),
		webapp.WithAssets(orderform.AssetsFS()),
	)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Routes(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("api", cfg.API.BaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
