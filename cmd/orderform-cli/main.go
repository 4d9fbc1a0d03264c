package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	orderform "github.com/goliatone/go-orderform"
	"github.com/goliatone/go-orderform/internal/config"
	"github.com/goliatone/go-orderform/internal/logging"
	"github.com/goliatone/go-orderform/pkg/attachments"
	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/deadline"
	"github.com/goliatone/go-orderform/pkg/pricing"
	"github.com/goliatone/go-orderform/pkg/renderers/tui"
	"github.com/goliatone/go-orderform/pkg/schema"
	"github.com/goliatone/go-orderform/pkg/submission"
)

type options struct {
	configPath string
	envPath    string
	schemaPath string
	siteURL    string
	dryRun     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Optional YAML config file")
	flag.StringVar(&opts.envPath, "env", ".env", "Optional .env file")
	flag.StringVar(&opts.schemaPath, "schema", "", "Read the form configuration from a JSON/YAML file instead of the API")
	flag.StringVar(&opts.siteURL, "site", "", "Public site URL the confirmation link is relative to")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Print the collected order instead of submitting it")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "orderform-cli: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	loadOpts := []config.Option{config.WithFile(opts.configPath), config.WithEnvFile(opts.envPath)}
	if opts.dryRun && opts.schemaPath != "" {
		loadOpts = append(loadOpts, config.WithoutValidation())
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return err
	}

	logger, err := logging.NewConsole(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var api *client.Client
	if cfg.API.BaseURL != "" {
		api, err = orderform.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout, logger.Named("client"))
		if err != nil {
			return err
		}
	}

	formCfg, err := loadFormConfig(ctx, api, opts.schemaPath)
	if err != nil {
		return err
	}

	money := pricing.NewFormatter(cfg.Display.Locale, cfg.Display.Currency)
	collector := attachments.NewCollector(
		attachments.WithLimits(cfg.Attachments.Limits()),
		attachments.WithLogger(logger.Named("attachments")),
	)
	defer func() { _ = collector.Close() }()

	driver := tui.NewSurveyDriver(os.Stderr)
	wizard, err := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithCollector(collector),
		tui.WithLeadTime(cfg.Deadline.LeadTime),
		tui.WithFormatter(money),
	)
	if err != nil {
		return err
	}

	answers, err := wizard.Collect(ctx, formCfg, tui.Answers{})
	if err != nil {
		return err
	}

	var lines []pricing.Line
	if api != nil {
		lines, err = previewPrice(ctx, api, formCfg, answers, cfg.Deadline.LeadTime, money, logger)
		if err != nil {
			fmt.Fprintf(stderr, "! Price preview unavailable: %s\n", submission.Message(err))
		}
	}
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, tui.Summary(formCfg, answers, lines))

	if opts.dryRun {
		payload, err := json.MarshalIndent(answers, "", "  ")
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, string(payload))
		return nil
	}
	if api == nil {
		return fmt.Errorf("%s is required to submit", config.EnvAPIBaseURL)
	}

	ok, err := driver.Confirm(ctx, tui.ConfirmConfig{Message: "Submit this order?", Default: true})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(stderr, "Order not submitted.")
		return nil
	}

	orders, err := submission.New(api,
		submission.WithNotifier(terminalNotifier(stderr)),
		submission.WithLogger(logger.Named("submission")),
		submission.WithLeadTime(cfg.Deadline.LeadTime),
	)
	if err != nil {
		return err
	}
	result, err := orders.Submit(ctx, submission.Request{
		Fields:          formCfg.Fields,
		Values:          answers.FormData,
		PricingTierID:   answers.PricingTierID,
		PaymentMethodID: answers.PaymentMethodID,
		Deadline:        answers.Deadline,
		CustomerNotes:   answers.CustomerNotes,
		Files:           collector.Files(),
	})
	if err != nil {
		// The notifier already printed the customer-facing message.
		return errors.New("order was not created")
	}

	if result.OrderNumber != "" {
		fmt.Fprintf(stdout, "Order number: %s\n", result.OrderNumber)
	}
	fmt.Fprintf(stdout, "Confirmation: %s\n", confirmationURL(opts.siteURL, result.RedirectURL))
	return nil
}

func loadFormConfig(ctx context.Context, api *client.Client, path string) (schema.FormConfig, error) {
	if path != "" {
		return schema.LoadFile(path)
	}
	if api == nil {
		return schema.FormConfig{}, fmt.Errorf("either -schema or %s is required", config.EnvAPIBaseURL)
	}
	return api.FormConfig(ctx)
}

func previewPrice(ctx context.Context, calc pricing.Calculator, cfg schema.FormConfig, answers tui.Answers, lead time.Duration, money pricing.Formatter, logger *zap.Logger) ([]pricing.Line, error) {
	now := time.Now()
	req := pricing.Request{FormData: answers.FormData, PricingTierID: answers.PricingTierID}
	if resolved, err := deadline.Resolve(answers.Deadline, now, lead); err == nil {
		req.DeadlineHours = deadline.HoursUntil(resolved, now)
	}
	quoter := pricing.NewQuoter(calc, pricing.WithQuoterLogger(logger.Named("pricing")))
	breakdown, err := quoter.Quote(ctx, req)
	if err != nil {
		return nil, err
	}
	return money.Lines(pricing.Preview(breakdown, cfg.Fields, answers.FormData)), nil
}

func terminalNotifier(w io.Writer) submission.Notifier {
	return submission.NotifierFunc(func(_ context.Context, notice submission.Notice) {
		prefix := "✓ "
		switch notice.Level {
		case submission.LevelWarning:
			prefix = "! "
		case submission.LevelError:
			prefix = "✗ "
		}
		fmt.Fprintln(w, prefix+notice.Message)
	})
}

func confirmationURL(site, redirect string) string {
	site = strings.TrimRight(strings.TrimSpace(site), "/")
	if site == "" {
		return redirect
	}
	return site + redirect
}
