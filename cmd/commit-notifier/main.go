package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/sungwon/commit-notifier/internal/changelog"
	"github.com/sungwon/commit-notifier/internal/config"
	"github.com/sungwon/commit-notifier/internal/delivery"
	"github.com/sungwon/commit-notifier/internal/logger"
	"github.com/sungwon/commit-notifier/internal/metrics"
	"github.com/sungwon/commit-notifier/internal/wecom"
)

const exitConfigError = 3

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("commit-notifier", pflag.ContinueOnError)
	configPath := fs.String("config", "config", "config directory or YAML file")
	fs.String("repo", "", "git repository to report on (default: working directory)")
	fs.Int("count", 0, "number of recent commits to send (default 5)")
	fs.String("label", "", "project label in the message header (default: repository name)")
	fs.String("log-level", "", "log level override")
	dryRun := fs.Bool("dry-run", false, "print the message instead of sending it")
	check := fs.Bool("check", false, "only verify that an access token can be obtained")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return delivery.ExitOK
		}
		return exitConfigError
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return exitConfigError
	}

	log := logger.NewFromConfig(cfg.LoggerSettings())

	if !*dryRun {
		if err := cfg.Validate(); err != nil {
			log.Error().Err(err).Msg("invalid configuration")
			return exitConfigError
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithCorrelationID(ctx, logger.NewCorrelationID())

	wc := cfg.WeComSettings()
	if *check {
		return checkCredentials(ctx, wc, log)
	}

	var sender wecom.Sender
	if *dryRun {
		sender = wecom.NewStdoutSink()
	} else {
		d, err := wecom.NewFromConfig(wc, log)
		if err != nil {
			log.Error().Err(err).Msg("failed to create dispatcher")
			return exitConfigError
		}
		sender = d
	}

	collector := changelog.NewCollector(cfg.Repo.Path, log)
	svc := delivery.NewService(collector, sender, log)

	result, err := svc.Run(ctx, &delivery.Request{
		Count:     cfg.Repo.Count,
		Label:     cfg.Repo.Label,
		Recipient: wc.Recipient(),
	})

	if cfg.Metrics.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := metrics.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, cfg.Repo.Label); err != nil {
			log.Warn().Err(err).Msg("failed to push metrics")
		}
		cancel()
	}

	return delivery.ExitCode(result, err)
}

func checkCredentials(ctx context.Context, wc wecom.Config, log zerolog.Logger) int {
	if err := wc.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return exitConfigError
	}

	tokens := wecom.NewCredentialProvider(wc.Credentials(), wc.Endpoint, wecom.NewHTTPClient(wc.Timeout), log)
	if _, err := tokens.AcquireToken(ctx); err != nil {
		log.Error().Err(err).Msg("credential check failed")
		return delivery.ExitDeliveryFailed
	}

	log.Info().Str("corp_id", wc.CorpID).Msg("credential check passed")
	return delivery.ExitOK
}
