package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
	"github.com/Gagan-341/NeuraSentinel/internal/replay"
	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL   = flag.String("url", "http://127.0.0.1:8000", "Base URL of the classifier service")
		local     = flag.Bool("local", false, "Use the in-process classifier instead of the service")
		playerID  = flag.String("player-id", replay.DefaultPlayerID, "Player ID to send in requests")
		sessionID = flag.String("session-id", replay.DefaultSessionID, "Session ID to send in requests")
		rate      = flag.Float64("sampling-rate", replay.DefaultSamplingRate, "Sampling rate in Hz used to rebuild timestamps")
		label     = flag.String("label", "", "Expected shot for files without a shot_label column")
		workers   = flag.Int("workers", replay.DefaultWorkers, "Concurrent classifier requests")
		timeout   = flag.Duration("timeout", replay.DefaultTimeout, "Per-request timeout")
		logFormat = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose   = flag.Bool("verbose", false, "Log every classified swing")
	)
	flag.Usage = func() {
		os.Stderr.WriteString("Usage: swing-replay [options] file.csv [file.csv...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	if err := logger.Init(logger.WithFormat(*logFormat), logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	var cls classifier.Classifier
	if *local {
		cls = classifier.NewLocal()
	} else {
		cls = classifier.NewHTTPClient(*baseURL, classifier.WithTimeout(*timeout))
	}

	cfg := &replay.Config{
		Files:        flag.Args(),
		PlayerID:     *playerID,
		SessionID:    *sessionID,
		SamplingRate: *rate,
		Label:        *label,
		Workers:      *workers,
		Verbose:      *verbose,
	}
	_, stats, err := replay.Run(ctx, cfg, cls, os.Stdout)
	if err != nil {
		logger.Get().Error(ctx, "replay failed", logger.Error(err))
		return 1
	}
	if stats.Failed > 0 {
		return 1
	}
	return 0
}
