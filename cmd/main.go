package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Gagan-341/NeuraSentinel/internal/adapters/classifier"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/dataset"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/http/api"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/http/feedback"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/http/swagger"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/mq/queue"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/mq/worker"
	"github.com/Gagan-341/NeuraSentinel/internal/adapters/source"
	service "github.com/Gagan-341/NeuraSentinel/internal/app"
	"github.com/Gagan-341/NeuraSentinel/internal/config"
	"github.com/Gagan-341/NeuraSentinel/internal/domain/detector"
	"github.com/Gagan-341/NeuraSentinel/pkg/logger"
	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Coaching output: queue -> single worker -> log + websocket hub.
	hub := feedback.NewHub()
	go hub.Run(ctx)

	emissions := queue.NewInMemoryQueue(queue.WithCapacity(cfg.EmissionQueueSize))
	defer func() { _ = emissions.Close() }()
	emitter := worker.NewInMemoryWorker(emissions,
		worker.WithName("coaching"),
		worker.WithLogger(loggerInstance),
		worker.WithWordDuration(cfg.WordDuration()),
		worker.WithSinks(worker.LogSink(loggerInstance.Named("coach")), hub),
	)
	go emitter.Run(ctx)

	cls := newClassifier(cfg)
	svc, err := service.New(cls, emissions, serviceOptions(cfg, loggerInstance, hub)...)
	if err != nil {
		loggerInstance.Error(ctx, "failed to create service", logger.Error(err))
		return
	}
	if cfg.AutoStart {
		if _, err := svc.Start(ctx); err != nil {
			loggerInstance.Error(ctx, "failed to start session", logger.Error(err))
			return
		}
	}
	defer svc.Stop(context.WithoutCancel(ctx))

	startSources(ctx, cfg, svc, loggerInstance)

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, emissions, cfg.EmissionQueueSize)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc,
		api.WithFeedback(hub),
		api.WithDatasetLabel(cfg.DatasetLabel),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if n := emissions.Drain(); n > 0 {
		loggerInstance.Info(ctx, "dropped pending coaching messages", logger.Int("count", n))
	}
	if err := emitter.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Warn(ctx, "coaching worker shutdown failed", logger.Error(err))
	}
	svc.Wait()

	loggerInstance.Info(ctx, "server stopped")
}

// newClassifier picks the remote classifier or the in-process one.
func newClassifier(cfg *config.Config) classifier.Classifier {
	if cfg.ClassifierMode == config.ClassifierLocal {
		lo, hi := cfg.LocalLatency()
		return classifier.NewLocal(classifier.WithLatencyRange(lo, hi))
	}
	return classifier.NewHTTPClient(cfg.ClassifierURL, classifier.WithTimeout(cfg.ClassifierTimeout()))
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config, l logger.Logger, pub service.Publisher) []service.Option {
	opts := []service.Option{
		service.WithLogger(l.Named("service")),
		service.WithPlayer(cfg.PlayerID),
		service.WithSourceName(cfg.SourceName),
		service.WithTargetShot(cfg.TargetShot),
		service.WithSamplingRate(cfg.SamplingRateHz),
		service.WithBufferCapacity(cfg.BufferCapacity),
		service.WithDetectorOptions(
			detector.WithThreshold(cfg.SwingThreshold),
			detector.WithCooldown(cfg.SwingCooldown()),
			detector.WithWindow(cfg.WindowPre, cfg.WindowPost),
			detector.WithMinSamples(cfg.MinSamples),
			detector.WithDeferredPostWindow(cfg.DeferPostWindow),
		),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithCoachingCooldown(cfg.CoachingCooldown()),
		service.WithCoachingMinSwings(cfg.CoachingMinSwings),
		service.WithHistoryLimit(cfg.HistoryLimit),
	}
	if pub != nil {
		opts = append(opts, service.WithPublisher(pub))
	}
	if cfg.PollEnabled {
		opts = append(opts, service.WithPolling(cfg.PollInterval()))
	}
	if cfg.DatasetWindowSize > 0 {
		opts = append(opts, service.WithRecorder(dataset.NewRecorder(cfg.DatasetWindowSize)))
	}
	return opts
}

// startSources launches the configured sample sources. Each pushes into
// the service until ctx is done.
func startSources(ctx context.Context, cfg *config.Config, svc *service.Service, l logger.Logger) []source.Source {
	var sources []source.Source
	if cfg.UDPAddr != "" {
		sources = append(sources, source.NewUDP(cfg.UDPAddr))
	}
	if cfg.SerialPort != "" {
		port, err := source.OpenSerial(cfg.SerialPort, cfg.SerialBaud)
		if err != nil {
			l.Error(ctx, "serial source disabled", logger.String("port", cfg.SerialPort), logger.Error(err))
		} else {
			sources = append(sources, source.NewSerial(port))
		}
	}

	push := svc.PushFunc(ctx)
	for _, src := range sources {
		svc.OnStart(src.Reset)
		go func(src source.Source) {
			if err := src.Run(ctx, push); err != nil {
				l.Error(ctx, "sample source stopped", logger.String("source", src.Name()), logger.Error(err))
			}
		}(src)
	}
	return sources
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// queueLen is the part of the emission queue the metrics updater reads.
type queueLen interface {
	Len(ctx context.Context) int
}

// startServiceMetricsUpdater periodically publishes the emission queue depth.
func startServiceMetricsUpdater(ctx context.Context, q queueLen, capacity int) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, q, capacity)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(ctx context.Context, q queueLen, capacity int) {
	metrics.UpdateQueueSize(q.Len(ctx), capacity)
}
