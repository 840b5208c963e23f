package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/adapters/http/api"
	"github.com/kankokujin/kankokujin-no-map/internal/adapters/http/site"
	"github.com/kankokujin/kankokujin-no-map/internal/adapters/http/swagger"
	"github.com/kankokujin/kankokujin-no-map/internal/adapters/repository"
	app "github.com/kankokujin/kankokujin-no-map/internal/app"
	"github.com/kankokujin/kankokujin-no-map/internal/config"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/sorting"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
	"github.com/kankokujin/kankokujin-no-map/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store := repository.NewFileStore(cfg.DataFile, cfg.StateFile)
	svc := app.New(store,
		app.WithLogger(loggerInstance.Named("catalog")),
		app.WithCollator(sorting.NewCollator(sorting.ParseLocale(cfg.CollationLocale))),
		app.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
	)
	// A failed first load leaves the service answering 503 until the data
	// file is fixed and reloaded.
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "initial catalog load failed", logger.Error(err))
	}

	if cfg.WatchDataFile {
		go watchDataFile(ctx, cfg.DataFile, svc, loggerInstance)
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes, relative to the base path.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, cfg.DataFile, api.WithLogger(loggerInstance.Named("http"))).Register(ctx, mux)
	site.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mount(cfg.BasePath, mux),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("base_path", cfg.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(context.Background(), "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(shutdownCtx, "server stopped")
}

// mount serves h beneath base. The bare base path redirects to base + "/"
// so relative links in the page resolve under it.
func mount(base string, h http.Handler) http.Handler {
	if base == "" {
		return h
	}
	outer := http.NewServeMux()
	outer.Handle(base+"/", http.StripPrefix(base, h))
	outer.Handle(base, http.RedirectHandler(base+"/", http.StatusMovedPermanently))
	return outer
}

// watchDataFile reloads the catalog whenever the data file is replaced.
func watchDataFile(ctx context.Context, path string, svc *app.Service, log logger.Logger) {
	err := repository.Watch(ctx, path, repository.DefaultSettle, func() {
		log.Info(ctx, "data file changed, reloading", logger.String("path", path))
		_ = svc.Reload(ctx)
	})
	if err != nil {
		log.Warn(ctx, "data file watch disabled", logger.Error(err))
	}
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
			metrics.CollectSystem()
		}
	}
}
