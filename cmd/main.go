package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/okian/fraudstream/internal/adapters/http/api"
	"github.com/okian/fraudstream/internal/adapters/http/site"
	"github.com/okian/fraudstream/internal/adapters/http/swagger"
	app "github.com/okian/fraudstream/internal/app"
	"github.com/okian/fraudstream/internal/config"
	"github.com/okian/fraudstream/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// lambdaRuntimeEnv is set by the Lambda runtime in every execution environment.
const lambdaRuntimeEnv = "AWS_LAMBDA_RUNTIME_API"

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> legacy vars -> env)
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

	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(loggerInstance.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	if useLambda(cfg.Mode, os.Getenv(lambdaRuntimeEnv)) {
		loggerInstance.Info(ctx, "starting lambda handler")
		// lambda.Start blocks for the lifetime of the execution environment.
		lambda.Start(svc.HandleFirehose)
		return
	}

	if err := serveHTTP(ctx, cfg, svc); err != nil {
		loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
		os.Exit(1)
	}
}

// useLambda reports whether the process should run as a Lambda handler.
func useLambda(mode, runtimeAPI string) bool {
	switch mode {
	case config.ModeLambda:
		return true
	case config.ModeHTTP:
		return false
	default:
		return runtimeAPI != ""
	}
}

// newMux registers the API and OpenAPI routes.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

// serveHTTP runs the HTTP entrypoint until ctx is cancelled.
func serveHTTP(ctx context.Context, cfg *config.Config, svc *app.Service) error {
	log := logger.Get()
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
