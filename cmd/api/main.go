// Command api runs the HTTP server that triggers comparison runs and streams
// their progress.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.temporal.io/sdk/client"

	"github.com/contract-parity/parity-go/internal/annotate"
	"github.com/contract-parity/parity-go/internal/api"
	"github.com/contract-parity/parity-go/internal/config"
	awsauth "github.com/contract-parity/parity-go/internal/connectors/aws"
	"github.com/contract-parity/parity-go/internal/connectors/aws/codedeploy"
	"github.com/contract-parity/parity-go/internal/fetch"
	"github.com/contract-parity/parity-go/internal/observability"
	"github.com/contract-parity/parity-go/internal/parity"
	"github.com/contract-parity/parity-go/internal/store"
	"github.com/contract-parity/parity-go/internal/stream"
	"github.com/contract-parity/parity-go/internal/temporal/querier"
	"github.com/contract-parity/parity-go/internal/testutil"
)

const (
	maxStoredRuns  = 100
	streamBuffer   = 64
	shutdownGrace  = 10 * time.Second
	deployLookback = 24 * time.Hour
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled() {
		shutdown, err := observability.InitTracer(ctx, "parity-api", cfg.OTelEndpoint)
		if err != nil {
			logger.Error("otel init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	doc, err := config.LoadEndpointsFile(cfg.EndpointsFile)
	if err != nil {
		logger.Error("load endpoints", "error", err)
		os.Exit(1)
	}

	var fetcher parity.Fetcher
	switch cfg.Mode {
	case config.ModeProduction:
		fetcher = fetch.New(fetch.Options{
			Timeout:   cfg.HTTPTimeout,
			RPS:       cfg.FetchRPS,
			Burst:     cfg.FetchBurst,
			UserAgent: "parity-api",
			Tokens: map[string]string{
				cfg.EnvA.Name: cfg.EnvA.Token,
				cfg.EnvB.Name: cfg.EnvB.Token,
			},
		})
	default: // stub mode
		fixturesDir := cfg.FixturesDir
		if fixturesDir == "" {
			fixturesDir = testutil.GoldenDir()
		}
		fetcher = &testutil.StubFetcher{FixturesDir: fixturesDir}
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Warn("metrics init failed", "error", err)
	}

	opts := api.Options{
		Fetcher:     fetcher,
		Store:       store.NewRunStore(maxStoredRuns),
		Streamer:    stream.NewStreamer(streamBuffer),
		Metrics:     metrics,
		EnvA:        parity.Environment{Name: cfg.EnvA.Name, BaseURL: cfg.EnvA.BaseURL},
		EnvB:        parity.Environment{Name: cfg.EnvB.Name, BaseURL: cfg.EnvB.BaseURL},
		Ignore:      cfg.IgnoreFields,
		CORSOrigins: cfg.CORSOrigins,
		OIDC: api.OIDCConfig{
			IssuerURL: cfg.OIDCIssuer,
			Audience:  cfg.OIDCAudience,
			Enabled:   cfg.OIDCEnabled(),
		},
	}
	opts.Annotator = newAnnotator(ctx, cfg, logger)

	if cfg.TemporalEnabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.TemporalHostPort,
			Namespace: cfg.TemporalNamespace,
			Logger:    observability.NewTemporalSlogAdapter(logger),
		})
		if err != nil {
			logger.Error("unable to create Temporal client", "error", err)
			os.Exit(1)
		}
		defer tc.Close()
		opts.Sweeps = querier.New(tc)
	}

	srv, err := api.New(ctx, doc, opts)
	if err != nil {
		logger.Error("server init failed", "error", err)
		os.Exit(1)
	}

	watcher, err := config.NewWatcher(cfg.EndpointsFile, logger, srv.SetDocument)
	if err != nil {
		logger.Warn("endpoints watcher unavailable", "error", err)
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("endpoints watcher failed to start", "error", err)
	} else {
		defer watcher.Stop()
	}

	var handler http.Handler = srv
	if cfg.OTelEnabled() {
		handler = otelhttp.NewHandler(handler, "parity-api")
	}

	httpSrv := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server",
			"addr", httpSrv.Addr, "mode", cfg.Mode, "oidc_enabled", opts.OIDC.Enabled)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

// newAnnotator wires deploy annotation when CodeDeploy applications are
// configured. Returns nil otherwise; runs then complete without annotations.
func newAnnotator(ctx context.Context, cfg config.Config, logger *slog.Logger) *annotate.Annotator {
	if cfg.CodeDeployAppA == "" && cfg.CodeDeployAppB == "" {
		return nil
	}
	awsCfg, err := awsauth.NewAWSConfig(ctx, cfg.AWSRegion, cfg.AWSProfile, cfg.CrossAccountRole)
	if err != nil {
		logger.Warn("aws config failed, deploy annotation disabled", "error", err)
		return nil
	}
	apps := map[string]string{}
	if cfg.CodeDeployAppA != "" {
		apps[cfg.EnvA.Name] = cfg.CodeDeployAppA
	}
	if cfg.CodeDeployAppB != "" {
		apps[cfg.EnvB.Name] = cfg.CodeDeployAppB
	}
	return annotate.New(codedeploy.New(awsCfg), apps, deployLookback, logger)
}
