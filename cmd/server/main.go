// Command server runs the OpenAI-compatible gateway as a standalone HTTP
// service in front of a SageMaker text-generation endpoint.
//
// Configuration is layered: defaults, an optional YAML file, then
// environment variables:
//
//	SAGEMAKER_ENDPOINT_NAME - SageMaker endpoint to invoke (also the model ID)
//	AWS_REGION              - AWS region (default: eu-north-1)
//	GATEWAY_PORT            - Listen port (default: 8080)
//	GATEWAY_BACKEND         - "sagemaker" or "local" (default: sagemaker)
//	GATEWAY_LOCAL_URL       - Container base URL for the local backend
//	GATEWAY_CONFIG          - Path to a YAML config file
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend/local"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/backend/sagemaker"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/config"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/gateway"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/observability"
	"github.com/oriolrius/sagemaker-distilgpt2-endpoint/pkg/transport"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// A .env file is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	invoker, err := newInvoker(cfg)
	if err != nil {
		return fmt.Errorf("creating backend: %w", err)
	}
	defer invoker.Close()
	invoker = observability.InstrumentInvoker(invoker)

	gw := gateway.New(invoker, cfg.Backend.Endpoint)
	adapter := transport.NewAdapter(gw, []transport.Middleware{
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(slog.Default()),
		observability.Metrics(),
	}, transport.WithMaxBodySize(cfg.Server.MaxBodySize))

	mux := http.NewServeMux()
	mux.Handle("/", adapter)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     mux,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout must cover an entire SSE stream, not a single
		// response write.
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"port", cfg.Server.Port,
			"backend", cfg.Backend.Type,
			"endpoint", cfg.Backend.Endpoint,
			"region", cfg.Backend.Region)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func newInvoker(cfg *config.Config) (backend.Invoker, error) {
	switch cfg.Backend.Type {
	case "local":
		return local.New(local.Config{
			BaseURL: cfg.Backend.LocalURL,
			Timeout: cfg.Backend.Timeout,
		})
	default:
		return sagemaker.New(sagemaker.Config{
			EndpointName: cfg.Backend.Endpoint,
			Region:       cfg.Backend.Region,
		}), nil
	}
}
