package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/config"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/delivery"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/logging"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/messaging"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/relay"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/telemetry"
)

const (
	serviceName    = "rk-relay"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := logging.New(serviceName)

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = shutdownTracer(ctx) }()
	}

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter provider", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

	relayMetrics, err := telemetry.NewRelayMetrics()
	if err != nil {
		logger.Error("failed to create relay metrics", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout:   cfg.DeliveryTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	sender := delivery.NewClient(cfg.TwilioAPIURL, cfg.AccountSID, cfg.AuthToken, cfg.DeliveryTimeout, httpClient)

	opts := []relay.Option{relay.WithMetrics(relayMetrics)}
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = producer.Close() }()
		opts = append(opts, relay.WithPublisher(producer))
		logger.Info("publishing relayed orders", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	handler := relay.NewHandler(&cfg, sender, logger, opts...)
	mux := relay.NewRouter(handler, metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(relay.RequestLogger(logger)(mux), serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.DeliveryTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("starting relay service", "port", cfg.Port, "signature_check", cfg.SharedSecret != "")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
