package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/audit"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/config"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/logging"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/messaging"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/telemetry"
)

func main() {
	logger := logging.New("rk-audit")

	brokers := config.SplitList(os.Getenv("KAFKA_BROKERS"))
	if len(brokers) == 0 {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = config.DefaultKafkaTopic
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "rk-audit", "0.1.0", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	consumer := messaging.NewConsumer(brokers, topic, "rk-audit")
	defer func() { _ = consumer.Close() }()

	handler := audit.NewHandler(logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting audit consumer", "brokers", brokers, "topic", topic)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
