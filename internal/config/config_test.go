package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func requiredEnv() map[string]string {
	return map[string]string{
		"TWILIO_ACCOUNT_SID":   "AC123",
		"TWILIO_AUTH_TOKEN":    "token",
		"TWILIO_WHATSAPP_FROM": "whatsapp:+14155238886",
		"RECIPIENT_WHATSAPP":   "whatsapp:+994501234567",
	}
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := Load(envFrom(requiredEnv()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Port != "5000" {
			t.Errorf("expected port 5000, got %s", cfg.Port)
		}
		if cfg.SharedSecret != "" {
			t.Errorf("expected empty shared secret, got %q", cfg.SharedSecret)
		}
		if cfg.TwilioAPIURL != DefaultTwilioAPIURL {
			t.Errorf("expected default api url, got %s", cfg.TwilioAPIURL)
		}
		if cfg.DeliveryTimeout != 10*time.Second {
			t.Errorf("expected 10s timeout, got %s", cfg.DeliveryTimeout)
		}
		if cfg.MaxBodyBytes != 1<<20 {
			t.Errorf("expected 1MiB body limit, got %d", cfg.MaxBodyBytes)
		}
		if cfg.KafkaTopic != "order.relayed" || cfg.KafkaBrokers != nil {
			t.Errorf("unexpected kafka config %v %q", cfg.KafkaBrokers, cfg.KafkaTopic)
		}
		if !cfg.TracingEnabled {
			t.Error("expected tracing enabled by default")
		}
	})

	t.Run("reads optional values", func(t *testing.T) {
		env := requiredEnv()
		env["PORT"] = "8080"
		env["RK_SHARED_SECRET"] = "s3cret"
		env["DELIVERY_TIMEOUT"] = "3s"
		env["MAX_BODY_BYTES"] = "2048"
		env["KAFKA_BROKERS"] = "kafka-1:9092, kafka-2:9092,"
		env["OTEL_ENABLED"] = "false"

		cfg, err := Load(envFrom(env))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "8080" || cfg.SharedSecret != "s3cret" {
			t.Errorf("unexpected config %+v", cfg)
		}
		if cfg.DeliveryTimeout != 3*time.Second || cfg.MaxBodyBytes != 2048 {
			t.Errorf("unexpected limits %s %d", cfg.DeliveryTimeout, cfg.MaxBodyBytes)
		}
		if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"kafka-1:9092", "kafka-2:9092"}) {
			t.Errorf("unexpected brokers %v", cfg.KafkaBrokers)
		}
		if cfg.TracingEnabled {
			t.Error("expected tracing disabled")
		}
	})

	t.Run("reports every missing mandatory variable", func(t *testing.T) {
		_, err := Load(envFrom(map[string]string{"TWILIO_AUTH_TOKEN": "token"}))
		if !errors.Is(err, ErrMissingEnv) {
			t.Fatalf("expected ErrMissingEnv, got %v", err)
		}
		for _, key := range []string{"TWILIO_ACCOUNT_SID", "TWILIO_WHATSAPP_FROM", "RECIPIENT_WHATSAPP"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected %s in error, got %q", key, err.Error())
			}
		}
		if strings.Contains(err.Error(), "TWILIO_AUTH_TOKEN") {
			t.Errorf("did not expect TWILIO_AUTH_TOKEN in error, got %q", err.Error())
		}
	})

	t.Run("treats blank values as missing", func(t *testing.T) {
		env := requiredEnv()
		env["RECIPIENT_WHATSAPP"] = "   "
		if _, err := Load(envFrom(env)); !errors.Is(err, ErrMissingEnv) {
			t.Errorf("expected ErrMissingEnv, got %v", err)
		}
	})

	t.Run("rejects unparsable values", func(t *testing.T) {
		for key, value := range map[string]string{
			"DELIVERY_TIMEOUT": "soon",
			"MAX_BODY_BYTES":   "-1",
			"OTEL_ENABLED":     "maybe",
		} {
			env := requiredEnv()
			env[key] = value
			_, err := Load(envFrom(env))
			if err == nil || !strings.Contains(err.Error(), key) {
				t.Errorf("%s=%q: expected error naming the variable, got %v", key, value, err)
			}
		}
	})
}
