package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrMissingEnv = errors.New("environment variable is required")

const (
	DefaultPort            = "5000"
	DefaultTwilioAPIURL    = "https://api.twilio.com"
	DefaultDeliveryTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultKafkaTopic      = "order.relayed"
)

// Config is built once at startup and passed to the components that need it.
type Config struct {
	Port string

	AccountSID   string
	AuthToken    string
	From         string
	Recipient    string
	SharedSecret string

	TwilioAPIURL    string
	DeliveryTimeout time.Duration
	MaxBodyBytes    int64

	KafkaBrokers []string
	KafkaTopic   string

	OTLPEndpoint   string
	TracingEnabled bool
}

// Load reads the relay configuration through getenv, usually os.Getenv.
// Every missing mandatory variable and every unparsable value is reported.
func Load(getenv func(string) string) (Config, error) {
	get := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	cfg := Config{
		Port:            get("PORT"),
		AccountSID:      get("TWILIO_ACCOUNT_SID"),
		AuthToken:       get("TWILIO_AUTH_TOKEN"),
		From:            get("TWILIO_WHATSAPP_FROM"),
		Recipient:       get("RECIPIENT_WHATSAPP"),
		SharedSecret:    getenv("RK_SHARED_SECRET"),
		TwilioAPIURL:    get("TWILIO_API_URL"),
		DeliveryTimeout: DefaultDeliveryTimeout,
		MaxBodyBytes:    DefaultMaxBodyBytes,
		KafkaTopic:      get("KAFKA_TOPIC"),
		OTLPEndpoint:    get("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TracingEnabled:  true,
	}

	var errs []error
	for _, req := range []struct{ key, value string }{
		{"TWILIO_ACCOUNT_SID", cfg.AccountSID},
		{"TWILIO_AUTH_TOKEN", cfg.AuthToken},
		{"TWILIO_WHATSAPP_FROM", cfg.From},
		{"RECIPIENT_WHATSAPP", cfg.Recipient},
	} {
		if req.value == "" {
			errs = append(errs, fmt.Errorf("%s: %w", req.key, ErrMissingEnv))
		}
	}

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.TwilioAPIURL == "" {
		cfg.TwilioAPIURL = DefaultTwilioAPIURL
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = DefaultKafkaTopic
	}

	if v := get("DELIVERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("DELIVERY_TIMEOUT: invalid duration %q", v))
		} else {
			cfg.DeliveryTimeout = d
		}
	}

	if v := get("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("MAX_BODY_BYTES: invalid size %q", v))
		} else {
			cfg.MaxBodyBytes = n
		}
	}

	if v := get("OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("OTEL_ENABLED: invalid boolean %q", v))
		} else {
			cfg.TracingEnabled = enabled
		}
	}

	cfg.KafkaBrokers = SplitList(get("KAFKA_BROKERS"))

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// SplitList splits a comma-separated value, dropping blank entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
