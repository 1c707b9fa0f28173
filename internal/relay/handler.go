package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/config"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/domain"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/message"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/payload"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/signature"
	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/telemetry"
)

const LivenessText = "R-Keeper -> WhatsApp webhook running."

type Sender interface {
	Send(ctx context.Context, msg domain.OutboundMessage) (string, error)
}

type Publisher interface {
	PublishOrderRelayed(ctx context.Context, event domain.OrderRelayedEvent) error
}

type Handler struct {
	sender       Sender
	publisher    Publisher
	metrics      *telemetry.RelayMetrics
	logger       *slog.Logger
	secret       string
	from         string
	to           string
	maxBodyBytes int64
	now          func() time.Time
}

type Option func(*Handler)

// WithPublisher publishes an OrderRelayedEvent after every successful delivery.
func WithPublisher(p Publisher) Option {
	return func(h *Handler) {
		h.publisher = p
	}
}

func WithMetrics(m *telemetry.RelayMetrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func NewHandler(cfg *config.Config, sender Sender, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		sender:       sender,
		logger:       logger,
		secret:       cfg.SharedSecret,
		from:         cfg.From,
		to:           cfg.Recipient,
		maxBodyBytes: cfg.MaxBodyBytes,
		now:          time.Now,
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = config.DefaultMaxBodyBytes
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

type deliveryResponse struct {
	OK    bool   `json:"ok"`
	SID   string `json:"sid,omitempty"`
	Error string `json:"error,omitempty"`
}

// HandleWebhook verifies, normalizes, formats and delivers one order
// notification.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := RequestIDFromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.metrics.RecordWebhook(ctx, telemetry.OutcomeBodyTooLarge)
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.logger.Warn("failed to read request body", "error", err, "request_id", requestID)
		h.metrics.RecordWebhook(ctx, telemetry.OutcomeMalformedBody)
		h.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if !signature.Verify(body, r.Header.Get(signature.Header), h.secret) {
		h.logger.Warn("rejected webhook with invalid signature", "request_id", requestID)
		h.metrics.RecordWebhook(ctx, telemetry.OutcomeInvalidSignature)
		h.writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	obj, err := payload.Decode(body)
	if err != nil {
		h.logger.Warn("rejected malformed webhook body", "error", err, "request_id", requestID)
		h.metrics.RecordWebhook(ctx, telemetry.OutcomeMalformedBody)
		msg := "invalid JSON"
		if errors.Is(err, payload.ErrNotObject) {
			msg = err.Error()
		}
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	order := payload.Normalize(obj)
	now := h.now()
	text := message.Format(order, now)

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.item_count", len(order.Items)),
	)

	start := time.Now()
	sid, err := h.sender.Send(ctx, domain.OutboundMessage{Body: text, From: h.from, To: h.to})
	h.metrics.RecordDelivery(ctx, time.Since(start), err == nil)
	if err != nil {
		h.logger.Error("failed to deliver order notification", "error", err, "order_id", order.ID, "request_id", requestID)
		h.metrics.RecordWebhook(ctx, telemetry.OutcomeDeliveryFailed)
		h.writeJSON(w, http.StatusInternalServerError, deliveryResponse{OK: false, Error: err.Error()})
		return
	}

	h.publishRelayed(ctx, order, sid, now)

	h.logger.Info("order notification delivered", "order_id", order.ID, "sid", sid, "items", len(order.Items), "request_id", requestID)
	h.metrics.RecordWebhook(ctx, telemetry.OutcomeDelivered)
	h.writeJSON(w, http.StatusOK, deliveryResponse{OK: true, SID: sid})
}

func (h *Handler) publishRelayed(ctx context.Context, order domain.Order, sid string, now time.Time) {
	if h.publisher == nil {
		return
	}

	event := domain.OrderRelayedEvent{
		EventID:      uuid.NewString(),
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		ItemCount:    len(order.Items),
		Total:        order.Total,
		SID:          sid,
		Timestamp:    now.UTC(),
	}
	if err := h.publisher.PublishOrderRelayed(ctx, event); err != nil {
		h.logger.Error("failed to publish order relayed event", "error", err, "order_id", order.ID, "sid", sid)
	}
}

// HandleIndex answers the liveness probe.
func HandleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, LivenessText)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
