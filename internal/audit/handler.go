package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/domain"
)

// Handler records relayed orders in the structured log.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs one OrderRelayedEvent. Undecodable payloads are logged and
// skipped so a single bad message does not stall the consumer group.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderRelayedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.ErrorContext(ctx, "skipping undecodable event", "error", fmt.Errorf("unmarshal order relayed event: %w", err))
		return nil
	}

	h.logger.InfoContext(ctx, "order relayed",
		"event_id", event.EventID,
		"order_id", event.OrderID,
		"customer_name", event.CustomerName,
		"item_count", event.ItemCount,
		"total", event.Total,
		"sid", event.SID,
		"relayed_at", event.Timestamp,
	)
	return nil
}
