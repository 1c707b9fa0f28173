package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestHandler_Handle(t *testing.T) {
	t.Run("logs relayed order", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

		payload := `{"event_id":"evt-1","order_id":"A1","customer_name":"Elvin","item_count":1,"total":"20","sid":"SM0001","timestamp":"2024-01-01T12:00:00Z"}`
		if err := handler.Handle(context.Background(), []byte(payload)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("failed to decode log line: %v", err)
		}
		if line["msg"] != "order relayed" || line["order_id"] != "A1" || line["sid"] != "SM0001" {
			t.Errorf("unexpected log line %v", line)
		}
	})

	t.Run("skips undecodable payloads", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewHandler(slog.New(slog.NewJSONHandler(&buf, nil)))

		if err := handler.Handle(context.Background(), []byte(`{`)); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if !strings.Contains(buf.String(), "skipping undecodable event") {
			t.Errorf("expected error log, got %q", buf.String())
		}
	})
}
