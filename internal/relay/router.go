package relay

import (
	"net/http"

	"github.com/joao-fontenele/rkeeper-whatsapp-relay/internal/telemetry"
)

// NewRouter mounts the relay endpoints. metrics may be nil.
func NewRouter(h *Handler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", telemetry.WithHTTPRoute(HandleIndex))
	mux.HandleFunc("POST /rk", telemetry.WithHTTPRoute(h.HandleWebhook))
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}
