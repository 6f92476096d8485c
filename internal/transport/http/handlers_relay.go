package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fitrelay/internal/relay"
	dErrors "fitrelay/pkg/domain-errors"
)

// cacheStatusHeader tells the client how the cache participated.
const cacheStatusHeader = "X-Cache-Status"

// invalidateHeader forces a refetch; equivalent to invalidateCache in the body.
const invalidateHeader = "X-Cache-Invalidate"

// RelayService is the relay orchestrator as seen by the transport layer.
type RelayService interface {
	Relay(ctx context.Context, req relay.Request) (*relay.Response, error)
}

// RelayHandler accepts proxied API calls from the dashboard frontend.
type RelayHandler struct {
	relay RelayService
}

func NewRelayHandler(svc RelayService) *RelayHandler {
	return &RelayHandler{relay: svc}
}

// relayRequest is the inbound JSON contract.
type relayRequest struct {
	UserID          string          `json:"userId"`
	Endpoint        string          `json:"endpoint"`
	Method          string          `json:"method,omitempty"`
	Body            json.RawMessage `json:"body,omitempty"`
	InvalidateCache bool            `json:"invalidateCache,omitempty"`
}

func (h *RelayHandler) handleRelay(w http.ResponseWriter, r *http.Request) {
	var req relayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	resp, err := h.relay.Relay(r.Context(), relay.Request{
		UserID:     req.UserID,
		Method:     method,
		Endpoint:   req.Endpoint,
		Body:       req.Body,
		Invalidate: req.InvalidateCache || r.Header.Get(invalidateHeader) != "",
	})
	if err != nil {
		writeError(w, err)
		return
	}

	for name, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set(cacheStatusHeader, string(resp.CacheStatus))
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}
