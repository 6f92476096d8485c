package httptransport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fitrelay/internal/credential/models"
	"fitrelay/internal/credential/store"
	"fitrelay/internal/transport/http/json"
	dErrors "fitrelay/pkg/domain-errors"
)

// CredentialStore is the slice of the credential store the connection
// endpoints need.
type CredentialStore interface {
	Find(ctx context.Context, userID string) (*models.Record, error)
	Delete(ctx context.Context, userID string) error
}

// ConnectionHandler reports and revokes a user's upstream connection.
type ConnectionHandler struct {
	creds CredentialStore
}

func NewConnectionHandler(creds CredentialStore) *ConnectionHandler {
	return &ConnectionHandler{creds: creds}
}

type connectionResponse struct {
	UserID    string     `json:"userId"`
	Connected bool       `json:"connected"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// handleStatus reports whether a credential exists for the user. It never
// exposes token material, only the expiry timestamp.
func (h *ConnectionHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	record, err := h.creds.Find(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			json.WriteJSON(w, http.StatusOK, connectionResponse{UserID: userID, Connected: false})
			return
		}
		writeError(w, dErrors.Wrap(err, dErrors.CodeStoreError, "load credential"))
		return
	}

	json.WriteJSON(w, http.StatusOK, connectionResponse{
		UserID:    userID,
		Connected: true,
		ExpiresAt: &record.ExpiresAt,
	})
}

// handleDisconnect removes the stored credential. Disconnecting an unknown
// user succeeds; the end state is the same.
func (h *ConnectionHandler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.creds.Delete(r.Context(), userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, dErrors.Wrap(err, dErrors.CodeStoreError, "delete credential"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
