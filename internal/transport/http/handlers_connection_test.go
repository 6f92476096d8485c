package httptransport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fitrelay/internal/credential/models"
	"fitrelay/internal/credential/store"
	"fitrelay/internal/platform/health"
)

type ConnectionHandlerSuite struct {
	suite.Suite
	creds  *store.InMemoryStore
	server http.Handler
}

func (s *ConnectionHandlerSuite) SetupTest() {
	s.creds = store.NewInMemory()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.server = NewRouter(RouterConfig{
		Relay:      NewRelayHandler(&stubRelay{}),
		Connection: NewConnectionHandler(s.creds),
		Health:     health.New(),
		Logger:     logger,
	})
}

func TestConnectionHandlerSuite(t *testing.T) {
	suite.Run(t, new(ConnectionHandlerSuite))
}

func (s *ConnectionHandlerSuite) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)
	return rec
}

func (s *ConnectionHandlerSuite) TestStatusConnected() {
	expiresAt := time.Date(2024, 3, 17, 20, 0, 0, 0, time.UTC)
	s.Require().NoError(s.creds.Upsert(context.Background(), &models.Record{
		UserID:       "u1",
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    expiresAt,
	}))

	rec := s.do(http.MethodGet, "/api/connection/u1")
	s.Equal(http.StatusOK, rec.Code)

	var resp connectionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Connected)
	s.Require().NotNil(resp.ExpiresAt)
	s.True(resp.ExpiresAt.Equal(expiresAt))
	s.NotContains(rec.Body.String(), "acc", "token material must not leak")
	s.NotContains(rec.Body.String(), "ref")
}

func (s *ConnectionHandlerSuite) TestStatusNotConnected() {
	rec := s.do(http.MethodGet, "/api/connection/stranger")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"userId":"stranger","connected":false}`, rec.Body.String())
}

func (s *ConnectionHandlerSuite) TestDisconnectRemovesCredential() {
	s.Require().NoError(s.creds.Upsert(context.Background(), &models.Record{
		UserID: "u1", AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now(),
	}))

	rec := s.do(http.MethodDelete, "/api/connection/u1")
	s.Equal(http.StatusNoContent, rec.Code)

	_, err := s.creds.Find(context.Background(), "u1")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *ConnectionHandlerSuite) TestDisconnectUnknownUserIsIdempotent() {
	rec := s.do(http.MethodDelete, "/api/connection/stranger")
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *ConnectionHandlerSuite) TestRouterServesLiveness() {
	rec := s.do(http.MethodGet, "/healthz")
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "alive")
}

func (s *ConnectionHandlerSuite) TestRouterAnswersPreflight() {
	rec := s.do(http.MethodOptions, "/api/relay")
	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}
