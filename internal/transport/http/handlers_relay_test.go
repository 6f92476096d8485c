package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"fitrelay/internal/relay"
	dErrors "fitrelay/pkg/domain-errors"
)

// stubRelay records the last request and returns a scripted response.
type stubRelay struct {
	lastReq relay.Request
	resp    *relay.Response
	err     error
}

func (s *stubRelay) Relay(_ context.Context, req relay.Request) (*relay.Response, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type RelayHandlerSuite struct {
	suite.Suite
	relay   *stubRelay
	handler *RelayHandler
}

func (s *RelayHandlerSuite) SetupTest() {
	s.relay = &stubRelay{
		resp: &relay.Response{
			Status:      http.StatusOK,
			Header:      http.Header{"Content-Type": []string{"application/json"}},
			Body:        []byte(`{"ok":true}`),
			CacheStatus: relay.CacheMiss,
		},
	}
	s.handler = NewRelayHandler(s.relay)
}

func TestRelayHandlerSuite(t *testing.T) {
	suite.Run(t, new(RelayHandlerSuite))
}

func (s *RelayHandlerSuite) post(body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/relay", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.handleRelay(rec, req)
	return rec
}

func (s *RelayHandlerSuite) TestRelaysAndReportsCacheStatus() {
	rec := s.post(`{"userId":"u1","endpoint":"/foods/units.json"}`, nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("MISS", rec.Header().Get("X-Cache-Status"))
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.JSONEq(`{"ok":true}`, rec.Body.String())

	s.Equal("u1", s.relay.lastReq.UserID)
	s.Equal(http.MethodGet, s.relay.lastReq.Method, "method defaults to GET")
	s.Equal("/foods/units.json", s.relay.lastReq.Endpoint)
	s.False(s.relay.lastReq.Invalidate)
}

func (s *RelayHandlerSuite) TestUppercasesMethodAndForwardsBody() {
	rec := s.post(`{"userId":"u1","endpoint":"/users/-/foods/log.json","method":"post","body":{"foodId":9}}`, nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(http.MethodPost, s.relay.lastReq.Method)
	s.JSONEq(`{"foodId":9}`, string(s.relay.lastReq.Body))
}

func (s *RelayHandlerSuite) TestInvalidateViaHeader() {
	s.relay.resp.CacheStatus = relay.CacheInvalidated
	rec := s.post(`{"userId":"u1","endpoint":"/users/-/foods/log/frequent.json"}`,
		map[string]string{"X-Cache-Invalidate": "1"})

	s.Equal("INVALIDATED", rec.Header().Get("X-Cache-Status"))
	s.True(s.relay.lastReq.Invalidate)
}

func (s *RelayHandlerSuite) TestInvalidateViaBodyFlag() {
	s.post(`{"userId":"u1","endpoint":"/users/-/foods/log/frequent.json","invalidateCache":true}`, nil)
	s.True(s.relay.lastReq.Invalidate)
}

func (s *RelayHandlerSuite) TestMalformedBody() {
	rec := s.post(`{"userId":`, nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"error":"bad_request","error_description":"invalid request body"}`, rec.Body.String())
}

func (s *RelayHandlerSuite) TestDomainErrorMapping() {
	cases := []struct {
		code   dErrors.Code
		status int
	}{
		{dErrors.CodeNoCredential, http.StatusUnauthorized},
		{dErrors.CodeRefreshFailed, http.StatusUnauthorized},
		{dErrors.CodeUpstreamUnreachable, http.StatusBadGateway},
		{dErrors.CodeStoreError, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		s.Run(string(tc.code), func() {
			s.relay.err = dErrors.New(tc.code, "boom")
			rec := s.post(`{"userId":"u1","endpoint":"/foods/units.json"}`, nil)
			s.Equal(tc.status, rec.Code)
			s.Contains(rec.Body.String(), string(tc.code))
		})
	}
}

func (s *RelayHandlerSuite) TestPassesThroughUpstreamStatus() {
	s.relay.resp = &relay.Response{
		Status:      http.StatusTooManyRequests,
		Header:      http.Header{"Retry-After": []string{"30"}},
		Body:        []byte(`{"errors":[]}`),
		CacheStatus: relay.CacheMiss,
	}
	rec := s.post(`{"userId":"u1","endpoint":"/foods/units.json"}`, nil)

	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Equal("30", rec.Header().Get("Retry-After"))
	s.JSONEq(`{"errors":[]}`, rec.Body.String())
}
