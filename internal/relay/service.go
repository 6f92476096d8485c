// Package relay orchestrates one proxied request end to end: decide
// cacheability, serve from cache when fresh, otherwise obtain a valid access
// token, call the upstream API, and store cacheable 2xx responses.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fitrelay/internal/cache"
	cacheMetrics "fitrelay/internal/cache/metrics"
	cacheStore "fitrelay/internal/cache/store"
	relayMetrics "fitrelay/internal/relay/metrics"
	"fitrelay/internal/relay/tracer"
	"fitrelay/internal/upstream"
	dErrors "fitrelay/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// CacheStatus tells the caller how the cache participated in the response.
type CacheStatus string

const (
	CacheHit         CacheStatus = "HIT"
	CacheMiss        CacheStatus = "MISS"
	CacheInvalidated CacheStatus = "INVALIDATED"
)

// Request is one inbound relay call.
type Request struct {
	UserID     string
	Method     string
	Endpoint   string
	Body       json.RawMessage
	Invalidate bool
}

// Response is what goes back to the client. Status, Header and Body come
// either from the cache or verbatim from the upstream.
type Response struct {
	Status      int
	Header      http.Header
	Body        []byte
	CacheStatus CacheStatus
}

// PolicyResolver decides whether a request is cacheable and under which key.
type PolicyResolver interface {
	Resolve(method, endpoint, userID string) (cache.Policy, bool)
}

// CacheStore persists upstream responses. Get must return entries past their
// expiry; the relay decides staleness.
type CacheStore interface {
	Get(ctx context.Context, key cache.Key) (*cache.Entry, error)
	Upsert(ctx context.Context, entry *cache.Entry) error
	Delete(ctx context.Context, key cache.Key) error
}

// TokenSource yields a currently valid access token for a user.
type TokenSource interface {
	Token(ctx context.Context, userID string) (string, error)
}

// Upstream performs one live call against the fitness API.
type Upstream interface {
	Do(ctx context.Context, accessToken, method, endpoint string, body []byte) (*upstream.Response, error)
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// Service is the relay orchestrator.
//
// Cache failures never fail a request: a broken cache read degrades to a
// live upstream call and a broken cache write is logged and dropped. Only
// credential and upstream failures surface to the client.
type Service struct {
	policy   PolicyResolver
	cache    CacheStore
	tokens   TokenSource
	upstream Upstream

	storeTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
	tracer       tracer.Tracer
	metrics      *relayMetrics.Metrics
	cacheMetrics *cacheMetrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer sets the tracer for the service.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithMetrics sets the relay metrics sink.
func WithMetrics(m *relayMetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCacheMetrics sets the cache metrics sink.
func WithCacheMetrics(m *cacheMetrics.Metrics) Option {
	return func(s *Service) {
		s.cacheMetrics = m
	}
}

// WithStoreTimeout bounds each cache store operation.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.storeTimeout = d
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a relay service.
func New(policy PolicyResolver, cacheSt CacheStore, tokens TokenSource, up Upstream, opts ...Option) *Service {
	s := &Service{
		policy:       policy,
		cache:        cacheSt,
		tokens:       tokens,
		upstream:     up,
		storeTimeout: 5 * time.Second,
		now:          time.Now,
		logger:       slog.Default(),
		tracer:       tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Relay handles one request. On success the returned Response mirrors what
// the client should receive, including non-2xx upstream statuses which pass
// through verbatim and are never cached.
//
// Errors: bad_request for malformed input, no_credential / refresh_failed /
// store_error from the token source, upstream_unreachable when the live call
// cannot complete.
func (s *Service) Relay(ctx context.Context, req Request) (*Response, error) {
	ctx, span := s.tracer.Start(ctx, "relay.request",
		tracer.Attr("method", req.Method),
		tracer.Attr("endpoint", req.Endpoint),
	)
	resp, err := s.relay(ctx, req)
	if resp != nil {
		span.SetAttributes(tracer.Attr("cache_status", string(resp.CacheStatus)))
	}
	span.End(err)

	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordError(codeOf(err))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordRequest(req.Method, string(resp.CacheStatus))
	}
	return resp, nil
}

func (s *Service) relay(ctx context.Context, req Request) (*Response, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	policy, cacheable := s.policy.Resolve(req.Method, req.Endpoint, req.UserID)
	status := CacheMiss

	switch {
	case cacheable && req.Invalidate:
		s.invalidate(ctx, policy.Key)
		status = CacheInvalidated
	case cacheable:
		if entry := s.lookup(ctx, policy.Key); entry != nil {
			return &Response{
				Status:      entry.Status,
				Header:      entry.Header.Clone(),
				Body:        entry.Body,
				CacheStatus: CacheHit,
			}, nil
		}
	}

	accessToken, err := s.tokens.Token(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	upResp, err := s.upstream.Do(ctx, accessToken, req.Method, req.Endpoint, req.Body)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveUpstream(req.Method, time.Since(start).Seconds())
	}

	if cacheable && upResp.OK() {
		s.write(ctx, policy, upResp)
	}

	return &Response{
		Status:      upResp.Status,
		Header:      upResp.Header,
		Body:        upResp.Body,
		CacheStatus: status,
	}, nil
}

// invalidate drops the entry for the key. A failed delete is logged and the
// request continues: the live refetch below overwrites the entry anyway.
func (s *Service) invalidate(ctx context.Context, key cache.Key) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidation failed; continuing with live fetch",
			"key", key.String(),
			"error", err,
		)
		return
	}
	if s.cacheMetrics != nil {
		s.cacheMetrics.RecordInvalidation()
	}
}

// lookup returns a fresh entry or nil. Stale entries, missing entries and
// store failures all degrade to a miss.
func (s *Service) lookup(ctx context.Context, key cache.Key) *cache.Entry {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	start := time.Now()
	entry, err := s.cache.Get(ctx, key)
	if s.cacheMetrics != nil {
		s.cacheMetrics.ObserveLookupDuration(string(key.Scope), time.Since(start).Seconds())
	}
	if err != nil {
		if !errors.Is(err, cacheStore.ErrNotFound) {
			s.logger.Warn("cache read failed; falling back to live fetch",
				"key", key.String(),
				"error", err,
			)
		}
		s.recordMiss(key)
		return nil
	}
	if !entry.Fresh(s.now()) {
		if s.cacheMetrics != nil {
			s.cacheMetrics.RecordStale(string(key.Scope))
		}
		s.recordMiss(key)
		return nil
	}
	if s.cacheMetrics != nil {
		s.cacheMetrics.RecordHit(string(key.Scope))
	}
	return entry
}

// write stores a 2xx response under the policy key. Responses whose body is
// not valid JSON are not cached; the client still gets the live response.
func (s *Service) write(ctx context.Context, policy cache.Policy, resp *upstream.Response) {
	if !json.Valid(resp.Body) {
		s.logger.Warn("upstream body is not valid JSON; skipping cache write",
			"key", policy.Key.String(),
			"status", resp.Status,
		)
		return
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	entry := &cache.Entry{
		Key:       policy.Key,
		Body:      json.RawMessage(resp.Body),
		Status:    resp.Status,
		Header:    cache.SanitizeHeaders(resp.Header),
		ExpiresAt: s.now().Add(policy.TTL),
	}
	if err := s.cache.Upsert(ctx, entry); err != nil {
		s.logger.Warn("cache write failed; response served uncached",
			"key", policy.Key.String(),
			"error", err,
		)
		return
	}
	if s.cacheMetrics != nil {
		s.cacheMetrics.RecordWrite(string(policy.Key.Scope))
	}
}

func (s *Service) recordMiss(key cache.Key) {
	if s.cacheMetrics != nil {
		s.cacheMetrics.RecordMiss(string(key.Scope))
	}
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func validate(req Request) error {
	if req.UserID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "userId is required")
	}
	if req.Endpoint == "" || req.Endpoint[0] != '/' {
		return dErrors.New(dErrors.CodeBadRequest, "endpoint must be an absolute path")
	}
	if !allowedMethods[req.Method] {
		return dErrors.New(dErrors.CodeBadRequest, "unsupported method")
	}
	return nil
}

func codeOf(err error) string {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return string(domainErr.Code)
	}
	return string(dErrors.CodeInternal)
}
