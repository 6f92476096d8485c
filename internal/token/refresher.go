// Package token keeps per-user access tokens usable: it answers "give me a
// valid token for this user", refreshing through the upstream authorization
// server only when the stored one has expired.
package token

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"fitrelay/internal/credential/models"
	"fitrelay/internal/credential/store"
	"fitrelay/internal/token/metrics"
	"fitrelay/internal/upstream"
	dErrors "fitrelay/pkg/domain-errors"
)

// CredentialStore defines the persistence interface for credential records.
// Error Contract: Find returns store.ErrNotFound when no record exists.
type CredentialStore interface {
	Find(ctx context.Context, userID string) (*models.Record, error)
	Upsert(ctx context.Context, record *models.Record) error
}

// Exchanger swaps a refresh token for a new grant at the upstream.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (*upstream.Grant, error)
}

// Service implements the token refresher.
//
// Concurrent refreshes for the same user are coalesced in-process through
// singleflight; that is an optimization, not a guarantee. Across processes
// two refreshes may both succeed upstream and the later Upsert wins. This
// last-write-wins race is accepted; closing it would need a cross-process
// mutex keyed by user id.
type Service struct {
	creds     CredentialStore
	exchanger Exchanger
	group     singleflight.Group
	now       func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics sink for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a token service over the given store and exchanger.
func New(creds CredentialStore, exchanger Exchanger, opts ...Option) *Service {
	s := &Service{
		creds:     creds,
		exchanger: exchanger,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns a currently valid access token for the user.
//
// Callers may invoke this speculatively: when the stored record has not
// expired the stored token is returned with no upstream call and no store
// write. Only an expired record triggers the refresh exchange.
//
// Errors: no_credential when the user never connected; refresh_failed when
// the exchange is rejected (stored record left untouched); store_error when
// the credential store is unavailable.
func (s *Service) Token(ctx context.Context, userID string) (string, error) {
	record, err := s.find(ctx, userID)
	if err != nil {
		return "", err
	}

	if !record.Expired(s.now()) {
		if s.metrics != nil {
			s.metrics.RecordFastPath()
		}
		return record.AccessToken, nil
	}

	token, err, shared := s.group.Do(userID, func() (any, error) {
		return s.refresh(ctx, userID)
	})
	if err != nil {
		return "", err
	}
	if shared && s.metrics != nil {
		s.metrics.RecordDeduped()
	}
	return token.(string), nil
}

// refresh runs inside singleflight: exactly one exchange per user at a time
// within this process.
func (s *Service) refresh(ctx context.Context, userID string) (string, error) {
	// Re-read: a flight that just finished may have refreshed already.
	record, err := s.find(ctx, userID)
	if err != nil {
		return "", err
	}
	now := s.now()
	if !record.Expired(now) {
		return record.AccessToken, nil
	}

	start := time.Now()
	grant, err := s.exchanger.Exchange(ctx, record.RefreshToken)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRefresh("failure", time.Since(start).Seconds())
		}
		s.logger.Warn("token refresh failed; stored credential left untouched",
			"user_id", userID,
			"error", err,
		)
		return "", err
	}

	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		// Upstream did not rotate; keep the working one.
		refreshToken = record.RefreshToken
	}

	updated := &models.Record{
		UserID:       userID,
		AccessToken:  grant.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(time.Duration(grant.ExpiresIn) * time.Second),
	}
	if err := s.creds.Upsert(ctx, updated); err != nil {
		if s.metrics != nil {
			s.metrics.RecordRefresh("failure", time.Since(start).Seconds())
		}
		return "", dErrors.Wrap(err, dErrors.CodeStoreError, "persist refreshed credential")
	}

	if s.metrics != nil {
		s.metrics.RecordRefresh("success", time.Since(start).Seconds())
	}
	s.logger.Info("access token refreshed",
		"user_id", userID,
		"expires_at", updated.ExpiresAt,
	)
	return updated.AccessToken, nil
}

func (s *Service) find(ctx context.Context, userID string) (*models.Record, error) {
	record, err := s.creds.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNoCredential, "no credential for user; reconnect required")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeStoreError, "load credential")
	}
	return record, nil
}
