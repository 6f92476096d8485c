package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fitrelay/internal/credential/models"
)

// PostgresStore persists credential records in PostgreSQL.
//
// Schema (migrations/0001_user_credentials.sql):
//
//	CREATE TABLE user_credentials (
//	    user_id       TEXT PRIMARY KEY,
//	    access_token  TEXT NOT NULL,
//	    refresh_token TEXT NOT NULL,
//	    expires_at    TIMESTAMPTZ NOT NULL,
//	    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, userID string) (*models.Record, error) {
	query := `
		SELECT user_id, access_token, refresh_token, expires_at
		FROM user_credentials
		WHERE user_id = $1
	`
	var record models.Record
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&record.UserID,
		&record.AccessToken,
		&record.RefreshToken,
		&record.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &record, nil
}

// Upsert replaces the full row for the user. The upsert is atomic at the
// database level, so concurrent refreshes degrade to last-write-wins.
func (s *PostgresStore) Upsert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("credential record is required")
	}
	query := `
		INSERT INTO user_credentials (user_id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()
	`
	if _, err := s.db.ExecContext(ctx, query,
		record.UserID, record.AccessToken, record.RefreshToken, record.ExpiresAt,
	); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_credentials WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
