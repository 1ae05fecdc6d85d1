package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"checkin/internal/adapters/storage"
	domain "checkin/internal/domain/session"
)

// timeLayout is fixed-width UTC so created_at compares correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a SQLiteStore over a migrated database.
// PRE: db has the session table (storage.MigrateDB)
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB, opts ...Option) *SQLiteStore {
	return &SQLiteStore{db: db, now: buildOptions(opts).now}
}

// Get returns the session for token.
// PRE: none
// POST: returns ErrNotFound for unknown or expired tokens; an expired row is removed
func (s *SQLiteStore) Get(ctx context.Context, token string) (domain.Session, error) {
	var (
		sess    domain.Session
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, member_id, member_name, created_at FROM session WHERE token = ?`, token,
	).Scan(&sess.Token, &sess.Member.ID, &sess.Member.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	if sess.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return domain.Session{}, fmt.Errorf("parse session created_at %q: %w", created, err)
	}
	if sess.IsExpired(s.now()) {
		_ = s.Delete(ctx, token)
		return domain.Session{}, ErrNotFound
	}
	return sess, nil
}

// Save inserts or replaces a session.
// PRE: sess is valid
// POST: session is persisted under its token
func (s *SQLiteStore) Save(ctx context.Context, sess domain.Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session (token, member_id, member_name, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(token) DO UPDATE SET member_id=excluded.member_id, member_name=excluded.member_name, created_at=excluded.created_at`,
		sess.Token, sess.Member.ID, sess.Member.Name, sess.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session. Unknown tokens are not an error.
// PRE: none
// POST: token no longer resolves
func (s *SQLiteStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions older than the TTL at now.
// PRE: none
// POST: returns the number of rows removed
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-domain.TTL).UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
