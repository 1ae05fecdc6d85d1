package session

import (
	"errors"
	"time"

	"checkin/internal/domain/member"
)

// TTL is how long a member stays logged in without returning.
const TTL = 30 * 24 * time.Hour

// Session is the logged-in member for one browser.
// It is passed explicitly through the request chain; there is no global.
type Session struct {
	Token     string
	Member    member.Member
	CreatedAt time.Time
}

// Validate checks the session can be persisted.
// PRE: none
// POST: returns an error if Token or Member is missing
func (s Session) Validate() error {
	if s.Token == "" {
		return errors.New("session token is required")
	}
	if s.Member.ID == 0 {
		return errors.New("session must reference a member")
	}
	if s.CreatedAt.IsZero() {
		return errors.New("session creation time must be set")
	}
	return nil
}

// IsExpired reports whether the session is older than TTL at now.
func (s Session) IsExpired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > TTL
}
