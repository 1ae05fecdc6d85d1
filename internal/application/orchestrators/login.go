package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainSession "checkin/internal/domain/session"
)

// LoginInput carries the member picked on the home page.
type LoginInput struct {
	MemberID int `validate:"gt=0" label:"member"`
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	MemberAPI     MemberAPI
	SessionStore  SessionStore
	GenerateToken func() string    // optional: defaults to a random UUID
	Now           func() time.Time // optional: defaults to time.Now
}

// ExecuteLogin starts a session for the selected member.
// There are no credentials; picking a member is the whole login.
// PRE: MemberID was chosen from the member list
// POST: a session naming the member is persisted and returned
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (domainSession.Session, error) {
	if err := validateInput(input); err != nil {
		return domainSession.Session{}, err
	}
	genToken := func() string { return uuid.New().String() }
	if deps.GenerateToken != nil {
		genToken = deps.GenerateToken
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	m, err := deps.MemberAPI.GetMember(ctx, input.MemberID)
	if err != nil {
		return domainSession.Session{}, fmt.Errorf("get member %d: %w", input.MemberID, err)
	}

	sess := domainSession.Session{Token: genToken(), Member: m, CreatedAt: now()}
	if err := sess.Validate(); err != nil {
		return domainSession.Session{}, err
	}
	if err := deps.SessionStore.Save(ctx, sess); err != nil {
		return domainSession.Session{}, fmt.Errorf("save session: %w", err)
	}

	slog.Info("auth_event", "event", "login_success", "member_id", m.ID, "name", m.Name)
	return sess, nil
}

// LogoutInput carries the session token to end.
type LogoutInput struct {
	Token string
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	SessionStore SessionStore
}

// ExecuteLogout ends a session. An empty or unknown token is not an error.
// PRE: none
// POST: the token no longer resolves to a session
func ExecuteLogout(ctx context.Context, input LogoutInput, deps LogoutDeps) error {
	if input.Token == "" {
		return nil
	}
	if err := deps.SessionStore.Delete(ctx, input.Token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}
