package orchestrators

import (
	"context"

	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
	domainSession "checkin/internal/domain/session"
)

// AttendanceAPI is the slice of the REST client the attendance
// orchestrators need.
type AttendanceAPI interface {
	ListAttendances(ctx context.Context) ([]domainAttendance.Record, error)
	GetAttendance(ctx context.Context, id string) (domainAttendance.Detail, error)
	CreateAttendance(ctx context.Context, memberID int) (string, error)
	DeleteAttendance(ctx context.Context, id string) error
	AddLike(ctx context.Context, attendanceID string, memberID int) (int, error)
	DeleteLike(ctx context.Context, likeID int) error
	AddComment(ctx context.Context, attendanceID string, memberID int, text string) (int, error)
	UpdateComment(ctx context.Context, commentID int, text string) error
	DeleteComment(ctx context.Context, commentID int) error
}

// MemberAPI is the slice of the REST client the member orchestrators need.
type MemberAPI interface {
	ListMembers(ctx context.Context) ([]domainMember.Member, error)
	GetMember(ctx context.Context, id int) (domainMember.Member, error)
	CreateMember(ctx context.Context, name string) (int, error)
	UpdateMember(ctx context.Context, id int, name string) error
	DeleteMember(ctx context.Context, id int) error
}

// SessionStore persists logged-in sessions.
type SessionStore interface {
	Save(ctx context.Context, s domainSession.Session) error
	Delete(ctx context.Context, token string) error
}
