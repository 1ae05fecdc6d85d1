package projections

import (
	"context"

	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
)

// AttendanceReader reads attendance records from the API.
type AttendanceReader interface {
	ListAttendances(ctx context.Context) ([]domainAttendance.Record, error)
	GetAttendance(ctx context.Context, id string) (domainAttendance.Detail, error)
}

// MemberReader reads members from the API.
type MemberReader interface {
	ListMembers(ctx context.Context) ([]domainMember.Member, error)
}
