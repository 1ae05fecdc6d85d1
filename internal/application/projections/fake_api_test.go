package projections

import (
	"context"

	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
)

// fakeAPI serves seeded data for projection tests.
type fakeAPI struct {
	records    []domainAttendance.Record
	details    map[string]domainAttendance.Detail
	members    []domainMember.Member
	listErr    error
	membersErr error
}

// ListAttendances returns the seeded records.
// PRE: none
// POST: Returns records or listErr
func (f *fakeAPI) ListAttendances(_ context.Context) ([]domainAttendance.Record, error) {
	return f.records, f.listErr
}

// GetAttendance returns a seeded detail.
// PRE: id is non-empty
// POST: Returns the detail or a NotFound error
func (f *fakeAPI) GetAttendance(_ context.Context, id string) (domainAttendance.Detail, error) {
	d, ok := f.details[id]
	if !ok {
		return domainAttendance.Detail{}, apperr.NotFound("Attendance not found.")
	}
	return d, nil
}

// ListMembers returns the seeded members.
// PRE: none
// POST: Returns members or membersErr
func (f *fakeAPI) ListMembers(_ context.Context) ([]domainMember.Member, error) {
	return f.members, f.membersErr
}
