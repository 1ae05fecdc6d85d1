package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainAttendance "checkin/internal/domain/attendance"
)

// CheckInMemberInput carries input for the check-in orchestrator.
// MemberID comes from the session, never from the form.
type CheckInMemberInput struct {
	MemberID int `validate:"gt=0" label:"member"`
}

// CheckInMemberResult carries the created record as re-read from the API.
// When the API acknowledged the check-in without an id, Detail.ID is empty
// and Detail holds only the member and today's date.
type CheckInMemberResult struct {
	Detail   domainAttendance.Detail
	DateLong string // e.g. "2024년 3월 1일"
}

// CheckInMemberDeps holds dependencies for CheckInMember.
type CheckInMemberDeps struct {
	AttendanceAPI AttendanceAPI
	Now           func() time.Time // optional: defaults to time.Now
}

// ExecuteCheckInMember records today's attendance for the member.
// PRE: MemberID is the logged-in member
// POST: the API holds a record for today and the result is the re-fetched
// copy, or a stub dated today when the API returned no id
// INVARIANT: one check-in per member per day is enforced by the API; a
// duplicate surfaces as a ValidationError carrying the API's message
func ExecuteCheckInMember(ctx context.Context, input CheckInMemberInput, deps CheckInMemberDeps) (CheckInMemberResult, error) {
	if err := validateInput(input); err != nil {
		return CheckInMemberResult{}, err
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	id, err := deps.AttendanceAPI.CreateAttendance(ctx, input.MemberID)
	if err != nil {
		return CheckInMemberResult{}, fmt.Errorf("create attendance: %w", err)
	}

	var detail domainAttendance.Detail
	if id == "" {
		// any 2xx is a successful check-in, with or without an id
		detail = domainAttendance.Detail{MemberID: input.MemberID}
	} else {
		detail, err = deps.AttendanceAPI.GetAttendance(ctx, id)
		if err != nil {
			return CheckInMemberResult{}, fmt.Errorf("reload attendance %s: %w", id, err)
		}
	}

	if detail.Date == "" {
		detail.Date = domainAttendance.FormatDate(now())
	}
	date := detail.Date
	slog.Info("checkin_event", "event", "member_checked_in", "member_id", input.MemberID, "attendance_id", id, "date", date)

	return CheckInMemberResult{
		Detail:   detail,
		DateLong: domainAttendance.FormatDateLong(date),
	}, nil
}
