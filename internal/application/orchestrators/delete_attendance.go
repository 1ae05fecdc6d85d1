package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
)

// DeleteAttendanceInput carries input for deleting a check-in.
type DeleteAttendanceInput struct {
	AttendanceID string `validate:"required" label:"record"`
	MemberID     int    `validate:"gt=0" label:"member"`
}

// DeleteAttendanceResult carries the list as re-read after the delete.
type DeleteAttendanceResult struct {
	Records []domainAttendance.Record
}

// DeleteAttendanceDeps holds dependencies for DeleteAttendance.
type DeleteAttendanceDeps struct {
	AttendanceAPI AttendanceAPI
}

// ExecuteDeleteAttendance removes one of the member's own check-ins.
// PRE: MemberID is the logged-in member
// POST: the record is gone from the re-fetched list
// INVARIANT: members can only delete their own records
func ExecuteDeleteAttendance(ctx context.Context, input DeleteAttendanceInput, deps DeleteAttendanceDeps) (DeleteAttendanceResult, error) {
	if err := validateInput(input); err != nil {
		return DeleteAttendanceResult{}, err
	}

	detail, err := deps.AttendanceAPI.GetAttendance(ctx, input.AttendanceID)
	if err != nil {
		return DeleteAttendanceResult{}, fmt.Errorf("get attendance %s: %w", input.AttendanceID, err)
	}
	if !detail.IsOwnedBy(input.MemberID) {
		return DeleteAttendanceResult{}, apperr.Validation("You can only delete your own check-ins.")
	}

	if err := deps.AttendanceAPI.DeleteAttendance(ctx, input.AttendanceID); err != nil {
		return DeleteAttendanceResult{}, fmt.Errorf("delete attendance %s: %w", input.AttendanceID, err)
	}

	records, err := deps.AttendanceAPI.ListAttendances(ctx)
	if err != nil {
		return DeleteAttendanceResult{}, fmt.Errorf("reload attendances: %w", err)
	}
	if slices.ContainsFunc(records, func(r domainAttendance.Record) bool { return r.ID == input.AttendanceID }) {
		slog.Warn("checkin_event", "event", "attendance_delete_not_visible", "attendance_id", input.AttendanceID)
	}

	slog.Info("checkin_event", "event", "attendance_deleted", "member_id", input.MemberID, "attendance_id", input.AttendanceID)
	return DeleteAttendanceResult{Records: records}, nil
}
