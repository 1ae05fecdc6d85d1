package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	domainAttendance "checkin/internal/domain/attendance"
)

// ToggleLikeInput carries input for the like toggle.
type ToggleLikeInput struct {
	AttendanceID string `validate:"required" label:"record"`
	MemberID     int    `validate:"gt=0" label:"member"`
}

// ToggleLikeResult carries the reloaded detail and the new like state.
type ToggleLikeResult struct {
	Detail domainAttendance.Detail
	Liked  bool
}

// ToggleLikeDeps holds dependencies for ToggleLike.
type ToggleLikeDeps struct {
	AttendanceAPI AttendanceAPI
}

// ExecuteToggleLike likes the record if the member has not, otherwise
// removes the member's like.
// PRE: MemberID is the logged-in member
// POST: Detail is re-fetched after the write; toggling twice restores the
// original like set
func ExecuteToggleLike(ctx context.Context, input ToggleLikeInput, deps ToggleLikeDeps) (ToggleLikeResult, error) {
	if err := validateInput(input); err != nil {
		return ToggleLikeResult{}, err
	}

	detail, err := deps.AttendanceAPI.GetAttendance(ctx, input.AttendanceID)
	if err != nil {
		return ToggleLikeResult{}, fmt.Errorf("get attendance %s: %w", input.AttendanceID, err)
	}

	event := "like_added"
	if like, ok := detail.LikeBy(input.MemberID); ok {
		event = "like_removed"
		if err := deps.AttendanceAPI.DeleteLike(ctx, like.ID); err != nil {
			return ToggleLikeResult{}, fmt.Errorf("delete like %d: %w", like.ID, err)
		}
	} else if _, err := deps.AttendanceAPI.AddLike(ctx, input.AttendanceID, input.MemberID); err != nil {
		return ToggleLikeResult{}, fmt.Errorf("add like: %w", err)
	}

	detail, err = deps.AttendanceAPI.GetAttendance(ctx, input.AttendanceID)
	if err != nil {
		return ToggleLikeResult{}, fmt.Errorf("reload attendance %s: %w", input.AttendanceID, err)
	}

	slog.Info("checkin_event", "event", event, "member_id", input.MemberID, "attendance_id", input.AttendanceID)
	return ToggleLikeResult{Detail: detail, Liked: detail.IsLikedBy(input.MemberID)}, nil
}
