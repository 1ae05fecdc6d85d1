package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
)

// AddCommentInput carries input for posting a comment.
type AddCommentInput struct {
	AttendanceID string `validate:"required" label:"record"`
	MemberID     int    `validate:"gt=0" label:"member"`
	Text         string
}

// EditCommentInput carries input for changing a comment.
// AttendanceID locates the comment for the author check.
type EditCommentInput struct {
	AttendanceID string `validate:"required" label:"record"`
	CommentID    int    `validate:"gt=0" label:"comment"`
	MemberID     int    `validate:"gt=0" label:"member"`
	Text         string
}

// DeleteCommentInput carries input for removing a comment.
type DeleteCommentInput struct {
	AttendanceID string `validate:"required" label:"record"`
	CommentID    int    `validate:"gt=0" label:"comment"`
	MemberID     int    `validate:"gt=0" label:"member"`
}

// CommentResult carries the detail re-read after a comment write.
type CommentResult struct {
	Detail domainAttendance.Detail
}

// CommentDeps holds dependencies for the comment orchestrators.
type CommentDeps struct {
	AttendanceAPI AttendanceAPI
}

// ExecuteAddComment posts a comment on a record.
// PRE: MemberID is the logged-in member
// POST: the comment appears in the re-fetched Detail
func ExecuteAddComment(ctx context.Context, input AddCommentInput, deps CommentDeps) (CommentResult, error) {
	if err := validateInput(input); err != nil {
		return CommentResult{}, err
	}
	text, err := domainAttendance.ValidateCommentText(input.Text)
	if err != nil {
		return CommentResult{}, apperr.Validation(err.Error())
	}

	id, err := deps.AttendanceAPI.AddComment(ctx, input.AttendanceID, input.MemberID, text)
	if err != nil {
		return CommentResult{}, fmt.Errorf("add comment: %w", err)
	}
	slog.Info("checkin_event", "event", "comment_added", "member_id", input.MemberID, "attendance_id", input.AttendanceID, "comment_id", id)
	return reloadDetail(ctx, input.AttendanceID, deps)
}

// ExecuteEditComment replaces the text of the member's own comment.
// PRE: MemberID is the logged-in member
// POST: the new text appears in the re-fetched Detail
// INVARIANT: only the author may edit
func ExecuteEditComment(ctx context.Context, input EditCommentInput, deps CommentDeps) (CommentResult, error) {
	if err := validateInput(input); err != nil {
		return CommentResult{}, err
	}
	text, err := domainAttendance.ValidateCommentText(input.Text)
	if err != nil {
		return CommentResult{}, apperr.Validation(err.Error())
	}
	if err := requireAuthor(ctx, input.AttendanceID, input.CommentID, input.MemberID, deps); err != nil {
		return CommentResult{}, err
	}

	if err := deps.AttendanceAPI.UpdateComment(ctx, input.CommentID, text); err != nil {
		return CommentResult{}, fmt.Errorf("update comment %d: %w", input.CommentID, err)
	}
	slog.Info("checkin_event", "event", "comment_edited", "member_id", input.MemberID, "comment_id", input.CommentID)
	return reloadDetail(ctx, input.AttendanceID, deps)
}

// ExecuteDeleteComment removes the member's own comment.
// PRE: MemberID is the logged-in member
// POST: the comment is absent from the re-fetched Detail
// INVARIANT: only the author may delete
func ExecuteDeleteComment(ctx context.Context, input DeleteCommentInput, deps CommentDeps) (CommentResult, error) {
	if err := validateInput(input); err != nil {
		return CommentResult{}, err
	}
	if err := requireAuthor(ctx, input.AttendanceID, input.CommentID, input.MemberID, deps); err != nil {
		return CommentResult{}, err
	}

	if err := deps.AttendanceAPI.DeleteComment(ctx, input.CommentID); err != nil {
		return CommentResult{}, fmt.Errorf("delete comment %d: %w", input.CommentID, err)
	}
	slog.Info("checkin_event", "event", "comment_deleted", "member_id", input.MemberID, "comment_id", input.CommentID)
	return reloadDetail(ctx, input.AttendanceID, deps)
}

func requireAuthor(ctx context.Context, attendanceID string, commentID, memberID int, deps CommentDeps) error {
	detail, err := deps.AttendanceAPI.GetAttendance(ctx, attendanceID)
	if err != nil {
		return fmt.Errorf("get attendance %s: %w", attendanceID, err)
	}
	c, ok := detail.Comment(commentID)
	if !ok {
		return apperr.NotFound("Comment not found.")
	}
	if !c.CanEdit(memberID) {
		return apperr.Validation("You can only change your own comments.")
	}
	return nil
}

func reloadDetail(ctx context.Context, attendanceID string, deps CommentDeps) (CommentResult, error) {
	detail, err := deps.AttendanceAPI.GetAttendance(ctx, attendanceID)
	if err != nil {
		return CommentResult{}, fmt.Errorf("reload attendance %s: %w", attendanceID, err)
	}
	return CommentResult{Detail: detail}, nil
}

