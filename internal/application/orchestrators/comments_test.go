package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
)

func commentFixture() *fakeAPI {
	api := newFakeAPI(domainMember.Member{ID: 1, Name: "Kim"}, domainMember.Member{ID: 2, Name: "Lee"})
	api.seed(domainAttendance.Detail{
		ID:       "a1",
		MemberID: 1,
		Date:     "2024-03-01",
		Comments: []domainAttendance.Comment{{ID: 21, MemberID: 2, MemberName: "Lee", Text: "nice"}},
	})
	return api
}

// TestExecuteAddComment tests comment posting and text validation.
func TestExecuteAddComment(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
		wantMsg string
	}{
		{"valid", "  great work  ", nil, ""},
		{"blank", "   ", apperr.ErrValidation, "Please enter a comment."},
		{"too long", strings.Repeat("x", domainAttendance.MaxCommentLength+1), apperr.ErrValidation, "Comments cannot exceed 1000 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := commentFixture()
			res, err := ExecuteAddComment(context.Background(), AddCommentInput{AttendanceID: "a1", MemberID: 1, Text: tt.text}, CommentDeps{AttendanceAPI: api})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				if got := apperr.MessageOf(err); got != tt.wantMsg {
					t.Errorf("message = %q, want %q", got, tt.wantMsg)
				}
				return
			}
			last := res.Detail.Comments[len(res.Detail.Comments)-1]
			if last.Text != "great work" || last.MemberID != 1 {
				t.Errorf("last comment = %+v", last)
			}
		})
	}
}

// TestExecuteEditComment tests that only the author can edit.
func TestExecuteEditComment(t *testing.T) {
	tests := []struct {
		name     string
		memberID int
		comment  int
		wantErr  error
	}{
		{"author", 2, 21, nil},
		{"not author", 1, 21, apperr.ErrValidation},
		{"unknown comment", 2, 99, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := commentFixture()
			res, err := ExecuteEditComment(context.Background(), EditCommentInput{
				AttendanceID: "a1",
				CommentID:    tt.comment,
				MemberID:     tt.memberID,
				Text:         "edited",
			}, CommentDeps{AttendanceAPI: api})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil && res.Detail.Comments[0].Text != "edited" {
				t.Errorf("comment = %+v, want edited", res.Detail.Comments[0])
			}
			if err != nil {
				for _, c := range api.calls {
					if c == "UpdateComment" {
						t.Error("UpdateComment must not be called when the check fails")
					}
				}
			}
		})
	}
}

// TestExecuteDeleteComment tests author-only deletion.
func TestExecuteDeleteComment(t *testing.T) {
	api := commentFixture()
	deps := CommentDeps{AttendanceAPI: api}

	_, err := ExecuteDeleteComment(context.Background(), DeleteCommentInput{AttendanceID: "a1", CommentID: 21, MemberID: 1}, deps)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("non-author delete err = %v, want validation", err)
	}

	res, err := ExecuteDeleteComment(context.Background(), DeleteCommentInput{AttendanceID: "a1", CommentID: 21, MemberID: 2}, deps)
	if err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if len(res.Detail.Comments) != 0 {
		t.Errorf("comments = %+v, want none", res.Detail.Comments)
	}
}
