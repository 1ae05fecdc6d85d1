package projections

import (
	"context"
	"fmt"

	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
)

// GetAttendanceDetailQuery carries query parameters.
type GetAttendanceDetailQuery struct {
	AttendanceID string
	ViewerID     int // the logged-in member
}

// CommentView is a comment with the viewer's permissions resolved.
type CommentView struct {
	domainAttendance.Comment
	Editable bool
}

// GetAttendanceDetailResult carries the query result.
type GetAttendanceDetailResult struct {
	Detail        domainAttendance.Detail
	OwnerName     string
	DateLong      string
	IsOwner       bool
	LikedByViewer bool
	ViewerLikeID  int // zero unless LikedByViewer
	Comments      []CommentView
}

// GetAttendanceDetailDeps holds dependencies for GetAttendanceDetail.
type GetAttendanceDetailDeps struct {
	AttendanceReader AttendanceReader
	MemberReader     MemberReader // optional: nil shows the owner as unknown
}

// QueryGetAttendanceDetail fetches one record with likes and comments and
// resolves what the viewer may do with it.
// PRE: AttendanceID is non-empty
// POST: Comments keeps the API order; Editable is true only for the author
func QueryGetAttendanceDetail(ctx context.Context, query GetAttendanceDetailQuery, deps GetAttendanceDetailDeps) (GetAttendanceDetailResult, error) {
	detail, err := deps.AttendanceReader.GetAttendance(ctx, query.AttendanceID)
	if err != nil {
		return GetAttendanceDetailResult{}, fmt.Errorf("get attendance %s: %w", query.AttendanceID, err)
	}

	ownerName := domainMember.UnknownName
	if deps.MemberReader != nil {
		// Owner name is decoration; a failed member fetch still shows the record.
		if members, err := deps.MemberReader.ListMembers(ctx); err == nil {
			ownerName, _ = domainMember.NewNameIndex(members).Name(detail.MemberID)
		}
	}

	result := GetAttendanceDetailResult{
		Detail:    detail,
		OwnerName: ownerName,
		DateLong:  domainAttendance.FormatDateLong(detail.Date),
		IsOwner:   detail.IsOwnedBy(query.ViewerID),
		Comments:  make([]CommentView, len(detail.Comments)),
	}
	if like, ok := detail.LikeBy(query.ViewerID); ok {
		result.LikedByViewer = true
		result.ViewerLikeID = like.ID
	}
	for i, c := range detail.Comments {
		result.Comments[i] = CommentView{Comment: c, Editable: c.CanEdit(query.ViewerID)}
	}
	return result, nil
}
