package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
)

// flexID decodes an id sent as either a JSON string or a JSON number.
// Numbers keep their literal text so large ids survive intact.
type flexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type memberDTO struct {
	ID   int    `json:"testMemberId"`
	Name string `json:"testMemberName"`
}

func (m memberDTO) toDomain() domainMember.Member {
	return domainMember.Member{ID: m.ID, Name: m.Name}
}

type attendanceDTO struct {
	ID           flexID `json:"testAttendanceId"`
	MemberID     int    `json:"testMemberId"`
	Date         string `json:"testAttendanceDate"`
	LikeCount    int    `json:"testLikesCount"`
	CommentCount int    `json:"testCommentsCount"`
}

func (a attendanceDTO) toDomain() domainAttendance.Record {
	return domainAttendance.Record{
		ID:           string(a.ID),
		MemberID:     a.MemberID,
		Date:         normalizeDate(a.Date),
		LikeCount:    a.LikeCount,
		CommentCount: a.CommentCount,
	}
}

type likeDTO struct {
	ID         int    `json:"testLikeId"`
	MemberID   int    `json:"testMemberId"`
	MemberName string `json:"testMemberName"`
}

type commentDTO struct {
	ID         int    `json:"testCommentId"`
	MemberID   int    `json:"testMemberId"`
	MemberName string `json:"testMemberName"`
	Text       string `json:"testComment"`
}

type detailDTO struct {
	ID       flexID       `json:"testAttendanceId"`
	MemberID int          `json:"testMemberId"`
	Date     string       `json:"testAttendanceDate"`
	Likes    []likeDTO    `json:"testLikes"`
	Comments []commentDTO `json:"testComments"`
}

func (d detailDTO) toDomain() domainAttendance.Detail {
	out := domainAttendance.Detail{
		ID:       string(d.ID),
		MemberID: d.MemberID,
		Date:     normalizeDate(d.Date),
		Likes:    make([]domainAttendance.Like, len(d.Likes)),
		Comments: make([]domainAttendance.Comment, len(d.Comments)),
	}
	for i, l := range d.Likes {
		out.Likes[i] = domainAttendance.Like{ID: l.ID, MemberID: l.MemberID, MemberName: l.MemberName}
	}
	for i, c := range d.Comments {
		out.Comments[i] = domainAttendance.Comment{ID: c.ID, MemberID: c.MemberID, MemberName: c.MemberName, Text: c.Text}
	}
	return out
}

// detailEnvelope accepts the detail as an object or as an array whose
// first element is the detail.
type detailEnvelope struct {
	detail detailDTO
	found  bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *detailEnvelope) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []detailDTO
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) > 0 {
			e.detail, e.found = list[0], true
		}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &e.detail); err != nil {
		return err
	}
	e.found = true
	return nil
}

// normalizeDate reduces an ISO timestamp to its calendar date.
// Values that do not start with a YYYY-MM-DD date pass through unchanged.
func normalizeDate(s string) string {
	if len(s) > len(domainAttendance.DateLayout) && domainAttendance.IsValidDate(s[:len(domainAttendance.DateLayout)]) {
		return s[:len(domainAttendance.DateLayout)]
	}
	return s
}

type memberNameRequest struct {
	Name string `json:"testMemberName"`
}

type memberIDRequest struct {
	MemberID int `json:"testMemberId"`
}

type commentRequest struct {
	MemberID int    `json:"testMemberId,omitempty"`
	Text     string `json:"testComment"`
}
