package attendance

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by the API (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// MaxCommentLength bounds comment text submitted from the form.
const MaxCommentLength = 1000

// Record is one check-in event as returned by the list endpoint.
type Record struct {
	ID           string
	MemberID     int
	Date         string // YYYY-MM-DD
	LikeCount    int
	CommentCount int
}

// Like is one member's like on a record.
type Like struct {
	ID         int
	MemberID   int
	MemberName string
}

// Comment is one member's comment on a record.
type Comment struct {
	ID         int
	MemberID   int
	MemberName string
	Text       string
}

// Detail is a record with its likes and comments, ordered by creation.
type Detail struct {
	ID       string
	MemberID int
	Date     string
	Likes    []Like
	Comments []Comment
}

// LikeBy returns the like left by memberID, if any.
// PRE: none
// POST: returns the first matching like; the API allows at most one
func (d Detail) LikeBy(memberID int) (Like, bool) {
	for _, l := range d.Likes {
		if l.MemberID == memberID {
			return l, true
		}
	}
	return Like{}, false
}

// IsLikedBy reports whether memberID has liked the record.
func (d Detail) IsLikedBy(memberID int) bool {
	_, ok := d.LikeBy(memberID)
	return ok
}

// Comment returns the comment with the given id.
func (d Detail) Comment(id int) (Comment, bool) {
	for _, c := range d.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// Summary collapses a detail to its list form.
func (d Detail) Summary() Record {
	return Record{
		ID:           d.ID,
		MemberID:     d.MemberID,
		Date:         d.Date,
		LikeCount:    len(d.Likes),
		CommentCount: len(d.Comments),
	}
}

// IsOwnedBy reports whether the record belongs to memberID.
func (d Detail) IsOwnedBy(memberID int) bool {
	return d.MemberID == memberID
}

// CanEdit reports whether memberID may edit or delete the comment.
// INVARIANT: only the author may change a comment
func (c Comment) CanEdit(memberID int) bool {
	return c.MemberID == memberID
}

// Comment validation failures. Messages are shown to the user as-is.
var (
	ErrEmptyComment   = errors.New("Please enter a comment.")
	ErrCommentTooLong = errors.New("Comments cannot exceed 1000 characters.")
)

// ValidateCommentText trims text and checks it is non-empty and bounded.
// PRE: none
// POST: returns the trimmed text or an error describing the problem
func ValidateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyComment
	}
	if len([]rune(text)) > MaxCommentLength {
		return "", ErrCommentTooLong
	}
	return text, nil
}

// IsValidDate reports whether s is a YYYY-MM-DD calendar date.
func IsValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatDate renders t as YYYY-MM-DD in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateLong renders a YYYY-MM-DD date in the long form shown on
// the dashboard and list ("2024년 3월 1일"). Invalid input renders empty.
func FormatDateLong(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format("2006년 1월 2일")
}
