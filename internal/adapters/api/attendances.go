package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
)

// ListAttendances returns every attendance record in API order.
func (c *Client) ListAttendances(ctx context.Context) ([]domainAttendance.Record, error) {
	var dtos []attendanceDTO
	if err := c.do(ctx, call{method: http.MethodGet, route: "test-attendances", path: "test-attendances", out: &dtos}); err != nil {
		return nil, err
	}
	records := make([]domainAttendance.Record, len(dtos))
	for i, d := range dtos {
		records[i] = d.toDomain()
	}
	return records, nil
}

// GetAttendance returns one record with its likes and comments.
// PRE: id is non-empty
// POST: an array response yields its first element; an empty one is NotFound
func (c *Client) GetAttendance(ctx context.Context, id string) (domainAttendance.Detail, error) {
	if id == "" {
		return domainAttendance.Detail{}, apperr.Validation("Attendance id is required.")
	}
	var env detailEnvelope
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "test-attendances/{id}",
		path:   "test-attendances/" + url.PathEscape(id),
		out:    &env,
	})
	if err != nil {
		return domainAttendance.Detail{}, err
	}
	if !env.found {
		return domainAttendance.Detail{}, apperr.NotFound("Attendance record not found.")
	}
	detail := env.detail.toDomain()
	if detail.ID == "" {
		detail.ID = id
	}
	return detail, nil
}

// CreateAttendance checks memberID in for today and returns the new record id.
// The id is empty when the API answers 2xx without one.
func (c *Client) CreateAttendance(ctx context.Context, memberID int) (string, error) {
	var resp struct {
		ID flexID `json:"testAttendanceId"`
	}
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "test-attendances",
		path:   "test-attendances",
		body:   memberIDRequest{MemberID: memberID},
		out:    &resp,
	})
	return string(resp.ID), err
}

// DeleteAttendance removes a record.
func (c *Client) DeleteAttendance(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "test-attendances/{id}",
		path:   "test-attendances/" + url.PathEscape(id),
	})
}

// AddLike records memberID's like on a record and returns the like id.
func (c *Client) AddLike(ctx context.Context, attendanceID string, memberID int) (int, error) {
	var resp struct {
		ID int `json:"testLikeId"`
	}
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "test-attendances/{id}/test-likes",
		path:   "test-attendances/" + url.PathEscape(attendanceID) + "/test-likes",
		body:   memberIDRequest{MemberID: memberID},
		out:    &resp,
	})
	return resp.ID, err
}

// DeleteLike removes a like. The likes route is served outside the prefix.
func (c *Client) DeleteLike(ctx context.Context, likeID int) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		route:      "test-likes/{id}",
		path:       "test-likes/" + strconv.Itoa(likeID),
		unprefixed: true,
	})
}

// AddComment posts a comment and returns its id.
func (c *Client) AddComment(ctx context.Context, attendanceID string, memberID int, text string) (int, error) {
	var resp struct {
		ID int `json:"testCommentId"`
	}
	err := c.do(ctx, call{
		method: http.MethodPost,
		route:  "test-attendances/{id}/test-comments",
		path:   "test-attendances/" + url.PathEscape(attendanceID) + "/test-comments",
		body:   commentRequest{MemberID: memberID, Text: text},
		out:    &resp,
	})
	return resp.ID, err
}

// UpdateComment replaces a comment's text.
func (c *Client) UpdateComment(ctx context.Context, commentID int, text string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "test-comments/{id}",
		path:   "test-comments/" + strconv.Itoa(commentID),
		body:   commentRequest{Text: text},
	})
}

// DeleteComment removes a comment.
func (c *Client) DeleteComment(ctx context.Context, commentID int) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "test-comments/{id}",
		path:   "test-comments/" + strconv.Itoa(commentID),
	})
}
