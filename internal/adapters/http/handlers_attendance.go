package web

import (
	"fmt"
	"net/http"

	"checkin/internal/adapters/http/middleware"
	"checkin/internal/application/listutil"
	"checkin/internal/application/liststore"
	"checkin/internal/application/orchestrators"
	"checkin/internal/application/projections"
	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
)

// dashboardPage is the data for dashboard.html.
type dashboardPage struct {
	projections.GetDashboardResult
	Error string
}

// listPage is the data for attendance_list.html.
type listPage struct {
	Filter  listutil.FilterState
	Rows    []projections.AttendanceRow
	Page    listutil.PageInfo
	Visible int // rows matching the filter
	Total   int // rows loaded
	Error   string
}

// detailPage is the data for attendance_detail.html.
type detailPage struct {
	projections.GetAttendanceDetailResult
	LoggedIn bool
}

// commentRequest is the JSON body for comment writes.
type commentRequest struct {
	AttendanceID string `json:"attendanceId"`
	Text         string `json:"text"`
}

// handleDashboard shows today's date and whether the member has checked in.
func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	status := http.StatusOK
	result, err := projections.QueryGetDashboard(r.Context(),
		projections.GetDashboardQuery{MemberID: sess.Member.ID, Now: s.now()},
		projections.GetDashboardDeps{AttendanceReader: s.api},
	)
	page := dashboardPage{GetDashboardResult: result}
	if err != nil {
		status = statusFor(err)
		page.Error = apperr.MessageOf(err)
	}
	s.render(w, r, status, "dashboard.html", page)
}

// handleCheckIn records today's attendance for the logged-in member.
func (s *server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	result, err := orchestrators.ExecuteCheckInMember(r.Context(),
		orchestrators.CheckInMemberInput{MemberID: sess.Member.ID},
		orchestrators.CheckInMemberDeps{AttendanceAPI: s.api, Now: s.now},
	)
	if err != nil {
		s.renderError(w, r, err, "/dashboard")
		return
	}
	setFlash(w, fmt.Sprintf("Checked in for %s.", result.DateLong))
	to := "/attendances"
	if result.Detail.ID != "" {
		to += "/" + result.Detail.ID
	}
	redirect(w, r, to, http.StatusCreated, toDetailJSON(result.Detail, sess.Member.ID))
}

// handleAttendanceList loads records and members, then applies the
// filter, sort and page from the query string. Each request mounts a
// fresh store; nothing is cached between requests.
func (s *server) handleAttendanceList(w http.ResponseWriter, r *http.Request) {
	view := liststore.NewView(liststore.New(s.api))
	err := view.Refresh(r.Context())
	view.Apply(listutil.ParseFilterState(r.URL.Query()))

	page := listPage{
		Filter:  view.Filter(),
		Rows:    view.CurrentRows(),
		Page:    view.PageInfo(),
		Visible: len(view.Visible()),
		Total:   view.Loaded(),
	}
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
		page.Error = apperr.MessageOf(err)
	}

	if !isHTMLRequest(r) {
		if err != nil {
			writeJSON(w, status, errorBody{Error: page.Error})
			return
		}
		writeJSON(w, status, toListJSON(page))
		return
	}
	s.render(w, r, status, "attendance_list.html", page)
}

// handleAttendanceDetail shows one record with its likes and comments.
// Anonymous viewers see it read-only.
func (s *server) handleAttendanceDetail(w http.ResponseWriter, r *http.Request) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	result, err := projections.QueryGetAttendanceDetail(r.Context(),
		projections.GetAttendanceDetailQuery{AttendanceID: r.PathValue("id"), ViewerID: sess.Member.ID},
		projections.GetAttendanceDetailDeps{AttendanceReader: s.api, MemberReader: s.api},
	)
	if err != nil {
		s.renderError(w, r, err, "/attendances")
		return
	}
	if !isHTMLRequest(r) {
		body := toDetailJSON(result.Detail, sess.Member.ID)
		body.MemberName = result.OwnerName
		writeJSON(w, http.StatusOK, body)
		return
	}
	s.render(w, r, http.StatusOK, "attendance_detail.html", detailPage{GetAttendanceDetailResult: result, LoggedIn: loggedIn})
}

// handleDeleteAttendance removes one of the member's own check-ins.
func (s *server) handleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	_, err := orchestrators.ExecuteDeleteAttendance(r.Context(),
		orchestrators.DeleteAttendanceInput{AttendanceID: id, MemberID: sess.Member.ID},
		orchestrators.DeleteAttendanceDeps{AttendanceAPI: s.api},
	)
	if err != nil {
		s.renderError(w, r, err, "/attendances/"+id)
		return
	}
	setFlash(w, "Check-in deleted.")
	redirect(w, r, "/attendances", http.StatusOK, struct {
		Deleted string `json:"deleted"`
	}{id})
}

// handleToggleLike likes or unlikes a record as the logged-in member.
func (s *server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	result, err := orchestrators.ExecuteToggleLike(r.Context(),
		orchestrators.ToggleLikeInput{AttendanceID: id, MemberID: sess.Member.ID},
		orchestrators.ToggleLikeDeps{AttendanceAPI: s.api},
	)
	if err != nil {
		s.renderError(w, r, err, "/attendances/"+id)
		return
	}
	redirect(w, r, "/attendances/"+id, http.StatusOK, toDetailJSON(result.Detail, sess.Member.ID))
}

// handleAddComment posts a comment on a record.
func (s *server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	id := r.PathValue("id")
	body, err := readComment(r)
	if err != nil {
		s.renderError(w, r, err, "/attendances/"+id)
		return
	}
	result, err := orchestrators.ExecuteAddComment(r.Context(),
		orchestrators.AddCommentInput{AttendanceID: id, MemberID: sess.Member.ID, Text: body.Text},
		orchestrators.CommentDeps{AttendanceAPI: s.api},
	)
	if err != nil {
		s.renderError(w, r, err, "/attendances/"+id)
		return
	}
	redirect(w, r, "/attendances/"+id+"#comments", http.StatusCreated, toDetailJSON(result.Detail, sess.Member.ID))
}

// handleEditComment changes the text of the member's own comment.
func (s *server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	commentID, err := pathInt(r, "id", "Comment not found.")
	if err != nil {
		s.renderError(w, r, err, "/attendances")
		return
	}
	body, err := readComment(r)
	if err != nil {
		s.renderError(w, r, err, "/attendances")
		return
	}
	back := "/attendances/" + body.AttendanceID
	result, err := orchestrators.ExecuteEditComment(r.Context(),
		orchestrators.EditCommentInput{AttendanceID: body.AttendanceID, CommentID: commentID, MemberID: sess.Member.ID, Text: body.Text},
		orchestrators.CommentDeps{AttendanceAPI: s.api},
	)
	if err != nil {
		s.renderError(w, r, err, back)
		return
	}
	setFlash(w, "Comment updated.")
	redirect(w, r, back+"#comments", http.StatusOK, toDetailJSON(result.Detail, sess.Member.ID))
}

// handleDeleteComment removes the member's own comment.
func (s *server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	commentID, err := pathInt(r, "id", "Comment not found.")
	if err != nil {
		s.renderError(w, r, err, "/attendances")
		return
	}
	body, err := readComment(r)
	if err != nil {
		s.renderError(w, r, err, "/attendances")
		return
	}
	back := "/attendances/" + body.AttendanceID
	result, err := orchestrators.ExecuteDeleteComment(r.Context(),
		orchestrators.DeleteCommentInput{AttendanceID: body.AttendanceID, CommentID: commentID, MemberID: sess.Member.ID},
		orchestrators.CommentDeps{AttendanceAPI: s.api},
	)
	if err != nil {
		s.renderError(w, r, err, back)
		return
	}
	setFlash(w, "Comment deleted.")
	redirect(w, r, back+"#comments", http.StatusOK, toDetailJSON(result.Detail, sess.Member.ID))
}

// readComment reads attendance_id and text from a form or a JSON body.
func readComment(r *http.Request) (commentRequest, error) {
	if isJSONRequest(r) {
		var body commentRequest
		if err := strictDecode(r, &body); err != nil {
			return commentRequest{}, apperr.Validation("Invalid request body.")
		}
		return body, nil
	}
	return commentRequest{
		AttendanceID: r.PostFormValue("attendance_id"),
		Text:         r.PostFormValue("text"),
	}, nil
}

type attendanceRowJSON struct {
	ID           string `json:"id"`
	MemberID     int    `json:"memberId"`
	MemberName   string `json:"memberName"`
	Date         string `json:"date"`
	LikeCount    int    `json:"likeCount"`
	CommentCount int    `json:"commentCount"`
}

type attendanceListJSON struct {
	SearchTerm string              `json:"searchTerm"`
	DateFilter string              `json:"dateFilter"`
	SortOrder  string              `json:"sortOrder"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
	Visible    int                 `json:"visible"`
	Total      int                 `json:"total"`
	Rows       []attendanceRowJSON `json:"rows"`
}

func toListJSON(p listPage) attendanceListJSON {
	rows := make([]attendanceRowJSON, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = attendanceRowJSON{
			ID:           r.ID,
			MemberID:     r.MemberID,
			MemberName:   r.MemberName,
			Date:         r.Date,
			LikeCount:    r.LikeCount,
			CommentCount: r.CommentCount,
		}
	}
	return attendanceListJSON{
		SearchTerm: p.Filter.SearchTerm,
		DateFilter: p.Filter.DateFilter,
		SortOrder:  string(p.Filter.SortOrder),
		Page:       p.Page.Page,
		PageSize:   p.Page.PerPage,
		TotalPages: p.Page.TotalPages,
		Visible:    p.Visible,
		Total:      p.Total,
		Rows:       rows,
	}
}

type likeJSON struct {
	ID         int    `json:"id"`
	MemberID   int    `json:"memberId"`
	MemberName string `json:"memberName"`
}

type commentJSON struct {
	ID         int    `json:"id"`
	MemberID   int    `json:"memberId"`
	MemberName string `json:"memberName"`
	Text       string `json:"text"`
	Editable   bool   `json:"editable"`
}

type attendanceDetailJSON struct {
	ID            string        `json:"id"`
	MemberID      int           `json:"memberId"`
	MemberName    string        `json:"memberName,omitempty"`
	Date          string        `json:"date"`
	LikedByViewer bool          `json:"likedByViewer"`
	LikeCount     int           `json:"likeCount"`
	Likes         []likeJSON    `json:"likes"`
	Comments      []commentJSON `json:"comments"`
}

func toDetailJSON(d domainAttendance.Detail, viewerID int) attendanceDetailJSON {
	out := attendanceDetailJSON{
		ID:            d.ID,
		MemberID:      d.MemberID,
		Date:          d.Date,
		LikedByViewer: d.IsLikedBy(viewerID),
		LikeCount:     len(d.Likes),
		Likes:         make([]likeJSON, len(d.Likes)),
		Comments:      make([]commentJSON, len(d.Comments)),
	}
	for i, l := range d.Likes {
		out.Likes[i] = likeJSON{ID: l.ID, MemberID: l.MemberID, MemberName: l.MemberName}
	}
	for i, c := range d.Comments {
		out.Comments[i] = commentJSON{ID: c.ID, MemberID: c.MemberID, MemberName: c.MemberName, Text: c.Text, Editable: c.CanEdit(viewerID)}
	}
	return out
}
