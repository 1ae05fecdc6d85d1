package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"checkin/internal/adapters/http/middleware"
	"checkin/internal/application/orchestrators"
	"checkin/internal/application/projections"
	"checkin/internal/domain/apperr"
	domainMember "checkin/internal/domain/member"
)

// homePage is the data for home.html.
type homePage struct {
	Search  string
	Members []domainMember.Member
	Total   int
	Error   string
}

// memberRequest is the JSON body for member writes.
type memberRequest struct {
	Name string `json:"name"`
}

// handleHome shows the member picker with an optional name search.
func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	page := homePage{Search: search}
	status := http.StatusOK

	result, err := projections.QueryGetMemberList(r.Context(), projections.GetMemberListQuery{Search: search}, projections.GetMemberListDeps{MemberReader: s.api})
	if err != nil {
		status = statusFor(err)
		page.Error = apperr.MessageOf(err)
		slog.Warn("request_failed", "path", r.URL.Path, "status", status, "error", err.Error())
	} else {
		page.Members = result.Members
		page.Total = result.Total
	}

	if !isHTMLRequest(r) {
		if err != nil {
			writeJSON(w, status, errorBody{Error: page.Error})
			return
		}
		writeJSON(w, status, toMembersJSON(page.Members))
		return
	}
	s.render(w, r, status, "home.html", page)
}

// handleCreateMember registers a member from the home page form.
func (s *server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	name, err := readMemberName(r)
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}
	m, err := orchestrators.ExecuteCreateMember(r.Context(), orchestrators.CreateMemberInput{Name: name}, orchestrators.MemberDeps{MemberAPI: s.api})
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}
	setFlash(w, fmt.Sprintf("Added %s.", m.Name))
	redirect(w, r, "/", http.StatusCreated, toMemberJSON(m))
}

// handleRenameMember changes a member's name. A logged-in member renaming
// themselves gets their session refreshed so the header shows the new name.
func (s *server) handleRenameMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id", "Member not found.")
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}
	name, err := readMemberName(r)
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}
	m, err := orchestrators.ExecuteRenameMember(r.Context(), orchestrators.RenameMemberInput{MemberID: id, Name: name}, orchestrators.MemberDeps{MemberAPI: s.api})
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.Member.ID == m.ID {
		sess.Member = m
		if err := s.sessions.Save(r.Context(), sess); err != nil {
			slog.Warn("auth_event", "event", "session_refresh_failed", "member_id", m.ID, "error", err.Error())
		}
	}

	setFlash(w, fmt.Sprintf("Renamed to %s.", m.Name))
	redirect(w, r, "/", http.StatusOK, toMemberJSON(m))
}

// handleDeleteMember removes a member. Deleting the logged-in member also
// ends the session.
func (s *server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id", "Member not found.")
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}
	members, err := orchestrators.ExecuteDeleteMember(r.Context(), orchestrators.DeleteMemberInput{MemberID: id}, orchestrators.MemberDeps{MemberAPI: s.api})
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.Member.ID == id {
		if err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{Token: sess.Token}, orchestrators.LogoutDeps{SessionStore: s.sessions}); err != nil {
			slog.Warn("auth_event", "event", "logout_failed", "error", err.Error())
		}
		middleware.ClearSessionCookie(w)
	}

	setFlash(w, "Member deleted.")
	redirect(w, r, "/", http.StatusOK, toMembersJSON(members))
}

// handleLogin starts a session for the member picked on the home page.
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PostFormValue("member_id"))
	if err != nil {
		s.renderError(w, r, apperr.Validation("Please select a member."), "/")
		return
	}
	sess, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{MemberID: id}, orchestrators.LoginDeps{
		MemberAPI:    s.api,
		SessionStore: s.sessions,
		Now:          s.now,
	})
	if err != nil {
		s.renderError(w, r, err, "/")
		return
	}
	middleware.SetSessionCookie(w, sess.Token)
	setFlash(w, fmt.Sprintf("Welcome, %s.", sess.Member.Name))
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout ends the current session.
func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{Token: token}, orchestrators.LogoutDeps{SessionStore: s.sessions}); err != nil {
		s.renderError(w, r, err, "/")
		return
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// readMemberName reads the name from a form or a JSON body.
func readMemberName(r *http.Request) (string, error) {
	if isJSONRequest(r) {
		var body memberRequest
		if err := strictDecode(r, &body); err != nil {
			return "", apperr.Validation("Invalid request body.")
		}
		return body.Name, nil
	}
	return r.PostFormValue("name"), nil
}

// pathInt parses a positive integer path value. Anything else is a
// missing resource.
func pathInt(r *http.Request, name, notFound string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n <= 0 {
		return 0, apperr.NotFound(notFound)
	}
	return n, nil
}

type memberJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func toMemberJSON(m domainMember.Member) memberJSON {
	return memberJSON{ID: m.ID, Name: m.Name}
}

func toMembersJSON(members []domainMember.Member) []memberJSON {
	out := make([]memberJSON, len(members))
	for i, m := range members {
		out[i] = toMemberJSON(m)
	}
	return out
}
