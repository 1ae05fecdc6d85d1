package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"checkin/internal/adapters/http/middleware"
	sessionStore "checkin/internal/adapters/storage/session"
	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
	domainSession "checkin/internal/domain/session"
)

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

var errUnreachable = apperr.Network("Could not reach the server.", errors.New("dial tcp: connection refused"))

// mockAPI is an in-memory stand-in for the attendance REST API.
type mockAPI struct {
	mu      sync.Mutex
	members map[int]domainMember.Member
	details map[string]domainAttendance.Detail
	order   []string
	nextID  int
	listErr error // returned by ListAttendances when set

	anonCreate bool // CreateAttendance stores the record but returns no id
}

func newMockAPI(members ...domainMember.Member) *mockAPI {
	m := &mockAPI{
		members: make(map[int]domainMember.Member),
		details: make(map[string]domainAttendance.Detail),
		nextID:  500,
	}
	for _, mem := range members {
		m.members[mem.ID] = mem
	}
	return m
}

func (m *mockAPI) seed(details ...domainAttendance.Detail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range details {
		m.details[d.ID] = d
		m.order = append(m.order, d.ID)
	}
}

func (m *mockAPI) id() int {
	m.nextID++
	return m.nextID
}

// ListAttendances returns summaries in creation order.
// PRE: none
// POST: returns records or listErr
func (m *mockAPI) ListAttendances(_ context.Context) ([]domainAttendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domainAttendance.Record, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.details[id].Summary())
	}
	return out, nil
}

// GetAttendance returns a copy of one detail.
// PRE: id is non-empty
// POST: returns the detail or NotFound
func (m *mockAPI) GetAttendance(_ context.Context, id string) (domainAttendance.Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[id]
	if !ok {
		return domainAttendance.Detail{}, apperr.NotFound("Attendance record not found.")
	}
	d.Likes = slices.Clone(d.Likes)
	d.Comments = slices.Clone(d.Comments)
	return d, nil
}

// CreateAttendance stores a record dated testNow.
// PRE: memberID exists
// POST: one record per member per day
func (m *mockAPI) CreateAttendance(_ context.Context, memberID int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	date := domainAttendance.FormatDate(testNow)
	for _, d := range m.details {
		if d.MemberID == memberID && d.Date == date {
			return "", apperr.Validation("Already checked in today.")
		}
	}
	id := strconv.Itoa(m.id())
	m.details[id] = domainAttendance.Detail{ID: id, MemberID: memberID, Date: date}
	m.order = append(m.order, id)
	if m.anonCreate {
		return "", nil
	}
	return id, nil
}

// DeleteAttendance removes a record.
// PRE: id exists
// POST: the record is gone
func (m *mockAPI) DeleteAttendance(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.details, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

// AddLike appends a like.
// PRE: attendanceID exists
// POST: returns the new like id
func (m *mockAPI) AddLike(_ context.Context, attendanceID string, memberID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.details[attendanceID]
	like := domainAttendance.Like{ID: m.id(), MemberID: memberID, MemberName: m.members[memberID].Name}
	d.Likes = append(slices.Clone(d.Likes), like)
	m.details[attendanceID] = d
	return like.ID, nil
}

// DeleteLike removes a like wherever it is.
// PRE: none
// POST: no record holds likeID
func (m *mockAPI) DeleteLike(_ context.Context, likeID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.details {
		d.Likes = slices.DeleteFunc(slices.Clone(d.Likes), func(l domainAttendance.Like) bool { return l.ID == likeID })
		m.details[id] = d
	}
	return nil
}

// AddComment appends a comment.
// PRE: attendanceID exists
// POST: returns the new comment id
func (m *mockAPI) AddComment(_ context.Context, attendanceID string, memberID int, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.details[attendanceID]
	c := domainAttendance.Comment{ID: m.id(), MemberID: memberID, MemberName: m.members[memberID].Name, Text: text}
	d.Comments = append(slices.Clone(d.Comments), c)
	m.details[attendanceID] = d
	return c.ID, nil
}

// UpdateComment replaces a comment's text.
// PRE: commentID exists
// POST: the text is replaced
func (m *mockAPI) UpdateComment(_ context.Context, commentID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.details {
		d.Comments = slices.Clone(d.Comments)
		for i := range d.Comments {
			if d.Comments[i].ID == commentID {
				d.Comments[i].Text = text
			}
		}
		m.details[id] = d
	}
	return nil
}

// DeleteComment removes a comment.
// PRE: none
// POST: no record holds commentID
func (m *mockAPI) DeleteComment(_ context.Context, commentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.details {
		d.Comments = slices.DeleteFunc(slices.Clone(d.Comments), func(c domainAttendance.Comment) bool { return c.ID == commentID })
		m.details[id] = d
	}
	return nil
}

// ListMembers returns members ordered by id.
// PRE: none
// POST: returns all members
func (m *mockAPI) ListMembers(_ context.Context) ([]domainMember.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domainMember.Member, 0, len(m.members))
	for _, mem := range m.members {
		out = append(out, mem)
	}
	slices.SortFunc(out, func(a, b domainMember.Member) int { return a.ID - b.ID })
	return out, nil
}

// GetMember returns one member.
// PRE: none
// POST: returns the member or NotFound
func (m *mockAPI) GetMember(_ context.Context, id int) (domainMember.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mem, ok := m.members[id]
	if !ok {
		return domainMember.Member{}, apperr.NotFound("Member not found.")
	}
	return mem, nil
}

// CreateMember stores a member.
// PRE: name is non-empty
// POST: returns the new id
func (m *mockAPI) CreateMember(_ context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.members[id] = domainMember.Member{ID: id, Name: name}
	return id, nil
}

// UpdateMember renames a member.
// PRE: id exists
// POST: the name is replaced
func (m *mockAPI) UpdateMember(_ context.Context, id int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.members[id]; !ok {
		return apperr.NotFound("Member not found.")
	}
	m.members[id] = domainMember.Member{ID: id, Name: name}
	return nil
}

// DeleteMember removes a member.
// PRE: none
// POST: the member is gone
func (m *mockAPI) DeleteMember(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, id)
	return nil
}

// testEnv is a server wired to a mock API and an in-memory session
// store, with session resolution but without CSRF.
type testEnv struct {
	api      *mockAPI
	sessions *sessionStore.MemoryStore
	handler  http.Handler
}

func newTestEnv(t *testing.T, api *mockAPI) *testEnv {
	t.Helper()
	clock := func() time.Time { return testNow }
	sessions := sessionStore.NewMemoryStore(sessionStore.WithNow(clock))
	s, err := newServer(Deps{API: api, Sessions: sessions, Now: clock})
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	return &testEnv{api: api, sessions: sessions, handler: middleware.Auth(sessions)(s.routes())}
}

// login stores a session for member and returns its cookie.
func (e *testEnv) login(t *testing.T, member domainMember.Member) *http.Cookie {
	t.Helper()
	sess := domainSession.Session{Token: "tok-" + strconv.Itoa(member.ID), Member: member, CreatedAt: testNow}
	if err := e.sessions.Save(context.Background(), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return &http.Cookie{Name: middleware.SessionCookieName, Value: sess.Token}
}

// do sends a request. form, when non-empty, is sent url-encoded; accept
// selects HTML ("text/html") or JSON ("application/json") responses.
func (e *testEnv) do(method, target, form, accept string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form))
	if form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", accept)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// doJSON sends a JSON body and asks for JSON back.
func (e *testEnv) doJSON(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

const (
	acceptHTML = "text/html,application/xhtml+xml"
	acceptJSON = "application/json"
)
