package orchestrators

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
	domainSession "checkin/internal/domain/session"
)

var fixedTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// fakeAPI is an in-memory stand-in for the REST API.
type fakeAPI struct {
	mu         sync.Mutex
	members    map[int]domainMember.Member
	details    map[string]domainAttendance.Detail
	order      []string // attendance ids in creation order
	nextID     int
	writeErr   error // returned by every write when set
	getErr     error // returned by GetAttendance when set
	anonCreate bool  // CreateAttendance stores the record but returns no id
	calls      []string
}

func newFakeAPI(members ...domainMember.Member) *fakeAPI {
	f := &fakeAPI{
		members: make(map[int]domainMember.Member),
		details: make(map[string]domainAttendance.Detail),
		nextID:  100,
	}
	for _, m := range members {
		f.members[m.ID] = m
	}
	return f
}

func (f *fakeAPI) seed(d domainAttendance.Detail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[d.ID] = d
	f.order = append(f.order, d.ID)
}

func (f *fakeAPI) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

// ListAttendances implements AttendanceAPI.
// PRE: none
// POST: returns summaries in creation order
func (f *fakeAPI) ListAttendances(_ context.Context) ([]domainAttendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListAttendances")
	out := make([]domainAttendance.Record, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.details[id].Summary())
	}
	return out, nil
}

// GetAttendance implements AttendanceAPI.
// PRE: id is non-empty
// POST: returns a copy of the detail or NotFound
func (f *fakeAPI) GetAttendance(_ context.Context, id string) (domainAttendance.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetAttendance")
	if f.getErr != nil {
		return domainAttendance.Detail{}, f.getErr
	}
	d, ok := f.details[id]
	if !ok {
		return domainAttendance.Detail{}, apperr.NotFound("Attendance not found.")
	}
	d.Likes = slices.Clone(d.Likes)
	d.Comments = slices.Clone(d.Comments)
	return d, nil
}

// CreateAttendance implements AttendanceAPI.
// PRE: memberID exists
// POST: a record dated fixedTime is stored; duplicates per day are rejected
func (f *fakeAPI) CreateAttendance(_ context.Context, memberID int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateAttendance")
	if f.writeErr != nil {
		return "", f.writeErr
	}
	date := domainAttendance.FormatDate(fixedTime)
	for _, d := range f.details {
		if d.MemberID == memberID && d.Date == date {
			return "", apperr.Validation("Already checked in today.")
		}
	}
	id := strconv.Itoa(f.id())
	f.details[id] = domainAttendance.Detail{ID: id, MemberID: memberID, Date: date}
	f.order = append(f.order, id)
	if f.anonCreate {
		return "", nil
	}
	return id, nil
}

// DeleteAttendance implements AttendanceAPI.
// PRE: id exists
// POST: the record is removed
func (f *fakeAPI) DeleteAttendance(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteAttendance")
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.details, id)
	f.order = slices.DeleteFunc(f.order, func(s string) bool { return s == id })
	return nil
}

// AddLike implements AttendanceAPI.
// PRE: attendanceID exists
// POST: a like is appended
func (f *fakeAPI) AddLike(_ context.Context, attendanceID string, memberID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddLike")
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	d, ok := f.details[attendanceID]
	if !ok {
		return 0, apperr.NotFound("Attendance not found.")
	}
	like := domainAttendance.Like{ID: f.id(), MemberID: memberID, MemberName: f.members[memberID].Name}
	d.Likes = append(slices.Clone(d.Likes), like)
	f.details[attendanceID] = d
	return like.ID, nil
}

// DeleteLike implements AttendanceAPI.
// PRE: likeID exists
// POST: the like is removed wherever it is
func (f *fakeAPI) DeleteLike(_ context.Context, likeID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteLike")
	if f.writeErr != nil {
		return f.writeErr
	}
	for id, d := range f.details {
		d.Likes = slices.DeleteFunc(slices.Clone(d.Likes), func(l domainAttendance.Like) bool { return l.ID == likeID })
		f.details[id] = d
	}
	return nil
}

// AddComment implements AttendanceAPI.
// PRE: attendanceID exists
// POST: a comment is appended
func (f *fakeAPI) AddComment(_ context.Context, attendanceID string, memberID int, text string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddComment")
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	d, ok := f.details[attendanceID]
	if !ok {
		return 0, apperr.NotFound("Attendance not found.")
	}
	c := domainAttendance.Comment{ID: f.id(), MemberID: memberID, MemberName: f.members[memberID].Name, Text: text}
	d.Comments = append(slices.Clone(d.Comments), c)
	f.details[attendanceID] = d
	return c.ID, nil
}

// UpdateComment implements AttendanceAPI.
// PRE: commentID exists
// POST: the comment text is replaced
func (f *fakeAPI) UpdateComment(_ context.Context, commentID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateComment")
	if f.writeErr != nil {
		return f.writeErr
	}
	for id, d := range f.details {
		d.Comments = slices.Clone(d.Comments)
		for i := range d.Comments {
			if d.Comments[i].ID == commentID {
				d.Comments[i].Text = text
			}
		}
		f.details[id] = d
	}
	return nil
}

// DeleteComment implements AttendanceAPI.
// PRE: commentID exists
// POST: the comment is removed
func (f *fakeAPI) DeleteComment(_ context.Context, commentID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteComment")
	if f.writeErr != nil {
		return f.writeErr
	}
	for id, d := range f.details {
		d.Comments = slices.DeleteFunc(slices.Clone(d.Comments), func(c domainAttendance.Comment) bool { return c.ID == commentID })
		f.details[id] = d
	}
	return nil
}

// ListMembers implements MemberAPI.
// PRE: none
// POST: returns members ordered by id
func (f *fakeAPI) ListMembers(_ context.Context) ([]domainMember.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListMembers")
	out := make([]domainMember.Member, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b domainMember.Member) int { return a.ID - b.ID })
	return out, nil
}

// GetMember implements MemberAPI.
// PRE: none
// POST: returns the member or NotFound
func (f *fakeAPI) GetMember(_ context.Context, id int) (domainMember.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetMember")
	m, ok := f.members[id]
	if !ok {
		return domainMember.Member{}, apperr.NotFound("Member not found.")
	}
	return m, nil
}

// CreateMember implements MemberAPI.
// PRE: name is non-empty
// POST: a member is stored under a fresh id
func (f *fakeAPI) CreateMember(_ context.Context, name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateMember")
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	id := f.id()
	f.members[id] = domainMember.Member{ID: id, Name: name}
	return id, nil
}

// UpdateMember implements MemberAPI.
// PRE: id exists
// POST: the member's name is replaced
func (f *fakeAPI) UpdateMember(_ context.Context, id int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateMember")
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.members[id]; !ok {
		return apperr.NotFound("Member not found.")
	}
	f.members[id] = domainMember.Member{ID: id, Name: name}
	return nil
}

// DeleteMember implements MemberAPI.
// PRE: id exists
// POST: the member is removed
func (f *fakeAPI) DeleteMember(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteMember")
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.members, id)
	return nil
}

// mockSessionStore implements SessionStore for testing.
type mockSessionStore struct {
	sessions map[string]domainSession.Session
	saveErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]domainSession.Session)}
}

// Save implements SessionStore.
// PRE: s is valid
// POST: s is stored under its token
func (m *mockSessionStore) Save(_ context.Context, s domainSession.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[s.Token] = s
	return nil
}

// Delete implements SessionStore.
// PRE: none
// POST: token is removed
func (m *mockSessionStore) Delete(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

var errUpstream = apperr.Network("Could not reach the server.", errors.New("dial tcp: connection refused"))

func fixedSession() domainSession.Session {
	return domainSession.Session{Token: "tok", Member: domainMember.Member{ID: 1, Name: "Kim"}, CreatedAt: fixedTime}
}
