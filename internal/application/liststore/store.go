// Package liststore holds the raw attendance records and members fetched
// from the API and composes the filtered, paginated view of them.
package liststore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"checkin/internal/application/projections"
	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
)

// State is the load lifecycle of a Store.
type State uint8

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Source is what a Store loads from.
type Source interface {
	projections.AttendanceReader
	projections.MemberReader
}

// Store holds the raw collections. Load replaces both together; readers
// never observe records from one load paired with members from another.
// Load coalescing is per Store: the list handler mounts a Store per
// request, so overlapping page loads each make their own API calls.
type Store struct {
	src   Source
	group singleflight.Group

	mu      sync.RWMutex
	state   State
	records []domainAttendance.Record
	members []domainMember.Member
	lastErr error
}

// New creates an idle, empty Store.
func New(src Source) *Store {
	return &Store{src: src}
}

type snapshot struct {
	records []domainAttendance.Record
	members []domainMember.Member
}

// Load fetches records and members and swaps them in.
// Concurrent calls on the same Store share one in-flight fetch. There is
// no retry.
// PRE: ctx is valid
// POST: on success both collections are replaced and State is Ready; on
// failure collections are unchanged, State is Error and the error is returned
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	_, err, shared := s.group.Do("load", func() (any, error) {
		return s.fetch(ctx)
	})
	if shared {
		slog.Debug("list_load_coalesced")
	}
	return err
}

func (s *Store) fetch(ctx context.Context) (snapshot, error) {
	records, err := s.src.ListAttendances(ctx)
	if err != nil {
		s.fail(err)
		return snapshot{}, fmt.Errorf("load attendances: %w", err)
	}
	members, err := s.src.ListMembers(ctx)
	if err != nil {
		s.fail(err)
		return snapshot{}, fmt.Errorf("load members: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.members = members
	s.state = StateReady
	s.lastErr = nil
	s.mu.Unlock()

	slog.Debug("list_loaded", "records", len(records), "members", len(members))
	return snapshot{records: records, members: members}, nil
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastErr = err
	s.mu.Unlock()
	slog.Warn("list_load_failed", "error", err)
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the error from the last failed load, or nil.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Snapshot returns the current collections. Callers must treat them as
// read-only; a later Load swaps in new slices rather than writing to these.
func (s *Store) Snapshot() ([]domainAttendance.Record, []domainMember.Member) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.members
}
