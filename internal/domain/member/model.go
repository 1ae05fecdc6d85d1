package member

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxNameLength bounds the user-editable name field.
const MaxNameLength = 100

// UnknownName is displayed for member ids that do not resolve.
const UnknownName = "unknown"

// Member is a person who checks in. ID is assigned by the API.
type Member struct {
	ID   int
	Name string
}

// NameIndex resolves member ids to display names.
type NameIndex map[int]string

// NewNameIndex builds a lookup from a member list.
// PRE: none
// POST: later duplicates overwrite earlier ones
func NewNameIndex(members []Member) NameIndex {
	idx := make(NameIndex, len(members))
	for _, m := range members {
		idx[m.ID] = m.Name
	}
	return idx
}

// Name returns the display name for id and whether it resolved.
// Unresolved ids return UnknownName, false.
func (idx NameIndex) Name(id int) (string, bool) {
	if name, ok := idx[id]; ok {
		return name, true
	}
	return UnknownName, false
}

// fold is shared by every name comparison; cases.Caser is not safe for
// concurrent use, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// NameContains reports whether name contains term, ignoring case.
// An empty term matches everything.
// PRE: none
// POST: comparison uses Unicode case folding
func NameContains(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(fold(name), fold(term))
}

// FilterByName returns the members whose name contains term.
// INVARIANT: input slice is not modified
func FilterByName(members []Member, term string) []Member {
	term = strings.TrimSpace(term)
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if NameContains(m.Name, term) {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the member with the given id.
func Find(members []Member, id int) (Member, bool) {
	for _, m := range members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}
