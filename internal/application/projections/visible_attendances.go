package projections

import (
	"cmp"
	"slices"

	"checkin/internal/application/listutil"
	domainAttendance "checkin/internal/domain/attendance"
	domainMember "checkin/internal/domain/member"
)

// AttendanceRow is a record joined with its owner's display name.
type AttendanceRow struct {
	domainAttendance.Record
	MemberName string
	DateLong   string // "2024년 3월 1일"
}

// VisibleAttendances computes the filtered, date-sorted view of records.
// A record is kept when its owner's name contains filter.SearchTerm
// (case-insensitive; unresolved owners match only an empty term) and, if
// filter.DateFilter is set, its Date equals it exactly.
// PRE: none
// POST: returns a new slice; records and members are not modified; rows
// sharing a date keep their source order
func VisibleAttendances(records []domainAttendance.Record, members []domainMember.Member, filter listutil.FilterState) []domainAttendance.Record {
	names := domainMember.NewNameIndex(members)
	out := make([]domainAttendance.Record, 0, len(records))
	for _, r := range records {
		if matches(r, names, filter) {
			out = append(out, r)
		}
	}
	// Dates are YYYY-MM-DD, so string order is calendar order.
	slices.SortStableFunc(out, func(a, b domainAttendance.Record) int {
		if filter.SortOrder == listutil.SortAsc {
			return cmp.Compare(a.Date, b.Date)
		}
		return cmp.Compare(b.Date, a.Date)
	})
	return out
}

func matches(r domainAttendance.Record, names domainMember.NameIndex, filter listutil.FilterState) bool {
	if filter.DateFilter != "" && r.Date != filter.DateFilter {
		return false
	}
	if filter.SearchTerm == "" {
		return true
	}
	name, ok := names.Name(r.MemberID)
	if !ok {
		return false
	}
	return domainMember.NameContains(name, filter.SearchTerm)
}

// AttendanceRows joins records with member names for display.
// PRE: none
// POST: len(result) == len(records), same order
func AttendanceRows(records []domainAttendance.Record, members []domainMember.Member) []AttendanceRow {
	names := domainMember.NewNameIndex(members)
	rows := make([]AttendanceRow, len(records))
	for i, r := range records {
		name, _ := names.Name(r.MemberID)
		rows[i] = AttendanceRow{Record: r, MemberName: name, DateLong: domainAttendance.FormatDateLong(r.Date)}
	}
	return rows
}
