package projections

import (
	"context"
	"fmt"
	"time"

	domainAttendance "checkin/internal/domain/attendance"
)

// GetDashboardQuery carries query parameters.
type GetDashboardQuery struct {
	MemberID int
	Now      time.Time
}

// GetDashboardResult carries the query result.
type GetDashboardResult struct {
	Today          string // YYYY-MM-DD
	TodayLong      string
	CheckedInToday bool
	TodayRecordID  string // set when CheckedInToday
	TotalCheckIns  int    // all-time for this member
}

// GetDashboardDeps holds dependencies for GetDashboard.
type GetDashboardDeps struct {
	AttendanceReader AttendanceReader
}

// QueryGetDashboard summarises the member's check-ins for the dashboard.
// PRE: MemberID is non-zero
// POST: Today is formatted in Now's location
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	today := domainAttendance.FormatDate(query.Now)
	result := GetDashboardResult{
		Today:     today,
		TodayLong: domainAttendance.FormatDateLong(today),
	}

	records, err := deps.AttendanceReader.ListAttendances(ctx)
	if err != nil {
		return result, fmt.Errorf("list attendances: %w", err)
	}
	for _, r := range records {
		if r.MemberID != query.MemberID {
			continue
		}
		result.TotalCheckIns++
		if r.Date == today && !result.CheckedInToday {
			result.CheckedInToday = true
			result.TodayRecordID = r.ID
		}
	}
	return result, nil
}
