package projections

import (
	"context"
	"errors"
	"testing"

	"checkin/internal/domain/apperr"
	domainAttendance "checkin/internal/domain/attendance"
)

func detailAPI() *fakeAPI {
	return &fakeAPI{
		members: testMembers,
		details: map[string]domainAttendance.Detail{
			"a1": {
				ID:       "a1",
				MemberID: 1,
				Date:     "2024-03-01",
				Likes:    []domainAttendance.Like{{ID: 7, MemberID: 2, MemberName: "Lee Hana"}},
				Comments: []domainAttendance.Comment{
					{ID: 30, MemberID: 2, MemberName: "Lee Hana", Text: "first"},
					{ID: 31, MemberID: 3, MemberName: "Park Jisoo", Text: "second"},
				},
			},
		},
	}
}

// TestQueryGetAttendanceDetail_ViewerPermissions verifies like state and comment permissions.
func TestQueryGetAttendanceDetail_ViewerPermissions(t *testing.T) {
	api := detailAPI()
	res, err := QueryGetAttendanceDetail(context.Background(),
		GetAttendanceDetailQuery{AttendanceID: "a1", ViewerID: 2},
		GetAttendanceDetailDeps{AttendanceReader: api, MemberReader: api},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OwnerName != "Kim Minji" {
		t.Errorf("OwnerName = %q", res.OwnerName)
	}
	if res.IsOwner {
		t.Error("viewer 2 does not own a1")
	}
	if !res.LikedByViewer || res.ViewerLikeID != 7 {
		t.Errorf("LikedByViewer=%v ViewerLikeID=%d; want true, 7", res.LikedByViewer, res.ViewerLikeID)
	}
	if len(res.Comments) != 2 || !res.Comments[0].Editable || res.Comments[1].Editable {
		t.Errorf("Comments = %+v; want only the first editable", res.Comments)
	}
	if res.DateLong != "2024년 3월 1일" {
		t.Errorf("DateLong = %q", res.DateLong)
	}
}

// TestQueryGetAttendanceDetail_NotFound verifies the error kind propagates.
func TestQueryGetAttendanceDetail_NotFound(t *testing.T) {
	api := detailAPI()
	_, err := QueryGetAttendanceDetail(context.Background(),
		GetAttendanceDetailQuery{AttendanceID: "missing", ViewerID: 1},
		GetAttendanceDetailDeps{AttendanceReader: api},
	)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

// TestQueryGetAttendanceDetail_MemberFetchFails verifies the owner falls back to unknown.
func TestQueryGetAttendanceDetail_MemberFetchFails(t *testing.T) {
	api := detailAPI()
	api.membersErr = apperr.Network("down", nil)
	res, err := QueryGetAttendanceDetail(context.Background(),
		GetAttendanceDetailQuery{AttendanceID: "a1", ViewerID: 1},
		GetAttendanceDetailDeps{AttendanceReader: api, MemberReader: api},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OwnerName != "unknown" || !res.IsOwner || res.LikedByViewer {
		t.Errorf("res = %+v", res)
	}
}
