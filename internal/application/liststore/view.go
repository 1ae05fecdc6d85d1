package liststore

import (
	"context"

	"checkin/internal/application/listutil"
	"checkin/internal/application/projections"
	domainAttendance "checkin/internal/domain/attendance"
)

// View is the list page's state: a Store plus the user's filter.
// Every setter recomputes the visible sequence and re-clamps the page.
// A View belongs to one request and is not safe for concurrent use.
type View struct {
	store   *Store
	filter  listutil.FilterState
	visible []domainAttendance.Record
}

// NewView creates a View over store with the default filter.
func NewView(store *Store) *View {
	v := &View{store: store, filter: listutil.DefaultFilterState()}
	v.recompute()
	return v
}

// Apply replaces the whole filter state at once (used when the state
// arrives from a query string).
// POST: CurrentPage is clamped to the new visible count once the store
// has loaded; before the first load the requested page is kept
func (v *View) Apply(f listutil.FilterState) {
	v.filter = f
	v.filter.SortOrder = listutil.ParseSortOrder(string(f.SortOrder))
	v.recompute()
}

// SetSearchTerm sets the member-name search.
func (v *View) SetSearchTerm(term string) {
	v.filter.SearchTerm = term
	v.recompute()
}

// SetDateFilter sets the exact YYYY-MM-DD date; empty clears it.
func (v *View) SetDateFilter(date string) {
	v.filter.DateFilter = date
	v.recompute()
}

// SetSortOrder sets the date order.
func (v *View) SetSortOrder(order listutil.SortOrder) {
	v.filter.SortOrder = order
	v.recompute()
}

// SetPage moves to page, clamped to the available range.
func (v *View) SetPage(page int) {
	v.filter.CurrentPage = page
	v.clampPage()
}

// Refresh reloads the store and recomputes. On failure the previous
// data stays visible and the error is returned for display.
// PRE: ctx is valid
// POST: CurrentPage is clamped to the (possibly new) visible count
func (v *View) Refresh(ctx context.Context) error {
	err := v.store.Load(ctx)
	v.recompute()
	return err
}

func (v *View) recompute() {
	records, members := v.store.Snapshot()
	v.visible = projections.VisibleAttendances(records, members, v.filter)
	v.clampPage()
}

func (v *View) clampPage() {
	if v.store.State() == StateIdle {
		// nothing loaded yet, so there is no count to clamp against
		v.filter.CurrentPage = max(v.filter.CurrentPage, 1)
		return
	}
	v.filter.CurrentPage = listutil.ClampPage(v.filter.CurrentPage, len(v.visible), listutil.PageSize)
}

// Filter returns the current filter state.
func (v *View) Filter() listutil.FilterState {
	return v.filter
}

// Visible returns the filtered, sorted sequence before pagination.
func (v *View) Visible() []domainAttendance.Record {
	return v.visible
}

// Loaded returns how many records the store holds before filtering.
func (v *View) Loaded() int {
	records, _ := v.store.Snapshot()
	return len(records)
}

// PageInfo returns pagination metadata for the current page.
func (v *View) PageInfo() listutil.PageInfo {
	return listutil.NewPageInfo(v.filter.CurrentPage, listutil.PageSize, len(v.visible))
}

// CurrentPage returns the records on the current page.
// POST: never fails, since CurrentPage is always clamped
func (v *View) CurrentPage() []domainAttendance.Record {
	page, err := listutil.Page(v.visible, listutil.PageSize, v.filter.CurrentPage)
	if err != nil {
		return []domainAttendance.Record{}
	}
	return page
}

// CurrentRows returns the current page joined with member names.
func (v *View) CurrentRows() []projections.AttendanceRow {
	_, members := v.store.Snapshot()
	return projections.AttendanceRows(v.CurrentPage(), members)
}

// State exposes the underlying store's lifecycle state.
func (v *View) State() State {
	return v.store.State()
}
