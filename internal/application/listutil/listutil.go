package listutil

import (
	"errors"
	"net/url"
	"strconv"
	"time"
)

// PageSize is the fixed number of rows per page. It is not configurable.
const PageSize = 5

// ErrPageOutOfRange is returned by Page when pageNumber is outside
// [1, TotalPages]. Callers clamp with ClampPage before slicing.
var ErrPageOutOfRange = errors.New("page number out of range")

// SortOrder orders the list by date.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// ParseSortOrder returns the order named by s, defaulting to SortDesc
// (newest first) for anything unrecognised.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// FilterState is the session-local list state. It is rebuilt from the
// query string on every request and never persisted.
type FilterState struct {
	SearchTerm  string    // member-name substring
	DateFilter  string    // YYYY-MM-DD, empty = all dates
	SortOrder   SortOrder // by date
	CurrentPage int       // 1-indexed
}

// DefaultFilterState is the state on a fresh mount.
func DefaultFilterState() FilterState {
	return FilterState{SortOrder: SortDesc, CurrentPage: 1}
}

// HasFilters reports whether a search term or date narrows the list.
func (f FilterState) HasFilters() bool {
	return f.SearchTerm != "" || f.DateFilter != ""
}

// ParseFilterState extracts q, date, dir and page from URL query values.
// PRE: none
// POST: returns a FilterState with defaults applied; q is kept verbatim,
// an invalid date is dropped and a non-positive page becomes 1 (range
// clamping happens later, once the filtered count is known)
func ParseFilterState(q url.Values) FilterState {
	fs := DefaultFilterState()
	fs.SearchTerm = q.Get("q")
	if d := q.Get("date"); isValidDate(d) {
		fs.DateFilter = d
	}
	fs.SortOrder = ParseSortOrder(q.Get("dir"))
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 1 {
		fs.CurrentPage = page
	}
	return fs
}

// Query encodes the state for links. Defaults are omitted so URLs stay short.
// PRE: none
// POST: ParseFilterState(f.Query()) == f for any valid f
func (f FilterState) Query() url.Values {
	q := url.Values{}
	if f.SearchTerm != "" {
		q.Set("q", f.SearchTerm)
	}
	if f.DateFilter != "" {
		q.Set("date", f.DateFilter)
	}
	if f.SortOrder == SortAsc {
		q.Set("dir", string(SortAsc))
	}
	if f.CurrentPage > 1 {
		q.Set("page", strconv.Itoa(f.CurrentPage))
	}
	return q
}

// WithPage returns a copy of f pointing at page.
func (f FilterState) WithPage(page int) FilterState {
	f.CurrentPage = page
	return f
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // max(1, ceil(Total / PerPage))
}

// TotalPages returns ceil(total/perPage), minimum 1.
// PRE: total >= 0, perPage > 0
// POST: returns >= 1
func TotalPages(total, perPage int) int {
	pages := (total + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage forces page into [1, TotalPages(total, perPage)].
func ClampPage(page, total, perPage int) int {
	if last := TotalPages(total, perPage); page > last {
		page = last
	}
	if page < 1 {
		page = 1
	}
	return page
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0, page >= 1
// POST: returns PageInfo with TotalPages computed; Page clamped to valid range
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = PageSize
	}
	return PageInfo{
		Page:       ClampPage(page, total, perPage),
		PerPage:    perPage,
		Total:      total,
		TotalPages: TotalPages(total, perPage),
	}
}

// Offset returns the index of the first row on the current page.
// PRE: PageInfo is valid
// POST: Returns (Page-1) * PerPage
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// PRE: PageInfo is valid
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// PRE: PageInfo is valid
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// Prev returns the previous page number, clamped to 1.
func (p PageInfo) Prev() int { return max(p.Page-1, 1) }

// Next returns the next page number, clamped to TotalPages.
func (p PageInfo) Next() int { return min(p.Page+1, p.TotalPages) }

// PageNumbers returns the page numbers to display in pagination controls.
// Shows at most 5 pages centered around the current page.
// PRE: PageInfo is valid
// POST: Returns slice of at most 5 page numbers centered on current page
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(p.Page-maxButtons/2, 1)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-maxButtons+1, 1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination returns true if pagination controls should be displayed.
// PRE: PageInfo is valid
// POST: Returns true if Total > PerPage
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// Page returns the pageNumber-th slice of seq.
// PRE: pageSize > 0
// POST: returns a capacity-clipped sub-slice (appending to it never writes
// into seq); an empty seq yields an empty page 1; pageNumber outside
// [1, TotalPages] returns ErrPageOutOfRange
func Page[T any](seq []T, pageSize, pageNumber int) ([]T, error) {
	if pageSize < 1 {
		return nil, errors.New("page size must be positive")
	}
	if pageNumber < 1 || pageNumber > TotalPages(len(seq), pageSize) {
		return nil, ErrPageOutOfRange
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(seq) {
		return []T{}, nil
	}
	end := min(start+pageSize, len(seq))
	return seq[start:end:end], nil
}

func isValidDate(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
