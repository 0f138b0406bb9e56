// Package listquery models what a user is looking at on a paginated,
// searchable, sortable list screen, and how that view is written to and read
// back from a URL query string.
package listquery

import (
	"slices"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Schema describes one list screen: which columns can be sorted, which extra
// filters exist and what a fresh visit looks like.
type Schema struct {
	Name            string
	SortFields      []string
	DefaultSortBy   string
	DefaultSortDesc bool
	DefaultPageSize int
	MaxPageSize     int
	Filters         []string
	// FilterValues restricts a filter to a closed set of values. Filters
	// without an entry accept any non-empty value.
	FilterValues map[string][]string
}

// State is the user's current view of a list.
type State struct {
	Search   string            `json:"search"`
	SortBy   string            `json:"sortBy"`
	SortDesc bool              `json:"sortDesc"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// Defaults returns the state of a first visit without query parameters.
func (s Schema) Defaults() State {
	return State{
		SortBy:   s.defaultSortBy(),
		SortDesc: s.DefaultSortDesc,
		Page:     1,
		PageSize: s.defaultPageSize(),
	}
}

func (s Schema) defaultSortBy() string {
	if s.DefaultSortBy != "" {
		return s.DefaultSortBy
	}
	if len(s.SortFields) > 0 {
		return s.SortFields[0]
	}
	return ""
}

func (s Schema) defaultPageSize() int {
	if s.DefaultPageSize > 0 {
		return s.DefaultPageSize
	}
	return DefaultPageSize
}

func (s Schema) maxPageSize() int {
	if s.MaxPageSize > 0 {
		return s.MaxPageSize
	}
	return MaxPageSize
}

// SortField resolves a requested sort column case-insensitively. Unknown
// columns fall back to the default.
func (s Schema) SortField(field string) string {
	for _, f := range s.SortFields {
		if strings.EqualFold(f, field) {
			return f
		}
	}
	return s.defaultSortBy()
}

// HasFilter reports whether key is a filter of this screen.
func (s Schema) HasFilter(key string) bool {
	for _, f := range s.Filters {
		if f == key {
			return true
		}
	}
	return false
}

// ValidFilter reports whether value may be kept for the filter key.
func (s Schema) ValidFilter(key, value string) bool {
	if value == "" || !s.HasFilter(key) {
		return false
	}
	allowed, ok := s.FilterValues[key]
	return !ok || slices.Contains(allowed, value)
}

// ValidPageSize reports whether n may be used as a page size.
func (s Schema) ValidPageSize(n int) bool {
	return n >= 1 && n <= s.maxPageSize()
}

// Normalize clamps every field of st into what this schema accepts.
func (s Schema) Normalize(st State) State {
	st.SortBy = s.SortField(st.SortBy)
	if st.Page < 1 {
		st.Page = 1
	}
	if !s.ValidPageSize(st.PageSize) {
		st.PageSize = s.defaultPageSize()
	}

	var filters map[string]string
	for k, v := range st.Filters {
		if !s.ValidFilter(k, v) {
			continue
		}
		if filters == nil {
			filters = make(map[string]string)
		}
		filters[k] = v
	}
	st.Filters = filters
	return st
}

// WithSearch changes the search text. A new filter invalidates old page
// offsets, so the page goes back to 1.
func (st State) WithSearch(search string) State {
	st.Search = search
	st.Page = 1
	return st
}

func (st State) WithSortBy(field string) State {
	st.SortBy = field
	st.Page = 1
	return st
}

func (st State) WithSortDesc(desc bool) State {
	st.SortDesc = desc
	st.Page = 1
	return st
}

func (st State) WithPageSize(size int) State {
	st.PageSize = size
	st.Page = 1
	return st
}

// WithFilter sets or, for an empty value, clears one extra filter.
func (st State) WithFilter(key, value string) State {
	filters := make(map[string]string, len(st.Filters)+1)
	for k, v := range st.Filters {
		filters[k] = v
	}
	if value == "" {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	if len(filters) == 0 {
		filters = nil
	}
	st.Filters = filters
	st.Page = 1
	return st
}

func (st State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	st.Page = page
	return st
}

// StepBack moves one page backwards, never below 1.
func (st State) StepBack() State {
	return st.WithPage(st.Page - 1)
}

// Filter returns the value of one extra filter.
func (st State) Filter(key string) string {
	return st.Filters[key]
}

// Equal compares two states field by field.
func (st State) Equal(other State) bool {
	if st.Search != other.Search || st.SortBy != other.SortBy || st.SortDesc != other.SortDesc ||
		st.Page != other.Page || st.PageSize != other.PageSize || len(st.Filters) != len(other.Filters) {
		return false
	}
	for k, v := range st.Filters {
		if ov, ok := other.Filters[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Request builds the server payload. It takes the debounced search, never
// the raw text the user is still typing.
func (st State) Request(debouncedSearch, scope string) Request {
	var filters map[string]string
	if len(st.Filters) > 0 {
		filters = make(map[string]string, len(st.Filters))
		for k, v := range st.Filters {
			filters[k] = v
		}
	}
	return Request{
		Search:   debouncedSearch,
		SortBy:   st.SortBy,
		SortDesc: st.SortDesc,
		Page:     st.Page,
		PageSize: st.PageSize,
		Filters:  filters,
		Scope:    scope,
	}
}

// Request is what a list fetch sends to the library API.
type Request struct {
	Search   string
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
	Filters  map[string]string
	Scope    string
}

// Key identifies the request tuple. Two requests with the same key would
// return the same page.
func (r Request) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Quote(r.Search))
	b.WriteByte('|')
	b.WriteString(r.SortBy)
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(r.SortDesc))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.Page))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(r.PageSize))
	b.WriteByte('|')
	b.WriteString(strconv.Quote(r.Scope))

	keys := make([]string, 0, len(r.Filters))
	for k := range r.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(r.Filters[k]))
	}
	return b.String()
}

// Page is one page of a server-side paginated collection.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
}

// TotalPages is ceil(totalCount/pageSize) with a floor of 1. It is derived
// from the server's total, never from the number of items on the page.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 || totalCount <= 0 {
		return 1
	}
	pages := totalCount / pageSize
	if totalCount%pageSize != 0 {
		pages++
	}
	return pages
}
