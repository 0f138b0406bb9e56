package listquery

import (
	"net/url"
	"strconv"
)

// Query string keys.
const (
	KeySearch   = "search"
	KeySortBy   = "sortBy"
	KeyDesc     = "desc"
	KeyPage     = "page"
	KeyPageSize = "pageSize"
)

// Parse reads a state from a query string. Absent or malformed fields take
// the schema defaults; desc is true only for the literal "true".
func (s Schema) Parse(values url.Values) State {
	st := s.Defaults()

	if values == nil {
		return st
	}

	st.Search = values.Get(KeySearch)

	if v := values.Get(KeySortBy); v != "" {
		st.SortBy = s.SortField(v)
	}

	if _, ok := values[KeyDesc]; ok {
		st.SortDesc = values.Get(KeyDesc) == "true"
	}

	if n, err := strconv.Atoi(values.Get(KeyPage)); err == nil && n >= 1 {
		st.Page = n
	}

	if n, err := strconv.Atoi(values.Get(KeyPageSize)); err == nil && s.ValidPageSize(n) {
		st.PageSize = n
	}

	for _, key := range s.Filters {
		if v := values.Get(key); s.ValidFilter(key, v) {
			if st.Filters == nil {
				st.Filters = make(map[string]string)
			}
			st.Filters[key] = v
		}
	}

	return st
}

// Encode writes every field of st. The result replaces the whole query
// string rather than being merged into it.
func (s Schema) Encode(st State) url.Values {
	values := url.Values{}
	values.Set(KeySearch, st.Search)
	values.Set(KeySortBy, st.SortBy)
	values.Set(KeyDesc, strconv.FormatBool(st.SortDesc))
	values.Set(KeyPage, strconv.Itoa(st.Page))
	values.Set(KeyPageSize, strconv.Itoa(st.PageSize))

	for _, key := range s.Filters {
		if v := st.Filters[key]; v != "" {
			values.Set(key, v)
		}
	}
	return values
}

// EncodeString is Encode rendered as a query string with sorted keys.
func (s Schema) EncodeString(st State) string {
	return s.Encode(st).Encode()
}
