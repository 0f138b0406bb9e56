package listview

import (
	"context"
	"net/url"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
)

// Error is the display form of a failed fetch or mutation.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// View is an immutable snapshot of a screen.
type View[T any] struct {
	Screen          string          `json:"screen"`
	Query           string          `json:"query"`
	State           listquery.State `json:"state"`
	DebouncedSearch string          `json:"debouncedSearch"`
	Scope           string          `json:"scope,omitempty"`
	Items           []T             `json:"items"`
	TotalCount      int             `json:"totalCount"`
	TotalPages      int             `json:"totalPages"`
	Loading         bool            `json:"loading"`
	Saving          bool            `json:"saving"`
	Error           *Error          `json:"error,omitempty"`
	Version         uint64          `json:"version"`
}

// Snapshot copies the current view. Query is the canonical query string
// to put in the address bar.
func (c *Controller[T]) Snapshot() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]T, len(c.items))
	copy(items, c.items)

	state := c.state
	if len(c.state.Filters) > 0 {
		state.Filters = make(map[string]string, len(c.state.Filters))
		for k, v := range c.state.Filters {
			state.Filters[k] = v
		}
	}

	return View[T]{
		Screen:          c.schema.Name,
		Query:           c.schema.EncodeString(c.state),
		State:           state,
		DebouncedSearch: c.debounced,
		Scope:           c.scope,
		Items:           items,
		TotalCount:      c.total,
		TotalPages:      listquery.TotalPages(c.total, c.state.PageSize),
		Loading:         c.loading,
		Saving:          c.saving,
		Error:           errorOf(c.err),
		Version:         c.version,
	}
}

// Screen is the type-erased face of a Controller used by the HTTP layer.
type Screen interface {
	Name() string
	Start()
	Load(values url.Values)
	Apply(ch Change)
	Reset()
	Reload()
	View() any
	Subscribe() (<-chan struct{}, func())
	Wait()
	Close()
}

// View returns Snapshot as an untyped value.
func (c *Controller[T]) View() any {
	return c.Snapshot()
}

// Deleter removes records by id on the server.
type Deleter func(ctx context.Context, ids []int64) error

var _ Screen = (*Controller[struct{}])(nil)
