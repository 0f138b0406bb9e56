// Package listview is the paginated list controller shared by every list
// screen of the console.
//
// A Controller owns one screen's query state, its debounced search term,
// the page currently displayed and the server's total count. It issues one
// fetch per distinct request tuple, cancels the previous in-flight fetch
// whenever a new one is issued and drops any response whose sequence number
// is no longer the latest, so the last request always wins. Mutations run
// through the controller so the displayed page is reconciled only after the
// server confirmed the change.
package listview

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/internal/domain/listquery"
	"github.com/xiebiao/libadmin/pkg/debounce"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/logger"
	"github.com/xiebiao/libadmin/pkg/metrics"
)

// DefaultDebounce is the quiet period applied to search input.
const DefaultDebounce = 300 * time.Millisecond

// FetchFunc loads one page for a request.
type FetchFunc[T any] func(ctx context.Context, req listquery.Request) (listquery.Page[T], error)

// Options configure a Controller.
type Options[T any] struct {
	Schema listquery.Schema
	Fetch  FetchFunc[T]
	// ID returns the server id of an item; zero means the item has none yet.
	ID func(T) int64
	// Debounce is the search quiet period. Zero selects DefaultDebounce, a
	// negative value disables debouncing.
	Debounce time.Duration
	// Timeout bounds each fetch. Zero means no timeout.
	Timeout time.Duration
	// Scope narrows the list to a parent record, e.g. a category id.
	Scope string
	// Initial is the query string the screen was opened with.
	Initial url.Values
	// OnError sees every failed fetch that was still current.
	OnError func(error)
	Logger  *zap.Logger
}

// Controller is the state machine behind one list screen.
type Controller[T any] struct {
	schema    listquery.Schema
	fetch     FetchFunc[T]
	id        func(T) int64
	timeout   time.Duration
	onError   func(error)
	log       *zap.Logger
	debouncer *debounce.Debouncer

	baseCtx    context.Context
	cancelBase context.CancelFunc
	wg         sync.WaitGroup

	mu        sync.Mutex
	state     listquery.State
	debounced string
	scope     string
	items     []T
	total     int
	loading   bool
	saving    bool
	err       error
	seq       uint64
	lastKey   string
	cancel    context.CancelFunc
	version   uint64
	closed    bool
	subs      map[int]chan struct{}
	nextSub   int
}

// New creates a controller with its state parsed from opts.Initial. No
// fetch is issued until Start.
func New[T any](opts Options[T]) *Controller[T] {
	window := opts.Debounce
	switch {
	case window == 0:
		window = DefaultDebounce
	case window < 0:
		window = 0
	}

	id := opts.ID
	if id == nil {
		id = func(T) int64 { return 0 }
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	state := opts.Schema.Parse(opts.Initial)

	return &Controller[T]{
		schema:     opts.Schema,
		fetch:      opts.Fetch,
		id:         id,
		timeout:    opts.Timeout,
		onError:    opts.OnError,
		log:        logger.OrNop(opts.Logger).With(zap.String("screen", opts.Schema.Name)),
		debouncer:  debounce.New(window),
		baseCtx:    baseCtx,
		cancelBase: cancelBase,
		state:      state,
		debounced:  state.Search,
		scope:      opts.Scope,
		items:      []T{},
		subs:       make(map[int]chan struct{}),
	}
}

// Name of the screen.
func (c *Controller[T]) Name() string {
	return c.schema.Name
}

// Schema of the screen.
func (c *Controller[T]) Schema() listquery.Schema {
	return c.schema
}

// Start issues the first fetch.
func (c *Controller[T]) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked(false)
}

// Load replaces the whole state with the one encoded in values, as when the
// screen is reopened from a shared link. The search term applies at once.
func (c *Controller[T]) Load(values url.Values) {
	c.debouncer.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(values, c.scope)
}

// LoadScoped is Load that also points the list at scope. Both changes go
// out as one fetch.
func (c *Controller[T]) LoadScoped(values url.Values, scope string) {
	c.debouncer.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked(values, scope)
}

func (c *Controller[T]) loadLocked(values url.Values, scope string) {
	next := c.schema.Parse(values)
	if scope != c.scope || !next.Equal(c.state) || next.Search != c.debounced {
		c.scope = scope
		c.state = next
		c.debounced = next.Search
		c.bumpLocked()
	}
	c.refreshLocked(false)
}

// Change is a set of field edits coming from one user event. Nil fields are
// left alone; an empty filter value clears that filter.
type Change struct {
	Search   *string           `json:"search,omitempty"`
	SortBy   *string           `json:"sortBy,omitempty"`
	SortDesc *bool             `json:"desc,omitempty"`
	Page     *int              `json:"page,omitempty"`
	PageSize *int              `json:"pageSize,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// Apply edits the state. A changed search text resets the page at once but
// is only sent to the server after the debounce window; every other change
// fetches immediately.
func (c *Controller[T]) Apply(ch Change) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	next := c.state
	if ch.SortBy != nil {
		next = next.WithSortBy(*ch.SortBy)
	}
	if ch.SortDesc != nil {
		next = next.WithSortDesc(*ch.SortDesc)
	}
	if ch.PageSize != nil {
		next = next.WithPageSize(*ch.PageSize)
	}
	for k, v := range ch.Filters {
		if c.schema.HasFilter(k) && (v == "" || c.schema.ValidFilter(k, v)) {
			next = next.WithFilter(k, v)
		}
	}

	searchChanged := ch.Search != nil && *ch.Search != c.state.Search
	if searchChanged {
		next = next.WithSearch(*ch.Search)
	}
	if ch.Page != nil {
		next = next.WithPage(*ch.Page)
	}
	next = c.schema.Normalize(next)

	changed := !next.Equal(c.state)
	if changed {
		c.state = next
		c.bumpLocked()
	}
	otherChanged := changed && (ch.SortBy != nil || ch.SortDesc != nil || ch.PageSize != nil ||
		ch.Page != nil || len(ch.Filters) > 0)
	if otherChanged {
		c.refreshLocked(false)
	}
	c.mu.Unlock()

	if searchChanged {
		term := next.Search
		c.debouncer.Trigger(func() { c.commitSearch(term) })
	}
}

func (c *Controller[T]) commitSearch(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.debounced = term
	c.bumpLocked()
	c.refreshLocked(false)
}

func (c *Controller[T]) SetSearch(search string) { c.Apply(Change{Search: &search}) }
func (c *Controller[T]) SetSortBy(field string)  { c.Apply(Change{SortBy: &field}) }
func (c *Controller[T]) SetSortDesc(desc bool)   { c.Apply(Change{SortDesc: &desc}) }
func (c *Controller[T]) SetPage(page int)        { c.Apply(Change{Page: &page}) }
func (c *Controller[T]) SetPageSize(size int)    { c.Apply(Change{PageSize: &size}) }

// SetSort changes column and direction as one edit.
func (c *Controller[T]) SetSort(field string, desc bool) {
	c.Apply(Change{SortBy: &field, SortDesc: &desc})
}

func (c *Controller[T]) SetFilter(key, value string) {
	c.Apply(Change{Filters: map[string]string{key: value}})
}

// SetScope points the list at another parent record and starts from page 1.
func (c *Controller[T]) SetScope(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || scope == c.scope {
		return
	}
	c.scope = scope
	c.state = c.state.WithPage(1)
	c.bumpLocked()
	c.refreshLocked(false)
}

// Reset restores the schema defaults.
func (c *Controller[T]) Reset() {
	c.debouncer.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = c.schema.Defaults()
	c.debounced = ""
	c.bumpLocked()
	c.refreshLocked(false)
}

// Reload refetches the current page even if the request did not change.
func (c *Controller[T]) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked(true)
}

// refreshLocked issues a fetch for the current state unless the same
// request tuple was already issued. Callers hold c.mu.
func (c *Controller[T]) refreshLocked(force bool) {
	if c.closed || c.fetch == nil {
		return
	}

	req := c.state.Request(c.debounced, c.scope)
	key := req.Key()
	if !force && key == c.lastKey {
		return
	}
	c.lastKey = key

	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(c.baseCtx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(c.baseCtx)
	}
	c.cancel = cancel
	c.loading = true
	c.bumpLocked()

	c.wg.Add(1)
	go c.run(ctx, cancel, seq, req)
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, req listquery.Request) {
	defer c.wg.Done()
	defer cancel()

	start := time.Now()
	page, err := c.fetch(ctx, req)
	metrics.ObserveHistogramVec(metrics.ListFetchDuration,
		map[string]string{"screen": c.schema.Name}, time.Since(start).Seconds())

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		metrics.IncCounterVec(metrics.ListFetchesTotal, map[string]string{"screen": c.schema.Name, "result": "stale"})
		c.log.Debug("stale list response dropped", zap.Uint64("seq", seq), zap.Int("page", req.Page))
		return
	}

	c.loading = false
	c.cancel = nil

	if err != nil {
		c.err = err
		// the same tuple may be retried
		c.lastKey = ""
		c.bumpLocked()
		c.mu.Unlock()

		metrics.IncCounterVec(metrics.ListFetchesTotal, map[string]string{"screen": c.schema.Name, "result": "failed"})
		c.log.Warn("list fetch failed", zap.Int("page", req.Page), zap.Error(err))
		if c.onError != nil {
			c.onError(err)
		}
		return
	}

	c.err = nil
	c.items = page.Items
	if c.items == nil {
		c.items = []T{}
	}
	c.total = page.TotalCount
	if c.total < 0 {
		c.total = 0
	}
	c.bumpLocked()
	metrics.IncCounterVec(metrics.ListFetchesTotal, map[string]string{"screen": c.schema.Name, "result": "applied"})

	// a page past the end shows nothing: step back
	if len(c.items) == 0 && c.state.Page > 1 {
		c.stepBackLocked()
	}
	c.mu.Unlock()
}

// stepBackLocked moves to the previous page, or straight to the last page
// when the current one is far past the end, and refetches.
func (c *Controller[T]) stepBackLocked() {
	target := c.state.Page - 1
	if last := listquery.TotalPages(c.total, c.state.PageSize); last < target {
		target = last
	}
	c.state = c.state.WithPage(target)
	c.bumpLocked()
	c.refreshLocked(false)
}

// Wait blocks until no fetch is in flight.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

// Close cancels pending work and releases subscribers. A closed controller
// ignores further edits.
func (c *Controller[T]) Close() {
	c.debouncer.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.cancelBase()
	c.loading = false
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// Busy reports whether a mutation is running.
func (c *Controller[T]) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// Subscribe returns a channel that receives a signal after every change of
// the view. Signals coalesce; read Snapshot after each one.
func (c *Controller[T]) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

func (c *Controller[T]) bumpLocked() {
	c.version++
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// errorOf converts an error into its display form.
func errorOf(err error) *Error {
	if err == nil {
		return nil
	}
	appErr := apperrors.GetAppError(err)
	return &Error{Code: appErr.Code, Message: appErr.Message}
}
