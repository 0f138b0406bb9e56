package listview

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/metrics"
)

// beginMutation marks the screen as saving. A second submission while one
// is running is refused.
func (c *Controller[T]) beginMutation() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return apperrors.ErrBusy.WithMessage("screen is closed")
	}
	if c.saving {
		return apperrors.ErrBusy
	}
	c.saving = true
	c.bumpLocked()
	return nil
}

func (c *Controller[T]) endMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	c.bumpLocked()
}

func (c *Controller[T]) recordMutation(op string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
		c.log.Info("mutation rejected", zap.String("op", op), zap.Error(err))
	}
	metrics.IncCounterVec(metrics.MutationsTotal, map[string]string{
		"screen": c.schema.Name, "op": op, "result": result,
	})
}

// Create runs create and, on success, puts the returned record at the top
// of the page and counts it. A record without a server id is never shown;
// the page is refetched instead.
func (c *Controller[T]) Create(ctx context.Context, create func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := c.beginMutation(); err != nil {
		return zero, err
	}
	defer c.endMutation()

	item, err := create(ctx)
	c.recordMutation("create", err)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id(item) == 0 {
		c.refreshLocked(true)
		return item, nil
	}

	items := make([]T, 0, len(c.items)+1)
	items = append(items, item)
	items = append(items, c.items...)
	if size := c.state.PageSize; size > 0 && len(items) > size {
		items = items[:size]
	}
	c.items = items
	c.total++
	c.bumpLocked()
	return item, nil
}

// Update runs update and replaces the record with the same id by the
// result. The order of the page is kept.
func (c *Controller[T]) Update(ctx context.Context, id int64, update func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := c.beginMutation(); err != nil {
		return zero, err
	}
	defer c.endMutation()

	item, err := update(ctx)
	c.recordMutation("update", err)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(id, item)
	return item, nil
}

// UpdateAndReload runs update and refetches the page instead of patching
// it, for screens whose rows carry server-computed fields.
func (c *Controller[T]) UpdateAndReload(ctx context.Context, update func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := c.beginMutation(); err != nil {
		return zero, err
	}
	defer c.endMutation()

	item, err := update(ctx)
	c.recordMutation("update", err)
	if err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked(true)
	return item, nil
}

// Delete runs del for ids and, on success, drops exactly those ids from the
// page and the total. When that empties the page the previous page (or the
// first page's remainder) is fetched.
func (c *Controller[T]) Delete(ctx context.Context, ids []int64, del Deleter) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return apperrors.ErrInvalidParams.WithMessage("nothing selected")
	}

	if err := c.beginMutation(); err != nil {
		return err
	}
	defer c.endMutation()

	err := del(ctx, ids)
	c.recordMutation("delete", err)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if _, ok := drop[c.id(item)]; !ok {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.total -= len(ids)
	if c.total < 0 {
		c.total = 0
	}
	c.bumpLocked()

	if len(c.items) == 0 {
		if c.state.Page > 1 {
			c.stepBackLocked()
		} else if c.total > 0 {
			c.refreshLocked(true)
		}
	}
	return nil
}

// Do runs a server call that is not one of the list mutations, such as a
// link change, under the same busy guard. The page is left to the caller,
// usually through Patch.
func (c *Controller[T]) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := c.beginMutation(); err != nil {
		return err
	}
	defer c.endMutation()

	err := fn(ctx)
	c.recordMutation(op, err)
	return err
}

// Patch replaces the record with the given id by fn's result without a
// server call. It reports whether the record was on the page.
func (c *Controller[T]) Patch(id int64, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if c.id(item) == id {
			c.items[i] = fn(item)
			c.bumpLocked()
			return true
		}
	}
	return false
}

// Find returns the record with the given id if it is on the page.
func (c *Controller[T]) Find(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if c.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Controller[T]) replaceLocked(id int64, item T) {
	for i, existing := range c.items {
		if c.id(existing) == id {
			c.items[i] = item
			c.bumpLocked()
			return
		}
	}
}

func unique(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
