// Package audit publishes a record of every mutation the library API
// confirmed, and reads them back for the audit tail command.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/pkg/logger"
	"github.com/xiebiao/libadmin/pkg/mq"
)

// Event is one confirmed mutation.
type Event struct {
	ID     string    `json:"id"`
	Actor  string    `json:"actor"`
	Screen string    `json:"screen"`
	Op     string    `json:"op"`
	IDs    []int64   `json:"ids"`
	At     time.Time `json:"at"`
}

// RoutingKey is <screen>.<op>.
func (e Event) RoutingKey() string {
	return e.Screen + "." + e.Op
}

// Publisher sends a message to the audit exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Recorder turns mutations into events. A nil publisher makes it a no-op.
type Recorder struct {
	pub Publisher
	log *zap.Logger
	now func() time.Time
}

func NewRecorder(pub Publisher, log *zap.Logger) *Recorder {
	return &Recorder{pub: pub, log: logger.OrNop(log), now: time.Now}
}

// Enabled reports whether events are published.
func (r *Recorder) Enabled() bool {
	return r != nil && r.pub != nil
}

// Record publishes the event. Failures are logged; the mutation already
// happened and is not undone.
func (r *Recorder) Record(ctx context.Context, actor, screen, op string, ids ...int64) {
	if !r.Enabled() {
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	ev := Event{
		ID:     uuid.NewString(),
		Actor:  actor,
		Screen: screen,
		Op:     op,
		IDs:    ids,
		At:     r.now().UTC(),
	}
	if err := r.pub.Publish(context.WithoutCancel(ctx), ev.RoutingKey(), ev); err != nil {
		r.log.Warn("audit event not published",
			zap.String("routing_key", ev.RoutingKey()),
			zap.Error(err))
	}
}

// Print returns a handler writing each delivered event as one line to w.
func Print(w io.Writer) mq.Handler {
	return func(_ context.Context, d mq.Delivery) error {
		var ev Event
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			// malformed events are dropped, not requeued
			_, werr := fmt.Fprintf(w, "%s\t%s\tunreadable event: %v\n", d.Timestamp.Format(time.RFC3339), d.RoutingKey, err)
			return werr
		}
		_, err := fmt.Fprintf(w, "%s\t%-10s\t%-16s\t%-12s\t%v\n",
			ev.At.Format(time.RFC3339), ev.Actor, ev.Screen, ev.Op, ev.IDs)
		return err
	}
}
