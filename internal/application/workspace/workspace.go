// Package workspace keeps the open screens of every signed-in session.
//
// A workspace is created on the first screen a session opens and holds one
// controller per screen name. It is dropped on logout, when the library API
// rejects the session's token, or after the session has been idle for the
// configured timeout.
package workspace

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	authorapp "github.com/xiebiao/libadmin/internal/application/author"
	bookapp "github.com/xiebiao/libadmin/internal/application/book"
	bookcategoryapp "github.com/xiebiao/libadmin/internal/application/bookcategory"
	categoryapp "github.com/xiebiao/libadmin/internal/application/category"
	"github.com/xiebiao/libadmin/internal/application/listview"
	loanapp "github.com/xiebiao/libadmin/internal/application/loan"
	"github.com/xiebiao/libadmin/internal/application/lookup"
	memberapp "github.com/xiebiao/libadmin/internal/application/member"
	"github.com/xiebiao/libadmin/internal/domain/author"
	"github.com/xiebiao/libadmin/internal/domain/book"
	"github.com/xiebiao/libadmin/internal/domain/bookcategory"
	"github.com/xiebiao/libadmin/internal/domain/category"
	"github.com/xiebiao/libadmin/internal/domain/loan"
	"github.com/xiebiao/libadmin/internal/domain/member"
	"github.com/xiebiao/libadmin/internal/domain/session"
	apperrors "github.com/xiebiao/libadmin/pkg/errors"
	"github.com/xiebiao/libadmin/pkg/logger"
	"github.com/xiebiao/libadmin/pkg/metrics"
)

// API is the library API as one session sees it.
type API interface {
	book.Gateway
	author.Gateway
	author.Store
	category.Gateway
	bookcategory.Gateway
	member.Gateway
	loan.Gateway
}

// Binder returns the API bound to a session's bearer token.
type Binder func(token string) API

// ExpireFunc ends a session the API stopped accepting.
type ExpireFunc func(ctx context.Context, sessionID string) error

// ParamCategoryID selects the category of the categorybooks screen.
const ParamCategoryID = "categoryId"

type Config struct {
	Debounce     time.Duration
	FetchTimeout time.Duration
	IdleTimeout  time.Duration
	// CleanupInterval is how often Run looks for idle workspaces.
	CleanupInterval time.Duration
}

// Manager owns the workspaces of all sessions.
type Manager struct {
	bind    Binder
	cfg     Config
	auditor listview.Auditor
	expire  ExpireFunc
	log     *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	spaces map[string]*Workspace
}

func NewManager(bind Binder, cfg Config, auditor listview.Auditor, expire ExpireFunc, log *zap.Logger) *Manager {
	return &Manager{
		bind:    bind,
		cfg:     cfg,
		auditor: auditor,
		expire:  expire,
		log:     logger.OrNop(log).Named("workspace"),
		now:     time.Now,
		spaces:  make(map[string]*Workspace),
	}
}

// Workspace is the set of screens of one session.
type Workspace struct {
	sess session.Session
	api  API
	env  listview.Env

	mu       sync.Mutex
	screens  map[string]listview.Screen
	lastSeen time.Time
	closed   bool
}

// workspace returns the session's workspace, creating it on first use.
func (m *Manager) workspace(sess session.Session) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if w, ok := m.spaces[sess.ID]; ok {
		w.mu.Lock()
		w.lastSeen = now
		w.mu.Unlock()
		return w
	}

	id := sess.ID
	w := &Workspace{
		sess: sess,
		api:  m.bind(sess.Token),
		env: listview.Env{
			Debounce: m.cfg.Debounce,
			Timeout:  m.cfg.FetchTimeout,
			Logger:   m.log.With(zap.String("session", shortID(id))),
			Auditor:  m.auditor,
			Actor:    sess.Email,
			OnError: func(err error) {
				if apperrors.IsUnauthorized(err) {
					m.Expire(context.Background(), id)
				}
			},
		},
		screens:  make(map[string]listview.Screen),
		lastSeen: now,
	}
	m.spaces[id] = w
	metrics.IncGauge(metrics.ActiveWorkspaces)
	return w
}

// Open returns the named screen. A new screen starts from values; an open
// one is reloaded from values when they are not empty.
func (m *Manager) Open(sess session.Session, name string, values url.Values) (listview.Screen, error) {
	w := m.workspace(sess)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, apperrors.ErrUnauthorized
	}

	if s, ok := w.screens[name]; ok {
		if len(values) > 0 {
			if cb, ok := s.(*categoryapp.BooksScreen); ok && categoryID(values) > 0 {
				cb.ShowWith(categoryID(values), values)
			} else {
				s.Load(values)
			}
		}
		return s, nil
	}

	s, err := w.build(name, values)
	if err != nil {
		return nil, err
	}
	w.screens[name] = s
	s.Start()
	return s, nil
}

func (w *Workspace) build(name string, values url.Values) (listview.Screen, error) {
	switch name {
	case book.ListSchema.Name:
		return bookapp.NewScreen(w.api, w.env, values), nil
	case author.ListSchema.Name:
		return authorapp.NewScreen(w.api, w.api, w.env, values), nil
	case category.ListSchema.Name:
		return categoryapp.NewScreen(w.api, w.api, w.env, values), nil
	case category.BooksSchema.Name:
		return categoryapp.NewBooksScreen(w.api, w.env, categoryID(values), values), nil
	case member.ListSchema.Name:
		return memberapp.NewScreen(w.api, w.env, values), nil
	case loan.ListSchema.Name:
		return loanapp.NewScreen(w.api, w.env, values), nil
	case bookcategory.ListSchema.Name:
		return bookcategoryapp.NewScreen(w.api, w.api, w.env, values), nil
	}
	return nil, apperrors.ErrScreenNotFound
}

func categoryID(values url.Values) int64 {
	id, _ := strconv.ParseInt(values.Get(ParamCategoryID), 10, 64)
	return id
}

func screenAs[S listview.Screen](m *Manager, sess session.Session, name string) (S, error) {
	var zero S
	s, err := m.Open(sess, name, nil)
	if err != nil {
		return zero, err
	}
	typed, ok := s.(S)
	if !ok {
		return zero, apperrors.ErrScreenNotFound
	}
	return typed, nil
}

func (m *Manager) Books(sess session.Session) (*bookapp.Screen, error) {
	return screenAs[*bookapp.Screen](m, sess, book.ListSchema.Name)
}

func (m *Manager) Authors(sess session.Session) (*authorapp.Screen, error) {
	return screenAs[*authorapp.Screen](m, sess, author.ListSchema.Name)
}

func (m *Manager) Categories(sess session.Session) (*categoryapp.Screen, error) {
	return screenAs[*categoryapp.Screen](m, sess, category.ListSchema.Name)
}

func (m *Manager) CategoryBooks(sess session.Session) (*categoryapp.BooksScreen, error) {
	return screenAs[*categoryapp.BooksScreen](m, sess, category.BooksSchema.Name)
}

func (m *Manager) Members(sess session.Session) (*memberapp.Screen, error) {
	return screenAs[*memberapp.Screen](m, sess, member.ListSchema.Name)
}

func (m *Manager) Loans(sess session.Session) (*loanapp.Screen, error) {
	return screenAs[*loanapp.Screen](m, sess, loan.ListSchema.Name)
}

func (m *Manager) BookCategories(sess session.Session) (*bookcategoryapp.Screen, error) {
	return screenAs[*bookcategoryapp.Screen](m, sess, bookcategory.ListSchema.Name)
}

// Lookups returns the picker loader of the session.
func (m *Manager) Lookups(sess session.Session) *lookup.Service {
	w := m.workspace(sess)
	return lookup.NewService(w.api, w.api)
}

// Drop closes every screen of the session.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	w, ok := m.spaces[sessionID]
	if ok {
		delete(m.spaces, sessionID)
	}
	m.mu.Unlock()

	if ok {
		w.close()
		metrics.DecGauge(metrics.ActiveWorkspaces)
	}
}

// Expire drops the workspace of a session the API rejected and ends the
// session itself.
func (m *Manager) Expire(ctx context.Context, sessionID string) {
	m.Drop(sessionID)
	if m.expire == nil {
		return
	}
	if err := m.expire(ctx, sessionID); err != nil {
		m.log.Warn("session not expired", zap.String("session", shortID(sessionID)), zap.Error(err))
	}
}

func (w *Workspace) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for name, s := range w.screens {
		s.Close()
		delete(w.screens, name)
	}
}

// Has reports whether the session holds a workspace.
func (m *Manager) Has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.spaces[sessionID]
	return ok
}

// Len is the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.spaces)
}

// Sweep drops workspaces idle for longer than the idle timeout, and those
// whose session expired. It returns how many were dropped.
func (m *Manager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	var stale []string
	for id, w := range m.spaces {
		w.mu.Lock()
		idle := m.cfg.IdleTimeout > 0 && now.Sub(w.lastSeen) > m.cfg.IdleTimeout
		expired := w.sess.Expired(now)
		w.mu.Unlock()
		if idle || expired {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.Drop(id)
	}
	if len(stale) > 0 {
		m.log.Info("idle workspaces dropped", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps periodically until ctx is done, then drops every workspace.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.spaces))
	for id := range m.spaces {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Drop(id)
	}
}

// shortID keeps session ids out of logs in full.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
