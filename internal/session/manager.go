package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/newsdesk/web/internal/logger"
	"codeberg.org/newsdesk/web/internal/posts"
)

const defaultCleanupInterval = 5 * time.Minute

// observes the registry size, implemented by the metrics collector
type Gauge interface {
	SetActiveVisitors(n int)
}

// registry of visitors keyed by the id stored in their cookie
type Manager struct {
	factory         IdentityFactory
	ttl             time.Duration
	cleanupInterval time.Duration
	gauge           Gauge

	mu       sync.RWMutex
	visitors map[string]*Visitor
}

type ManagerOption func(*Manager)

func WithCleanupInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.cleanupInterval = d
		}
	}
}

func WithGauge(g Gauge) ManagerOption {
	return func(m *Manager) {
		m.gauge = g
	}
}

// creates a new visitor registry; visitors idle for longer than ttl are disposed
func NewManager(factory IdentityFactory, ttl time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{
		factory:         factory,
		ttl:             ttl,
		cleanupInterval: defaultCleanupInterval,
		visitors:        make(map[string]*Visitor),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// creates a visitor, restoring the identity behind refreshToken in the background
func (m *Manager) Create(refreshToken string) *Visitor {
	id := uuid.NewString()
	ident := m.factory(refreshToken)

	v := &Visitor{
		ID:       id,
		Identity: ident,
		Session:  New(ident),
		Profile:  posts.NewView(),
		Tasks:    NewTasks(),
	}
	v.Touch()
	v.Session.Init()

	if ident.Pending() {
		v.Tasks.Go(ident.Restore, func(err error) {
			logger.ErrorErr(err, "failed to restore identity session", "visitor_id", id)
		})
	} else if err := ident.Restore(context.Background()); err != nil {
		logger.ErrorErr(err, "failed to initialise identity session", "visitor_id", id)
	}

	m.mu.Lock()
	m.visitors[id] = v
	n := len(m.visitors)
	m.mu.Unlock()

	m.report(n)
	return v
}

// returns a live visitor by id
func (m *Manager) Get(id string) (*Visitor, bool) {
	if id == "" {
		return nil, false
	}

	m.mu.RLock()
	v, ok := m.visitors[id]
	m.mu.RUnlock()

	if !ok || time.Since(v.LastActivity()) > m.ttl {
		return nil, false
	}

	return v, true
}

// disposes and forgets a visitor
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	v, ok := m.visitors[id]
	delete(m.visitors, id)
	n := len(m.visitors)
	m.mu.Unlock()

	if ok {
		v.dispose()
		m.report(n)
	}
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.visitors)
}

// runs the cleanup loop until ctx is done
func (m *Manager) Start(ctx context.Context) {
	logger.Info("starting visitor cleanup service",
		"check_interval", m.cleanupInterval,
		"ttl", m.ttl,
	)

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("visitor cleanup service stopped")
			return
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				logger.Info("disposed idle visitors", "count", n)
			}
		}
	}
}

// disposes visitors idle at now; returns how many went
func (m *Manager) Sweep(now time.Time) int {
	threshold := now.Add(-m.ttl)

	m.mu.Lock()
	var stale []*Visitor
	for id, v := range m.visitors {
		if v.LastActivity().Before(threshold) {
			stale = append(stale, v)
			delete(m.visitors, id)
		}
	}
	n := len(m.visitors)
	m.mu.Unlock()

	for _, v := range stale {
		v.dispose()
	}

	if len(stale) > 0 {
		m.report(n)
	}

	return len(stale)
}

// disposes every visitor, used on shutdown
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Visitor, 0, len(m.visitors))
	for id, v := range m.visitors {
		all = append(all, v)
		delete(m.visitors, id)
	}
	m.mu.Unlock()

	for _, v := range all {
		v.dispose()
	}

	m.report(0)
}

func (m *Manager) report(n int) {
	if m.gauge != nil {
		m.gauge.SetActiveVisitors(n)
	}
}
