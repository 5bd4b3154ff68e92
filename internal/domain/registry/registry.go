// Package registry keeps the live handle for each symbolic audio target.
//
// Readers always see a complete snapshot: Refresh builds a new one off to the
// side and publishes it with a single atomic swap.
package registry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/padmixer/internal/domain/action"
	"github.com/okian/padmixer/internal/domain/model"
	"github.com/okian/padmixer/internal/domain/types"
	"github.com/okian/padmixer/pkg/logger"
	"github.com/okian/padmixer/pkg/metrics"
)

// SessionSource enumerates active application sessions.
type SessionSource interface {
	Sessions(ctx context.Context) ([]model.Session, error)
}

// MasterHandle is the handle stored for the master pseudo-target.
const MasterHandle = "@master"

type snapshot struct {
	entries map[string]model.Session
	taken   time.Time
}

// Registry maps symbolic targets to sessions. Safe for concurrent use.
type Registry struct {
	src       SessionSource
	apps      map[string]string // target -> normalised process name
	master    bool
	timeout   time.Duration
	onRefresh []func()
	logger    logger.Logger

	refreshMu sync.Mutex
	snap      atomic.Pointer[snapshot]
	refreshes atomic.Uint64
}

// New creates a registry over src. Until the first Refresh every target is
// unresolved except master, which is present iff WithMaster(true) was given.
func New(src SessionSource, opts ...Option) *Registry {
	r := &Registry{
		src:     src,
		apps:    make(map[string]string),
		timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("registry")
	}

	initial := &snapshot{entries: make(map[string]model.Session, 1)}
	if r.master {
		initial.entries[action.MasterTarget] = masterSession()
	}
	r.snap.Store(initial)
	return r
}

func masterSession() model.Session {
	return model.Session{Name: action.MasterTarget, Handle: MasterHandle}
}

// Normalize lowercases name and strips a trailing ".exe".
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(n, ".exe")
}

// Refresh re-enumerates sessions and publishes a new snapshot. On a
// backend error the application targets become unresolved and the error
// is returned; master is unaffected.
func (r *Registry) Refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	start := time.Now()
	next := &snapshot{
		entries: make(map[string]model.Session, len(r.apps)+1),
		taken:   start,
	}
	if r.master {
		next.entries[action.MasterTarget] = masterSession()
	}

	sessions, err := r.enumerate(ctx)
	if err == nil {
		r.match(next.entries, sessions)
	} else {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(ErrRefreshTimeout, err)
		}
		r.logger.Debug(ctx, "session enumeration failed", logger.Error(err))
	}

	r.snap.Store(next)
	r.refreshes.Add(1)
	for _, fn := range r.onRefresh {
		fn()
	}

	metrics.RecordRefresh(float64(time.Since(start).Microseconds())/1000, err != nil)
	metrics.UpdateTargetsResolved(len(next.entries))
	return err
}

func (r *Registry) enumerate(ctx context.Context) ([]model.Session, error) {
	if r.src == nil {
		return nil, ErrNoSource
	}
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.src.Sessions(callCtx)
}

// match assigns the first session in enumeration order to each target.
func (r *Registry) match(dst map[string]model.Session, sessions []model.Session) {
	for target, want := range r.apps {
		for _, s := range sessions {
			if Normalize(s.Name) == want {
				dst[target] = s
				break
			}
		}
	}
}

// Get returns the current session for target. It never blocks on I/O.
func (r *Registry) Get(target string) (model.Session, bool) {
	s, ok := r.snap.Load().entries[target]
	return s, ok
}

// Snapshot returns a copy of the current entries.
func (r *Registry) Snapshot() map[string]model.Session {
	cur := r.snap.Load()
	out := make(map[string]model.Session, len(cur.entries))
	for k, v := range cur.entries {
		out[k] = v
	}
	return out
}

// Statuses reports every known target, sorted by name.
func (r *Registry) Statuses() []types.TargetStatus {
	cur := r.snap.Load()
	names := make([]string, 0, len(r.apps)+1)
	if r.master {
		names = append(names, action.MasterTarget)
	}
	for target := range r.apps {
		if target != action.MasterTarget {
			names = append(names, target)
		}
	}
	sort.Strings(names)

	out := make([]types.TargetStatus, 0, len(names))
	for _, n := range names {
		s, ok := cur.entries[n]
		out = append(out, types.TargetStatus{Target: n, Resolved: ok, Session: s.Name})
	}
	return out
}

// LastRefresh returns when the current snapshot was taken; zero before the first Refresh.
func (r *Registry) LastRefresh() time.Time {
	return r.snap.Load().taken
}

// Refreshes returns the number of completed refreshes.
func (r *Registry) Refreshes() uint64 {
	return r.refreshes.Load()
}

// MasterAvailable reports whether the master pseudo-target is tracked.
func (r *Registry) MasterAvailable() bool {
	return r.master
}
