package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"carddemo/internal/session/models"
	"carddemo/internal/session/state"
)

// Lifecycle is the slice of the session manager the monitor drives.
// Refresh failure handling lives inside RefreshToken, not here.
type Lifecycle interface {
	RefreshToken(ctx context.Context) error
	ForceLogout(ctx context.Context, reason string)
}

// DescriptorStore exposes the volatile-tier descriptor operations.
type DescriptorStore interface {
	ReadSessionDescriptor() (*models.SessionDescriptor, error)
	WriteSessionDescriptor(d *models.SessionDescriptor) error
}

// StateReader is the read-only view of the auth state.
type StateReader interface {
	Current() state.Snapshot
}

// Event tells the navigation layer what the monitor decided. Expiry
// replaces the history entry so "back" cannot resurrect the expired screen.
type Event struct {
	RedirectPath   string
	ReplaceHistory bool
	Reason         string
}

// Monitor keeps a long-lived authenticated session either valid or
// terminated, never silently stale. It checks on a fixed interval and
// immediately on Wake, which models the tab regaining visibility (background
// timers are unreliable, so wake-ups re-validate on the spot).
type Monitor struct {
	state       StateReader
	creds       DescriptorStore
	lifecycle   Lifecycle
	interval    time.Duration
	maxLifetime time.Duration
	logger      *slog.Logger
	now         func() time.Time

	wake   chan struct{}
	events chan Event
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the check interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(m *Monitor) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

// WithMaxLifetime overrides the maximum session lifetime when greater than zero.
func WithMaxLifetime(maxLifetime time.Duration) Option {
	return func(m *Monitor) {
		if maxLifetime > 0 {
			m.maxLifetime = maxLifetime
		}
	}
}

// WithLogger overrides the monitor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

const (
	defaultInterval    = 5 * time.Minute
	defaultMaxLifetime = 8 * time.Hour
)

// New constructs a Monitor with required dependencies and options applied.
func New(st StateReader, creds DescriptorStore, lifecycle Lifecycle, opts ...Option) (*Monitor, error) {
	if st == nil || creds == nil || lifecycle == nil {
		return nil, fmt.Errorf("state, creds, and lifecycle are required")
	}
	m := &Monitor{
		state:       st,
		creds:       creds,
		lifecycle:   lifecycle,
		interval:    defaultInterval,
		maxLifetime: defaultMaxLifetime,
		logger:      slog.Default(),
		now:         time.Now,
		wake:        make(chan struct{}, 1),
		events:      make(chan Event, 4),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Events delivers monitor decisions to the navigation layer.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Wake requests an immediate check, coalescing bursts into one.
func (m *Monitor) Wake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Start runs checks periodically until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RunOnce(ctx)
		case <-m.wake:
			m.RunOnce(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single session check. While anonymous it does nothing;
// the monitor's work begins and ends with the authenticated state.
func (m *Monitor) RunOnce(ctx context.Context) {
	snap := m.state.Current()
	if !snap.IsAuthenticated() {
		return
	}

	descriptor, err := m.creds.ReadSessionDescriptor()
	if err != nil || descriptor.Validate() != nil {
		// Missing or unparsable descriptor while authenticated: observed
		// after tab duplication or storage corruption. Recreate from the
		// in-memory user instead of forcing a logout; availability wins
		// over strict session-age accuracy here.
		descriptor = m.recreateDescriptor(ctx, snap)
		if descriptor == nil {
			return
		}
	}

	if descriptor.Expired(m.now(), m.maxLifetime) {
		m.lifecycle.ForceLogout(ctx, "session lifetime exceeded")
		m.emit(Event{
			RedirectPath:   models.LoginPath,
			ReplaceHistory: true,
			Reason:         "session expired",
		})
		return
	}

	// Opportunistic silent refresh. Its failure path already forces logout
	// inside RefreshToken; the monitor only observes.
	if err := m.lifecycle.RefreshToken(ctx); err != nil {
		m.logger.WarnContext(ctx, "silent refresh failed", "error", err)
	}
}

func (m *Monitor) recreateDescriptor(ctx context.Context, snap state.Snapshot) *models.SessionDescriptor {
	user := snap.User
	descriptor := &models.SessionDescriptor{
		UserID:    user.UserID,
		UserType:  userTypeForRole(user.Role),
		Role:      user.Role,
		LoginTime: m.now().UnixMilli(),
	}
	if err := m.creds.WriteSessionDescriptor(descriptor); err != nil {
		m.logger.ErrorContext(ctx, "failed to recreate session descriptor", "error", err)
		return nil
	}
	m.logger.WarnContext(ctx, "recreated missing session descriptor",
		"user_id", user.UserID,
	)
	return descriptor
}

func userTypeForRole(role models.Role) string {
	if role == models.RoleAdmin {
		return models.UserTypeAdmin
	}
	return models.UserTypeStandard
}

func (m *Monitor) emit(event Event) {
	select {
	case m.events <- event:
	default:
		// Queue full: the navigation layer already has a redirect pending.
	}
}
