package session

import (
	"context"
	"sync"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/bridge"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/config"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/errors"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
)

// Phase is the process-local connection lifecycle phase. It is owned
// exclusively by the Manager; caches and handlers only ever read it
// through Snapshot.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseConnecting   Phase = "connecting"
	PhaseConnected    Phase = "connected"
	PhaseDisconnected Phase = "disconnected"
)

// Snapshot is an atomic read of the connection state
type Snapshot struct {
	Phase     Phase
	SessionID string
}

// Connected reports whether the snapshot certifies a usable session:
// connected phase AND a resolved canonical identifier. A session whose
// record carries no identifier fields never certifies, whatever its phase.
func (s Snapshot) Connected() bool {
	return s.Phase == PhaseConnected && s.SessionID != ""
}

// Bridge is the subset of the bridge client the state machine depends on
type Bridge interface {
	Ping(ctx context.Context) bool
	ListSessions(ctx context.Context) []bridge.Session
	StartSession(ctx context.Context, name string) (*bridge.Session, error)
	StopSession(ctx context.Context, sessionID string) error
	SessionStatus(ctx context.Context, sessionID string) (*bridge.Session, error)
	Screenshot(ctx context.Context) ([]byte, string, error)
}

// QRPresenter surfaces the QR/connection artifact to the operator
type QRPresenter interface {
	Present(artifact []byte, contentType string)
}

// Manager is the connection state machine. It holds the current phase and
// the canonical session identifier, drives the status poll chain, and
// refreshes the raw session list in the background. It is the single
// writer of both values; everything else reads eventually-consistent
// snapshots.
type Manager struct {
	bridge    Bridge
	cfg       config.PollConfig
	name      string
	presenter QRPresenter
	clock     Clock
	log       *logger.Logger

	mu         sync.Mutex
	phase      Phase
	sessionID  string
	sessions   []bridge.Session
	pollCancel context.CancelFunc
	pollGen    uint64
	subs       []chan Snapshot

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a connection state machine in the idle phase
func NewManager(b Bridge, cfg config.PollConfig, sessionName string, presenter QRPresenter, clock Clock, log *logger.Logger) *Manager {
	if clock == nil {
		clock = RealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		bridge:    b,
		cfg:       cfg,
		name:      sessionName,
		presenter: presenter,
		clock:     clock,
		log:       log,
		phase:     PhaseIdle,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the background session-list refresh loop. It runs on a
// fixed cadence regardless of phase, to detect externally-initiated
// session changes.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.refreshLoop()
}

// Close stops the poll chain and all background timers and waits for
// them to exit. Pending ticks never outlive the manager.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.pollCancel != nil {
		m.pollCancel()
		m.pollCancel = nil
	}
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

// Snapshot returns the current phase and canonical session identifier
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Phase: m.phase, SessionID: m.sessionID}
}

// Sessions returns the most recently refreshed raw session list
func (m *Manager) Sessions() []bridge.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bridge.Session, len(m.sessions))
	copy(out, m.sessions)
	return out
}

// Subscribe returns a channel that receives a snapshot after every phase
// or identifier change. The channel is buffered; a slow subscriber only
// ever misses intermediate snapshots, never the latest one.
func (m *Manager) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Connect issues a manual connect intent: start (or reuse) the named
// bridge session, enter connecting and schedule the first status poll.
// A connect while a poll chain is already running is a no-op, so at most
// one chain exists per session identifier.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.phase == PhaseConnecting && m.pollCancel != nil {
		m.mu.Unlock()
		m.log.Debug("Connect ignored: already connecting")
		return nil
	}
	m.mu.Unlock()

	session, err := m.bridge.StartSession(ctx, m.name)
	if err != nil {
		m.transition(PhaseDisconnected, "")
		return errors.ConnectionFailed(err)
	}

	sessionID := bridge.CanonicalID(session)
	if sessionID == "" {
		sessionID = m.name
	}

	m.log.Infof("Session %s starting, polling for status", sessionID)
	m.transition(PhaseConnecting, sessionID)
	m.startPolling(sessionID)
	return nil
}

// AutoConnect issues the auto-setup connect intent: verify the bridge is
// reachable, reuse an existing resolvable session or create one, fetch
// the QR artifact and surface it to the operator, then poll as Connect
// does.
func (m *Manager) AutoConnect(ctx context.Context) error {
	m.mu.Lock()
	if m.phase == PhaseConnecting && m.pollCancel != nil {
		m.mu.Unlock()
		m.log.Debug("AutoConnect ignored: already connecting")
		return nil
	}
	m.mu.Unlock()

	if !m.bridge.Ping(ctx) {
		m.transition(PhaseDisconnected, "")
		return errors.BridgeUnavailable(nil)
	}

	var sessionID string
	if active, id := bridge.ResolveActive(m.bridge.ListSessions(ctx)); active != nil && id != "" {
		m.log.Infof("Reusing existing session %s (status %s)", id, active.Status)
		sessionID = id
	} else {
		session, err := m.bridge.StartSession(ctx, m.name)
		if err != nil {
			m.transition(PhaseDisconnected, "")
			return errors.ConnectionFailed(err)
		}
		sessionID = bridge.CanonicalID(session)
		if sessionID == "" {
			sessionID = m.name
		}
	}

	if artifact, contentType, err := m.bridge.Screenshot(ctx); err != nil {
		// The pairing UI is a convenience; its absence never aborts setup.
		m.log.Warnf("Failed to fetch QR artifact: %v", err)
	} else if m.presenter != nil {
		m.presenter.Present(artifact, contentType)
	}

	m.transition(PhaseConnecting, sessionID)
	m.startPolling(sessionID)
	return nil
}

// Disconnect issues a disconnect intent for the given session (or the
// current one when empty). On success the phase becomes disconnected and
// the identifier is cleared; on failure the current state is kept.
func (m *Manager) Disconnect(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = m.Snapshot().SessionID
	}
	if sessionID == "" {
		return errors.SessionNotResolved()
	}

	if err := m.bridge.StopSession(ctx, sessionID); err != nil {
		m.log.Error("Failed to stop session", err)
		return errors.TransportError(err)
	}

	m.mu.Lock()
	if m.pollCancel != nil {
		m.pollCancel()
		m.pollCancel = nil
	}
	m.mu.Unlock()

	m.transition(PhaseDisconnected, "")
	m.refreshSessions()
	return nil
}

// startPolling spawns a poll chain for the session unless one is active
func (m *Manager) startPolling(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollCancel != nil {
		return
	}
	pollCtx, cancel := context.WithCancel(m.ctx)
	m.pollCancel = cancel
	m.pollGen++
	m.wg.Add(1)
	go m.pollLoop(pollCtx, sessionID, m.pollGen)
}

// pollLoop is the self-terminating status poll chain. Each tick strictly
// follows the previous tick's completion plus its scheduled delay; ticks
// never overlap. Transport failures extend the delay but never change
// the phase - only an observed terminal status does that.
func (m *Manager) pollLoop(ctx context.Context, sessionID string, gen uint64) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		// A newer chain may have started while this one was winding
		// down; only clear the handle that still belongs to this chain.
		if m.pollGen == gen {
			m.pollCancel = nil
		}
		m.mu.Unlock()
	}()

	delay := m.cfg.InitialDelay
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(delay):
		}

		pollTicks.Inc()
		status, err := m.bridge.SessionStatus(ctx, sessionID)
		if ctx.Err() != nil {
			// Cancelled while the call was in flight. A stale status
			// must not override whatever intent cancelled the chain.
			return
		}
		if err != nil {
			pollFailures.Inc()
			m.log.Warnf("Status poll for %s failed, retrying: %v", sessionID, err)
			delay = m.cfg.FailureInterval
			continue
		}

		switch status.Status {
		case bridge.StatusConnected:
			// Re-resolve the canonical id from the fresh payload; the
			// bridge may have populated different identifier fields.
			resolvedID := bridge.CanonicalID(status)
			if resolvedID == "" {
				resolvedID = sessionID
			}
			m.log.Infof("Session %s connected", resolvedID)
			m.transition(PhaseConnected, resolvedID)
			m.refreshSessions()
			return
		case bridge.StatusDisconnected:
			m.log.Infof("Session %s disconnected", sessionID)
			m.transition(PhaseDisconnected, "")
			return
		default:
			m.log.Debugf("Session %s status %s, continuing to poll", sessionID, status.Status)
			delay = m.cfg.Interval
		}
	}
}

// refreshLoop periodically re-reads the full session list
func (m *Manager) refreshLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.clock.After(m.cfg.SessionRefresh):
			m.refreshSessions()
		}
	}
}

func (m *Manager) refreshSessions() {
	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.SessionRefresh)
	sessions := m.bridge.ListSessions(ctx)
	cancel()

	m.mu.Lock()
	m.sessions = sessions
	m.mu.Unlock()
}

// transition moves the state machine to a new phase and identifier and
// notifies subscribers. All mutation funnels through here.
func (m *Manager) transition(phase Phase, sessionID string) {
	m.mu.Lock()
	changed := m.phase != phase || m.sessionID != sessionID
	m.phase = phase
	m.sessionID = sessionID
	subs := m.subs
	m.mu.Unlock()

	if !changed {
		return
	}
	phaseChanges.WithLabelValues(string(phase)).Inc()

	snap := Snapshot{Phase: phase, SessionID: sessionID}
	for _, ch := range subs {
		// Keep only the latest snapshot for slow subscribers
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
