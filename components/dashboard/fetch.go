package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrNotConfigured marks a fetcher that lacks its credential or client.
var ErrNotConfigured = errors.New("dashboard: not configured")

// MessageNotConfigured is the failure message surfaced for ErrNotConfigured.
const MessageNotConfigured = "not configured"

// FetchStatus enumerates the fetch state machine states.
type FetchStatus int

const (
	FetchIdle FetchStatus = iota
	FetchLoading
	FetchSucceeded
	FetchFailed
)

func (s FetchStatus) String() string {
	switch s {
	case FetchLoading:
		return "loading"
	case FetchSucceeded:
		return "succeeded"
	case FetchFailed:
		return "failed"
	default:
		return "idle"
	}
}

// FetchState is the tagged state exposed to the presentation layer. Payload is
// only meaningful when Status is FetchSucceeded, Message when it is FetchFailed.
type FetchState[T any] struct {
	Status     FetchStatus
	Payload    T
	Message    string
	Generation uint64
}

// FetchViewOf converts a state into its transport form.
func FetchViewOf[T any](state FetchState[T]) FetchView {
	view := FetchView{
		Status:     state.Status.String(),
		Message:    state.Message,
		Generation: state.Generation,
	}
	if state.Status == FetchSucceeded {
		view.Payload = fmt.Sprint(state.Payload)
	}
	return view
}

// Fetcher performs the single external call a machine drives. Ready is checked
// before entering Loading; returning ErrNotConfigured short-circuits to Failed.
type Fetcher[T any] interface {
	Ready() error
	Fetch(ctx context.Context) (T, error)
}

// FetchFunc adapts a function into an always-ready Fetcher.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Ready always succeeds.
func (FetchFunc[T]) Ready() error { return nil }

// Fetch calls f.
func (f FetchFunc[T]) Fetch(ctx context.Context) (T, error) { return f(ctx) }

// FetchOptions configures a FetchMachine.
type FetchOptions struct {
	Name           string
	Timeout        time.Duration
	FailureMessage func(error) string
	Logger         *slog.Logger
	Telemetry      Telemetry
}

// FetchMachine drives one outstanding external call per mounted instance.
//
// Re-triggering while Loading cancels the in-flight call and starts a new one;
// every trigger bumps a generation counter, and completions carrying an older
// generation, or arriving after Unmount, are dropped.
type FetchMachine[T any] struct {
	fetcher Fetcher[T]
	opts    FetchOptions

	mu         sync.Mutex
	state      atomic.Pointer[FetchState[T]]
	generation uint64
	mounted    bool
	mountID    string
	base       context.Context
	stop       context.CancelFunc
	cancel     context.CancelFunc

	// emitMu keeps listener delivery in state-change order.
	emitMu       sync.Mutex
	listenerMu   sync.Mutex
	listeners    map[int]func(FetchState[T])
	nextListener int

	inflight sync.WaitGroup
}

// NewFetchMachine builds an unmounted machine in the Idle state.
func NewFetchMachine[T any](fetcher Fetcher[T], opts FetchOptions) *FetchMachine[T] {
	if opts.Name == "" {
		opts.Name = "fetch"
	}
	if opts.FailureMessage == nil {
		opts.FailureMessage = DefaultFailureMessage
	}
	opts.Logger = normalizeLogger(opts.Logger)
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &FetchMachine[T]{
		fetcher:   fetcher,
		opts:      opts,
		listeners: map[int]func(FetchState[T]){},
	}
}

// DefaultFailureMessage distinguishes "not configured" from runtime failures.
func DefaultFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return MessageNotConfigured
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return fmt.Sprintf("request failed: %v", err)
	}
}

// Mount resets the machine to Idle and performs the single automatic trigger.
// The returned channel closes once that cycle settles. Mounting an already
// mounted machine is a no-op.
func (m *FetchMachine[T]) Mount(ctx context.Context) <-chan struct{} {
	if ctx == nil {
		ctx = context.Background()
	}
	m.mu.Lock()
	if m.mounted {
		m.mu.Unlock()
		return closedSignal()
	}
	m.mounted = true
	m.mountID = uuid.NewString()
	m.base, m.stop = context.WithCancel(context.WithoutCancel(ctx))
	m.setStateLocked(FetchState[T]{Status: FetchIdle, Generation: m.generation})
	m.mu.Unlock()
	return m.trigger("mount")
}

// Refresh starts a new Loading cycle from any state. An in-flight call is
// cancelled and its result discarded. Refresh on an unmounted machine is a no-op.
func (m *FetchMachine[T]) Refresh() <-chan struct{} {
	return m.trigger("refresh")
}

// Unmount tears the instance down; a pending completion becomes a no-op.
func (m *FetchMachine[T]) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return
	}
	m.mounted = false
	m.generation++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.stop != nil {
		m.stop()
	}
	m.setStateLocked(FetchState[T]{Status: FetchIdle, Generation: m.generation})
}

// Mounted reports whether the machine currently has a presentation target.
func (m *FetchMachine[T]) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

// State returns the current state. It never blocks on an in-progress
// transition, so listeners may call it.
func (m *FetchMachine[T]) State() FetchState[T] {
	if state := m.state.Load(); state != nil {
		return *state
	}
	return FetchState[T]{Status: FetchIdle}
}

// Wait blocks until every in-flight call has returned.
func (m *FetchMachine[T]) Wait() {
	m.inflight.Wait()
}

// Subscribe registers fn for every state transition. Listeners run on the
// goroutine that caused the transition, in transition order. They may call
// State but must not call Mount, Refresh, Unmount or Mounted.
func (m *FetchMachine[T]) Subscribe(fn func(FetchState[T])) func() {
	m.listenerMu.Lock()
	defer m.listenerMu.Unlock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	return func() {
		m.listenerMu.Lock()
		defer m.listenerMu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *FetchMachine[T]) trigger(reason string) <-chan struct{} {
	m.mu.Lock()
	if !m.mounted {
		m.mu.Unlock()
		return closedSignal()
	}
	m.generation++
	gen := m.generation
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	base := m.base
	if err := m.fetcher.Ready(); err != nil {
		state := FetchState[T]{Status: FetchFailed, Message: m.opts.FailureMessage(err), Generation: gen}
		m.transitionLocked(state)
		m.opts.Logger.Info("fetch skipped", "name", m.opts.Name, "reason", reason, "error", err)
		m.opts.Telemetry.Record(base, "dashboard.fetch.not_ready", map[string]any{
			"name":     m.opts.Name,
			"mount_id": m.mountID,
		})
		return closedSignal()
	}
	var callCtx context.Context
	var cancel context.CancelFunc
	if m.opts.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(base, m.opts.Timeout)
	} else {
		callCtx, cancel = context.WithCancel(base)
	}
	m.cancel = cancel
	m.inflight.Add(1)
	m.transitionLocked(FetchState[T]{Status: FetchLoading, Generation: gen})
	m.opts.Telemetry.Record(base, "dashboard.fetch.start", map[string]any{
		"name":       m.opts.Name,
		"mount_id":   m.mountID,
		"reason":     reason,
		"generation": gen,
	})
	done := make(chan struct{})
	go m.run(callCtx, cancel, gen, done)
	return done
}

func (m *FetchMachine[T]) run(ctx context.Context, cancel context.CancelFunc, gen uint64, done chan struct{}) {
	defer m.inflight.Done()
	defer close(done)
	defer cancel()

	payload, err := m.fetcher.Fetch(ctx)

	m.mu.Lock()
	if !m.mounted || gen != m.generation {
		m.mu.Unlock()
		m.opts.Logger.Debug("dropping superseded fetch result", "name", m.opts.Name, "generation", gen)
		return
	}
	m.cancel = nil
	event := "dashboard.fetch.success"
	state := FetchState[T]{Status: FetchSucceeded, Payload: payload, Generation: gen}
	if err != nil {
		event = "dashboard.fetch.failure"
		state = FetchState[T]{Status: FetchFailed, Message: m.opts.FailureMessage(err), Generation: gen}
		m.opts.Logger.Warn("fetch failed", "name", m.opts.Name, "generation", gen, "error", err)
	}
	base := m.base
	m.transitionLocked(state)
	m.opts.Telemetry.Record(base, event, map[string]any{
		"name":       m.opts.Name,
		"generation": gen,
	})
}

// transitionLocked stores state and delivers it to listeners. It must be called
// with m.mu held and releases it.
func (m *FetchMachine[T]) transitionLocked(state FetchState[T]) {
	m.setStateLocked(state)
	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()

	m.listenerMu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(FetchState[T]), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.listenerMu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}

func (m *FetchMachine[T]) setStateLocked(state FetchState[T]) {
	m.state.Store(&state)
}

func closedSignal() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
