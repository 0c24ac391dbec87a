package manager

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lguibr/actorhost/actor"
)

var (
	// ErrNameInUse is returned by Manage when the name is already bound.
	ErrNameInUse = errors.New("manager: name already managed")
	// ErrManagerStarted is returned by Manage once Init has run; the set
	// of managed actors is fixed before initialization.
	ErrManagerStarted = errors.New("manager: cannot manage after init")
)

const defaultJoinTimeout = 2 * time.Second

type entry struct {
	name    string
	act     actor.Actor
	mailbox *actor.Mailbox
	ref     *actor.LocalRef
	done    chan struct{}
}

// Manager owns a set of (name, actor, mailbox, worker) tuples and drives
// their lifecycle: Manage binds actors before startup, Init launches one
// worker goroutine per actor and delivers Start, Run blocks until the
// manager's Handle is terminated, End delivers Shutdown to every actor
// and joins workers within a bounded timeout.
type Manager struct {
	log        *slog.Logger
	endpoint   string
	handle     *Handle
	joinTimeout time.Duration

	mu      sync.RWMutex
	actors  map[string]*entry
	started bool
	ended   bool
	wg      sync.WaitGroup
}

// New constructs a Manager whose own address to remote peers is
// endpoint, as reported by GetEndpoint. The manager does not stamp it on
// wire records itself; outbound records carry the local endpoint given
// to transport.NewRemoteRef / transport.NewReceiver. log may be nil, in
// which case slog.Default() is used.
func New(endpoint string, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:         log,
		endpoint:    endpoint,
		handle:      newHandle(),
		joinTimeout: defaultJoinTimeout,
		actors:      make(map[string]*entry),
	}
}

// Manage binds name to act, creating its mailbox and LocalRef. It must
// be called before Init.
func (m *Manager) Manage(name string, act actor.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrManagerStarted
	}
	if _, exists := m.actors[name]; exists {
		return ErrNameInUse
	}
	mailbox := actor.NewMailbox(actor.DefaultMailboxCapacity)
	ref := actor.NewLocalRef(name, mailbox)
	act.Bind(ref)
	m.actors[name] = &entry{name: name, act: act, mailbox: mailbox, ref: ref, done: make(chan struct{})}
	return nil
}

// Init launches one worker goroutine per managed actor and delivers the
// synthetic Start message to each. No further Manage calls are accepted
// after Init.
func (m *Manager) Init() {
	m.mu.Lock()
	m.started = true
	entries := make([]*entry, 0, len(m.actors))
	for _, e := range m.actors {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	for _, e := range entries {
		m.wg.Add(1)
		go m.runWorker(e)
	}
}

func (m *Manager) runWorker(e *entry) {
	defer m.wg.Done()
	defer close(e.done)

	m.deliverStart(e)

	for e.act.Running() {
		env, ok := <-e.mailbox.C()
		if !ok {
			return
		}
		m.invoke(e, env)
		if _, isShutdown := env.Message.(actor.Shutdown); isShutdown {
			e.act.Stop()
		}
	}
}

func (m *Manager) deliverStart(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("actor panicked handling Start, marking dead",
				"actor", e.name, "panic", r)
			e.act.Stop()
		}
	}()
	e.act.Dispatch(&actor.Envelope{Message: actor.Start{}})
}

func (m *Manager) invoke(e *entry, env *actor.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("actor handler panicked, continuing",
				"actor", e.name, "message", env.Message, "panic", r)
		}
	}()
	e.act.Dispatch(env)
}

// Run blocks until the manager's Handle is terminated, by any managed
// actor or by an external caller.
func (m *Manager) Run() {
	<-m.handle.Done()
}

// End delivers Shutdown to every managed actor and joins their workers,
// abandoning any that don't finish within the join timeout. Idempotent.
func (m *Manager) End() {
	m.mu.Lock()
	if m.ended {
		m.mu.Unlock()
		return
	}
	m.ended = true
	entries := make([]*entry, 0, len(m.actors))
	for _, e := range m.actors {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	for _, e := range entries {
		e.ref.Send(actor.Shutdown{}, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.joinTimeout)
	defer cancel()

	g, _ := errgroup.WithContext(ctx)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			select {
			case <-e.done:
			case <-ctx.Done():
				m.log.Warn("worker join timed out, abandoning", "actor", e.name)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// GetRef resolves a managed actor's reference by name.
func (m *Manager) GetRef(name string) (actor.ActorRef, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.actors[name]
	if !ok {
		return nil, false
	}
	return e.ref, true
}

// GetEndpoint returns the address this manager advertises to peers.
func (m *Manager) GetEndpoint() string { return m.endpoint }

// GetHandle returns the manager's termination gate.
func (m *Manager) GetHandle() *Handle { return m.handle }
