// Package registry implements the global name registry: an
// authoritative map from actor name to (endpoint, owning manager) with
// heartbeat-driven liveness and cascading invalidation when a manager
// goes quiet.
package registry

import (
	"log/slog"
	"sync"
	"time"
)

// Liveness tuning (spec §3, §4.7). Kept as package constants for
// production use; NewWithTimings exists for tests that can't afford to
// wait out a real decay window.
const (
	HeartbeatTimeout       = 6 * time.Second
	HeartbeatCheckInterval = 1 * time.Second
)

type actorEntry struct {
	endpoint  string
	managerID string
}

// GlobalRegistry holds the four maps from spec.md §3 behind one
// sync.RWMutex: name->entry, manager->its actor names, manager->last
// heartbeat, and host/service config for process control.
type GlobalRegistry struct {
	log *slog.Logger

	heartbeatTimeout time.Duration
	checkInterval    time.Duration

	mu            sync.RWMutex
	byName        map[string]actorEntry
	managerActors map[string]map[string]struct{}
	heartbeats    map[string]time.Time

	hosts HostConfig

	stopSweep chan struct{}
	sweepDone chan struct{}
}

// New constructs a GlobalRegistry using the production liveness
// constants.
func New(log *slog.Logger, hosts HostConfig) *GlobalRegistry {
	return NewWithTimings(log, hosts, HeartbeatTimeout, HeartbeatCheckInterval)
}

// NewWithTimings constructs a GlobalRegistry with custom liveness
// timing, primarily so tests can exercise decay without a real 6s wait.
func NewWithTimings(log *slog.Logger, hosts HostConfig, heartbeatTimeout, checkInterval time.Duration) *GlobalRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &GlobalRegistry{
		log:              log,
		heartbeatTimeout: heartbeatTimeout,
		checkInterval:    checkInterval,
		byName:           make(map[string]actorEntry),
		managerActors:    make(map[string]map[string]struct{}),
		heartbeats:       make(map[string]time.Time),
		hosts:            hosts,
		stopSweep:        make(chan struct{}),
		sweepDone:        make(chan struct{}),
	}
}

// Start launches the background decay sweeper.
func (g *GlobalRegistry) Start() {
	go g.sweepLoop()
}

// Stop halts the sweeper and waits for it to exit.
func (g *GlobalRegistry) Stop() {
	close(g.stopSweep)
	<-g.sweepDone
}

func (g *GlobalRegistry) sweepLoop() {
	defer close(g.sweepDone)
	t := time.NewTicker(g.checkInterval)
	defer t.Stop()
	for {
		select {
		case <-g.stopSweep:
			return
		case <-t.C:
			g.sweep()
		}
	}
}

// sweep evicts every manager whose last heartbeat is older than the
// decay threshold, cascading to every actor name that manager owned
// (I4).
func (g *GlobalRegistry) sweep() {
	now := time.Now()
	g.mu.Lock()
	defer g.mu.Unlock()
	var stale []string
	for id, last := range g.heartbeats {
		if now.Sub(last) > g.heartbeatTimeout {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		for name := range g.managerActors[id] {
			delete(g.byName, name)
			g.log.Info("cascaded decay: actor invalidated", "manager", id, "actor", name)
		}
		delete(g.managerActors, id)
		delete(g.heartbeats, id)
		g.log.Info("manager decayed", "manager", id)
	}
}

func (g *GlobalRegistry) isOnlineLocked(managerID string) bool {
	last, ok := g.heartbeats[managerID]
	if !ok {
		return false
	}
	return time.Since(last) < g.heartbeatTimeout
}

// Register inserts name -> endpoint under managerID, rejecting a
// collision with a distinct existing name (I2). Registration is also an
// implicit heartbeat for managerID.
func (g *GlobalRegistry) Register(managerID, name, endpoint string) (ok bool, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.byName[name]; exists {
		return false, "Name already registered"
	}
	g.byName[name] = actorEntry{endpoint: endpoint, managerID: managerID}
	if g.managerActors[managerID] == nil {
		g.managerActors[managerID] = make(map[string]struct{})
	}
	g.managerActors[managerID][name] = struct{}{}
	g.heartbeats[managerID] = time.Now()
	return true, ""
}

// Unregister removes name from the registry. Idempotent: unregistering
// an absent name succeeds silently. The owning manager's heartbeat
// entry is left untouched — unregistering one actor must not affect
// liveness tracking for the manager's other actors (see DESIGN.md Open
// Question).
func (g *GlobalRegistry) Unregister(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.byName[name]
	if !ok {
		return
	}
	delete(g.byName, name)
	if set, ok := g.managerActors[entry.managerID]; ok {
		delete(set, name)
	}
}

// Lookup resolves name to its endpoint and current online bit (I3).
// found is false when name has never been registered or has decayed.
func (g *GlobalRegistry) Lookup(name string) (endpoint string, online bool, found bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.byName[name]
	if !ok {
		return "", false, false
	}
	return entry.endpoint, g.isOnlineLocked(entry.managerID), true
}

// Heartbeat refreshes managerID's liveness timestamp.
func (g *GlobalRegistry) Heartbeat(managerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.heartbeats[managerID] = time.Now()
}
