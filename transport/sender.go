// Package transport is the remote half of the actor runtime: a Sender
// that pushes wire records to remote endpoints over a cached,
// circuit-broken connection, and a Receiver that decodes them back into
// local mailbox sends.
package transport

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/net/websocket"

	"github.com/lguibr/actorhost/wire"
)

const connCacheSize = 256

type cachedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
	cb   *gobreaker.CircuitBreaker
}

// Sender is the outbound facility a RemoteRef hands wire records to. It
// keeps a bounded LRU of live connections keyed by endpoint, each
// guarded by its own circuit breaker so a dead peer gets one immediate
// reconnect attempt and then a cool-down before being tried again.
type Sender struct {
	log   *slog.Logger
	cache *lru.Cache[string, *cachedConn]
}

// NewSender constructs a Sender. log may be nil.
func NewSender(log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	cache, _ := lru.NewWithEvict[string, *cachedConn](connCacheSize, func(_ string, c *cachedConn) {
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
	return &Sender{log: log, cache: cache}
}

func (s *Sender) entryFor(endpoint string) *cachedConn {
	if c, ok := s.cache.Get(endpoint); ok {
		return c
	}
	c := &cachedConn{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "remote-send:" + endpoint,
			MaxRequests: 1,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 2
			},
		}),
	}
	s.cache.Add(endpoint, c)
	return c
}

func dialEndpoint(endpoint string) (*websocket.Conn, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host
	wsURL := fmt.Sprintf("ws://%s/actor", u.Host)
	return websocket.Dial(wsURL, "", origin)
}

// Send performs a best-effort asynchronous push of rec to target,
// attempting exactly one reconnect on a broken connection before
// dropping the message and logging.
func (s *Sender) Send(target string, rec *wire.Record) {
	c := s.entryFor(target)
	_, err := c.cb.Execute(func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn == nil {
			conn, derr := dialEndpoint(target)
			if derr != nil {
				return nil, derr
			}
			c.conn = conn
		}
		if sendErr := websocket.JSON.Send(c.conn, rec); sendErr != nil {
			c.conn.Close()
			c.conn = nil

			conn, derr := dialEndpoint(target)
			if derr != nil {
				return nil, derr
			}
			c.conn = conn
			if retryErr := websocket.JSON.Send(c.conn, rec); retryErr != nil {
				c.conn.Close()
				c.conn = nil
				return nil, retryErr
			}
		}
		return nil, nil
	})
	if err != nil {
		s.log.Warn("remote send failed, dropping message", "target", target, "kind", rec.MessageType, "error", err)
	}
}
