// Package registryclient is a manager's handle onto the GlobalRegistry:
// a background heartbeat loop plus synchronous register/lookup RPCs,
// all serialized over one connection, matching the original's
// _socket_lock design.
package registryclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/lguibr/actorhost/regproto"
)

// Liveness/timeout tuning (spec §4.6).
const (
	HeartbeatInterval = 2 * time.Second
	RPCTimeout        = 5 * time.Second
)

var (
	ErrNotFound = errors.New("registryclient: actor not found")
	ErrOffline  = errors.New("registryclient: actor offline")
	ErrTimeout  = errors.New("registryclient: operation timed out")
)

// RegistrationFailedError reports a rejected RegisterActor RPC, e.g. a
// name collision.
type RegistrationFailedError struct {
	ActorName string
	Reason    string
}

func (e *RegistrationFailedError) Error() string {
	return fmt.Sprintf("registryclient: registration failed for %q: %s", e.ActorName, e.Reason)
}

// Client is a single manager's connection to the registry. All RPCs,
// including the background heartbeat, are serialized through mu to
// match the registry's one-request-at-a-time-per-connection protocol.
type Client struct {
	log       *slog.Logger
	managerID string
	endpoint  string

	mu   sync.Mutex
	conn *websocket.Conn

	hbStop chan struct{}
	hbDone chan struct{}
	hbOnce sync.Once
}

// New constructs a client for managerID talking to the registry at
// endpoint. No connection is opened until the first RPC.
func New(managerID, endpoint string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{log: log, managerID: managerID, endpoint: endpoint}
}

func (c *Client) dial() (*websocket.Conn, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host
	wsURL := fmt.Sprintf("ws://%s/rpc", u.Host)
	return websocket.Dial(wsURL, "", origin)
}

func (c *Client) sendRecv(ctx context.Context, req regproto.Frame) (regproto.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := c.dial()
		if err != nil {
			return regproto.Frame{}, fmt.Errorf("registryclient: dial: %w", err)
		}
		c.conn = conn
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(deadline)
	}

	if err := websocket.JSON.Send(c.conn, req); err != nil {
		c.conn.Close()
		c.conn = nil
		return regproto.Frame{}, fmt.Errorf("registryclient: send: %w", err)
	}
	var reply regproto.Frame
	if err := websocket.JSON.Receive(c.conn, &reply); err != nil {
		c.conn.Close()
		c.conn = nil
		if errors.Is(err, context.DeadlineExceeded) || isTimeoutErr(err) {
			return regproto.Frame{}, ErrTimeout
		}
		return regproto.Frame{}, fmt.Errorf("registryclient: receive: %w", err)
	}
	return reply, nil
}

func isTimeoutErr(err error) bool {
	type timeout interface{ Timeout() bool }
	te, ok := err.(timeout)
	return ok && te.Timeout()
}

// StartHeartbeat launches the background heartbeat loop.
func (c *Client) StartHeartbeat() {
	c.hbStop = make(chan struct{})
	c.hbDone = make(chan struct{})
	go c.heartbeatLoop()
}

func (c *Client) heartbeatLoop() {
	defer close(c.hbDone)
	t := time.NewTicker(HeartbeatInterval)
	defer t.Stop()
	for {
		select {
		case <-c.hbStop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), RPCTimeout)
			_, err := c.sendRecv(ctx, regproto.Frame{
				MessageType: regproto.Heartbeat,
				ManagerID:   c.managerID,
				TimestampMS: time.Now().UnixMilli(),
			})
			cancel()
			if err != nil {
				c.log.Warn("heartbeat failed", "error", err)
			}
		}
	}
}

// StopHeartbeat halts the background loop and waits for it to exit.
// Safe to call more than once.
func (c *Client) StopHeartbeat() {
	if c.hbStop == nil {
		return
	}
	c.hbOnce.Do(func() { close(c.hbStop) })
	<-c.hbDone
}

// Register performs the synchronous RegisterActor RPC.
func (c *Client) Register(ctx context.Context, actorName, endpoint string) error {
	ctx, cancel := context.WithTimeout(ctx, RPCTimeout)
	defer cancel()
	reply, err := c.sendRecv(ctx, regproto.Frame{
		MessageType:   regproto.RegisterActor,
		ManagerID:     c.managerID,
		ActorName:     actorName,
		ActorEndpoint: endpoint,
	})
	if err != nil {
		return err
	}
	switch reply.MessageType {
	case regproto.RegistrationOk:
		return nil
	case regproto.RegistrationFailed:
		return &RegistrationFailedError{ActorName: reply.ActorName, Reason: reply.Reason}
	default:
		return fmt.Errorf("registryclient: unexpected reply %q", reply.MessageType)
	}
}

// Unregister performs the UnregisterActor RPC. Idempotent on the server
// side.
func (c *Client) Unregister(ctx context.Context, actorName string) error {
	ctx, cancel := context.WithTimeout(ctx, RPCTimeout)
	defer cancel()
	_, err := c.sendRecv(ctx, regproto.Frame{MessageType: regproto.UnregisterActor, ActorName: actorName})
	return err
}

// Lookup resolves actorName, failing with ErrOffline if its owning
// manager has decayed.
func (c *Client) Lookup(ctx context.Context, actorName string) (string, error) {
	endpoint, online, err := c.lookupRaw(ctx, actorName)
	if err != nil {
		return "", err
	}
	if !online {
		return "", fmt.Errorf("%w: %s", ErrOffline, actorName)
	}
	return endpoint, nil
}

// LookupAllowOffline resolves actorName regardless of its online bit.
func (c *Client) LookupAllowOffline(ctx context.Context, actorName string) (string, bool, error) {
	return c.lookupRaw(ctx, actorName)
}

func (c *Client) lookupRaw(ctx context.Context, actorName string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, RPCTimeout)
	defer cancel()
	reply, err := c.sendRecv(ctx, regproto.Frame{MessageType: regproto.LookupActor, ActorName: actorName})
	if err != nil {
		return "", false, err
	}
	if reply.MessageType != regproto.LookupResult {
		return "", false, fmt.Errorf("registryclient: unexpected reply %q", reply.MessageType)
	}
	if reply.Endpoint == nil {
		return "", false, fmt.Errorf("%w: %s", ErrNotFound, actorName)
	}
	return *reply.Endpoint, reply.Online, nil
}

// Close stops the heartbeat loop and closes the socket.
func (c *Client) Close() error {
	c.StopHeartbeat()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
