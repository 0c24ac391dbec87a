package registry

import (
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/lguibr/actorhost/regproto"
)

// Server binds the GlobalRegistry's request/reply socket: each
// connection is a persistent websocket client on /rpc (such as a
// registryclient.Client) that may issue many sequential round trips,
// matching the original's REQ/REP socket usage.
type Server struct {
	log      *slog.Logger
	registry *GlobalRegistry
	endpoint string

	listener net.Listener
	httpSrv  *http.Server
}

// NewServer binds endpoint and serves reg's RPCs over it once
// ListenAndServe is called.
func NewServer(endpoint string, reg *GlobalRegistry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, registry: reg, endpoint: endpoint}
}

// ListenAndServe blocks serving the registry's RPC socket until Close
// is called, at which point it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.Handle("/rpc", websocket.Handler(s.handleConn))

	ln, err := net.Listen("tcp", s.endpoint)
	if err != nil {
		return err
	}
	s.listener = ln
	s.httpSrv = &http.Server{Handler: mux}
	return s.httpSrv.Serve(ln)
}

// Addr returns the bound listener's address. Only valid after
// ListenAndServe has started listening; primarily useful in tests that
// bind an ephemeral port ("127.0.0.1:0").
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting new connections and unblocks ListenAndServe.
func (s *Server) Close() error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Close()
}

func (s *Server) handleConn(ws *websocket.Conn) {
	defer ws.Close()
	for {
		var req regproto.Frame
		if err := websocket.JSON.Receive(ws, &req); err != nil {
			return
		}
		reply := s.handle(req)
		if err := websocket.JSON.Send(ws, reply); err != nil {
			return
		}
	}
}

func (s *Server) handle(req regproto.Frame) regproto.Frame {
	switch req.MessageType {
	case regproto.RegisterActor:
		ok, reason := s.registry.Register(req.ManagerID, req.ActorName, req.ActorEndpoint)
		if !ok {
			s.log.Warn("registration rejected", "actor", req.ActorName, "reason", reason)
			return regproto.Frame{MessageType: regproto.RegistrationFailed, ActorName: req.ActorName, Reason: reason}
		}
		s.log.Info("registered actor", "actor", req.ActorName, "manager", req.ManagerID, "endpoint", req.ActorEndpoint)
		return regproto.Frame{MessageType: regproto.RegistrationOk, ActorName: req.ActorName}

	case regproto.UnregisterActor:
		s.registry.Unregister(req.ActorName)
		return regproto.Frame{MessageType: regproto.RegistrationOk, ActorName: req.ActorName}

	case regproto.LookupActor:
		endpoint, online, found := s.registry.Lookup(req.ActorName)
		if !found {
			return regproto.Frame{MessageType: regproto.LookupResult, ActorName: req.ActorName, Online: false}
		}
		ep := endpoint
		return regproto.Frame{MessageType: regproto.LookupResult, ActorName: req.ActorName, Endpoint: &ep, Online: online}

	case regproto.Heartbeat:
		s.registry.Heartbeat(req.ManagerID)
		return regproto.Frame{MessageType: regproto.HeartbeatAck}

	case regproto.StartManager:
		return statusFrame(s.registry.SystemctlCommand(req.ManagerID, "start"))
	case regproto.StopManager:
		return statusFrame(s.registry.SystemctlCommand(req.ManagerID, "stop"))
	case regproto.RestartManager:
		return statusFrame(s.registry.SystemctlCommand(req.ManagerID, "restart"))

	default:
		s.log.Warn("unknown registry message type", "type", req.MessageType)
		return regproto.Frame{MessageType: regproto.ErrorFrame, Reason: "unknown message type: " + req.MessageType}
	}
}

func statusFrame(st ManagerStatus) regproto.Frame {
	return regproto.Frame{MessageType: regproto.ManagerStatus, ManagerID: st.ManagerID, Running: st.Running, Error: st.Error}
}
