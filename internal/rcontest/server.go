// Package rcontest runs a minimal in-process RCON server on loopback TCP.
// It speaks just enough of the protocol to exercise a client: password
// handshake, request-ID echo, and a few configurable server quirks.
package rcontest

import (
	"net"
	"sync"

	"dev.c0redev.rcon/internal/proto"
)

// Config controls the server's behavior per connection.
type Config struct {
	Password string
	// Handler produces the reply body for each exec command. Nil installs
	// an echo handler.
	Handler func(cmd string) string
	// LeadingJunk empty RESPONSE frames are sent ahead of the auth
	// response, imitating servers that flush a stale frame first.
	LeadingJunk int
	// RejectAuth answers the handshake with requestID -1 regardless of
	// password, the on-wire signal for bad credentials.
	RejectAuth bool
	// ExecRespType overrides the type field on exec replies. Zero value is
	// TypeResponse, which is also the real one.
	ExecRespType int32
	// Mute drops exec commands without replying, for timeout tests.
	Mute bool
}

// Server is one listening test server. Close when done.
type Server struct {
	cfg Config
	ln  net.Listener
	wg  sync.WaitGroup
}

// Start listens on an ephemeral loopback port and serves until Close.
func Start(cfg Config) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	if cfg.Handler == nil {
		cfg.Handler = func(cmd string) string { return cmd }
	}
	s := &Server{cfg: cfg, ln: ln}
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Close stops the listener and waits for connection handlers to drain.
func (s *Server) Close() {
	s.ln.Close()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.serveConn(conn)
		}()
	}
}

func (s *Server) serveConn(conn net.Conn) {
	buf := make([]byte, proto.ReadBufSize)
	authed := false
	for {
		frame, size, err := proto.ReadFrame(conn, buf)
		if err != nil {
			return
		}
		pkt, err := proto.DecodePacket(frame, size)
		if err != nil {
			return
		}
		switch {
		case pkt.Type == proto.TypeAuth:
			for i := 0; i < s.cfg.LeadingJunk; i++ {
				if err := reply(conn, pkt.RequestID, proto.TypeResponse, ""); err != nil {
					return
				}
			}
			id := pkt.RequestID
			if s.cfg.RejectAuth || string(pkt.Body) != s.cfg.Password {
				id = -1
			} else {
				authed = true
			}
			if err := reply(conn, id, proto.TypeAuthResponse, ""); err != nil {
				return
			}
		case pkt.Type == proto.TypeExecCommand && authed:
			if s.cfg.Mute {
				continue
			}
			typ := s.cfg.ExecRespType
			if typ == 0 {
				typ = proto.TypeResponse
			}
			if err := reply(conn, pkt.RequestID, typ, s.cfg.Handler(string(pkt.Body))); err != nil {
				return
			}
		default:
			// exec before auth, or an unknown type: drop the frame
		}
	}
}

func reply(conn net.Conn, id, typ int32, body string) error {
	frame, err := proto.EncodeCommand(id, typ, body)
	if err != nil {
		return err
	}
	if _, err := conn.Write(frame); err != nil {
		return err
	}
	return nil
}
