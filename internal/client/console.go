// Package client implements an RCON remote console session: dial, password
// handshake, then command/response traffic over one TCP connection.
package client

import (
	"errors"
	"net"
	"sync"
	"time"

	"dev.c0redev.rcon/internal/proto"
)

var (
	// ErrAuthFailed: the server rejected the password (it answers with
	// requestID -1 instead of echoing ours).
	ErrAuthFailed = errors.New("rcon: authentication failed")
	// ErrInvalidAuthResponse: the server never produced an auth response
	// frame where the handshake demands one.
	ErrInvalidAuthResponse = errors.New("rcon: invalid auth response")
)

// Response is one server reply, matched to a request by RequestID.
type Response struct {
	Body      string
	RequestID int32
}

// Console is an authenticated RCON session over a single TCP connection.
//
// Write and Read may run on different goroutines; the protocol supports
// pipelining several writes before reading the matching responses back.
// Reads are serialized by a mutex because they share one decode buffer, and
// writes by another so concurrent frames cannot interleave on the wire —
// the protocol has no way to resynchronize if they do.
type Console struct {
	conn        net.Conn
	seq         *proto.Sequence
	readTimeout time.Duration

	readMu sync.Mutex
	buf    []byte // one frame's worth, reused across reads

	writeMu sync.Mutex
}

// Dial connects to cfg.Addr and runs the password handshake. On any failure
// after the socket opens, the socket is closed before the error is returned;
// there is no usable half-authenticated session.
func Dial(cfg Config) (*Console, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	conn, err := net.DialTimeout("tcp", cfg.Addr, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	c := &Console{
		conn:        conn,
		seq:         proto.NewSequence(),
		readTimeout: cfg.ReadTimeout,
		buf:         make([]byte, proto.ReadBufSize),
	}
	if err := c.authenticate(cfg.Password, cfg.ConnectTimeout); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// authenticate sends the AUTH frame and checks the reply. Some servers emit
// one empty RESPONSE frame ahead of the real AUTH_RESPONSE; that single
// extra frame is tolerated by reading once more. It is an observed server
// quirk, not protocol — deliberately not a retry-until-match loop, which
// would mask genuine desync.
func (c *Console) authenticate(password string, timeout time.Duration) error {
	id, err := c.writeFrame(proto.TypeAuth, password)
	if err != nil {
		return err
	}
	pkt, err := c.readPacket(timeout)
	if err != nil {
		return err
	}
	if pkt.Type != proto.TypeAuthResponse {
		pkt, err = c.readPacket(timeout)
		if err != nil {
			return err
		}
	}
	if pkt.Type != proto.TypeAuthResponse {
		return ErrInvalidAuthResponse
	}
	if pkt.RequestID != id {
		return ErrAuthFailed
	}
	return nil
}

// Write sends cmd as an EXEC frame and returns the request ID the server
// will echo in its response.
func (c *Console) Write(cmd string) (int32, error) {
	return c.writeFrame(proto.TypeExecCommand, cmd)
}

// Read returns the next response using the session's default read timeout.
func (c *Console) Read() (Response, error) {
	return c.ReadTimeout(c.readTimeout)
}

// ReadTimeout reads and decodes exactly one frame, waiting up to timeout.
// Frames of any type other than RESPONSE yield an empty Response with
// RequestID 0 rather than an error; during normal traffic they carry nothing
// a caller can use. Responses come back in wire arrival order, which for
// compliant servers is write order — correlation is by RequestID, not
// position.
func (c *Console) ReadTimeout(timeout time.Duration) (Response, error) {
	pkt, err := c.readPacket(timeout)
	if err != nil {
		return Response{}, err
	}
	if pkt.Type != proto.TypeResponse {
		return Response{}, nil
	}
	return Response{Body: string(pkt.Body), RequestID: pkt.RequestID}, nil
}

// Command is Write then Read: one round trip with the default timeout.
func (c *Console) Command(cmd string) (Response, error) {
	if _, err := c.Write(cmd); err != nil {
		return Response{}, err
	}
	return c.Read()
}

// Close closes the connection, unblocking any in-flight Read or Write with a
// transport error. Closing twice may surface the transport's error.
func (c *Console) Close() error {
	return c.conn.Close()
}

// LocalAddr returns the local end of the connection.
func (c *Console) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// RemoteAddr returns the server's address.
func (c *Console) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Console) writeFrame(typ int32, payload string) (int32, error) {
	id := c.seq.Next()
	frame, err := proto.EncodeCommand(id, typ, payload)
	if err != nil {
		return 0, err
	}
	c.writeMu.Lock()
	_, err = c.conn.Write(frame)
	c.writeMu.Unlock()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Console) readPacket(timeout time.Duration) (proto.Packet, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()
	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return proto.Packet{}, err
	}
	frame, size, err := proto.ReadFrame(c.conn, c.buf)
	if err != nil {
		return proto.Packet{}, err
	}
	pkt, err := proto.DecodePacket(frame, size)
	if err != nil {
		return proto.Packet{}, err
	}
	// Body aliases the shared buffer; copy it out before the lock is
	// released or a concurrent read could overwrite it mid-use.
	pkt.Body = append([]byte(nil), pkt.Body...)
	return pkt, nil
}
