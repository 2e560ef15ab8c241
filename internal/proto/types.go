package proto

// Packet types on the wire. Requests and responses share the numeric space:
// 2 is SERVERDATA_EXECCOMMAND outbound and SERVERDATA_AUTH_RESPONSE inbound.
const (
	TypeResponse     int32 = 0
	TypeExecCommand  int32 = 2
	TypeAuthResponse int32 = 2
	TypeAuth         int32 = 3
)

// Wire layout: size(4) + requestID(4) + type(4) + body + two NUL bytes, all
// ints signed 32-bit little-endian. The size field counts everything after
// itself, so the smallest legal value is 10 (empty body).
const (
	MinFrameSize  = 10
	MaxFrameSize  = 4106 // largest size field a server may declare
	MaxCommandLen = 1014 // encoded command bytes in one request
	ReadBufSize   = 4110 // size prefix + max frame
)

// Packet is one decoded frame.
type Packet struct {
	RequestID int32
	Type      int32
	Body      []byte
}
