package dbp

import (
	"encoding/binary"
	"fmt"
)

// Message is one DBP datagram: the decoded header plus the raw body bytes.
//
// The body is kept opaque at this layer. Callers decode it with the
// per-operation structs in bodies.go once they have inspected Type and Op.
//
// Header invariants enforced elsewhere:
//   - a Reply copies Op, Flags, and RequestID from the Request it answers
//   - a Callback carries RequestID 0 and Op OpCallbackUpdate
type Message struct {
	Version   uint8
	Type      MsgType
	Op        OpCode
	Flags     uint16
	Status    Status
	RequestID uint64
	Body      []byte
}

// AtMostOnce reports whether the sender requested at-most-once semantics.
func (m *Message) AtMostOnce() bool {
	return m.Flags&FlagAtMostOnce != 0
}

// Encode serializes the message into a single datagram payload.
//
// Layout (all integers big-endian):
//
//	[magic:u32][version:u8][type:u8][op:u16][flags:u16][status:u16]
//	[requestID:u64][bodyLen:u32][body...]
//
// Returns an error if the body exceeds what a UDP datagram can carry.
func (m *Message) Encode() ([]byte, error) {
	if len(m.Body) > maxDatagramBody {
		return nil, fmt.Errorf("dbp: body length %d exceeds maximum %d", len(m.Body), maxDatagramBody)
	}

	buf := make([]byte, HeaderSize+len(m.Body))
	binary.BigEndian.PutUint32(buf[0:4], Magic)
	buf[4] = m.Version
	buf[5] = byte(m.Type)
	binary.BigEndian.PutUint16(buf[6:8], uint16(m.Op))
	binary.BigEndian.PutUint16(buf[8:10], m.Flags)
	binary.BigEndian.PutUint16(buf[10:12], uint16(m.Status))
	binary.BigEndian.PutUint64(buf[12:20], m.RequestID)
	binary.BigEndian.PutUint32(buf[20:24], uint32(len(m.Body)))
	copy(buf[HeaderSize:], m.Body)
	return buf, nil
}

// maxDatagramBody caps the body at what fits in a single UDP datagram
// alongside the 24-byte header (65507 bytes of UDP payload over IPv4).
const maxDatagramBody = 65507 - HeaderSize

// Decode parses one datagram into a Message.
//
// It fails if the datagram is shorter than the fixed header, the magic tag
// does not match, or the declared body length disagrees with the number of
// bytes actually present. Version and message-type policy is deliberately
// NOT enforced here: the server drops non-Request or wrong-version traffic
// and the client filters non-Reply traffic, each at its own layer.
//
// The returned Body aliases data; callers that retain the message beyond
// the lifetime of the receive buffer must copy it.
func Decode(data []byte) (*Message, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("dbp: short datagram: %d bytes, need at least %d", len(data), HeaderSize)
	}

	if magic := binary.BigEndian.Uint32(data[0:4]); magic != Magic {
		return nil, fmt.Errorf("dbp: bad magic 0x%08X", magic)
	}

	bodyLen := binary.BigEndian.Uint32(data[20:24])
	if int(bodyLen) != len(data)-HeaderSize {
		return nil, fmt.Errorf("dbp: body length %d does not match datagram payload %d", bodyLen, len(data)-HeaderSize)
	}

	return &Message{
		Version:   data[4],
		Type:      MsgType(data[5]),
		Op:        OpCode(binary.BigEndian.Uint16(data[6:8])),
		Flags:     binary.BigEndian.Uint16(data[8:10]),
		Status:    Status(binary.BigEndian.Uint16(data[10:12])),
		RequestID: binary.BigEndian.Uint64(data[12:20]),
		Body:      data[HeaderSize:],
	}, nil
}

// NewRequest builds a Request message for the given operation.
func NewRequest(op OpCode, flags uint16, requestID uint64, body []byte) *Message {
	return &Message{
		Version:   Version,
		Type:      MsgRequest,
		Op:        op,
		Flags:     flags,
		RequestID: requestID,
		Body:      body,
	}
}

// NewReply builds the Reply answering req. Op, Flags, and RequestID are
// copied from the request so the client can pair them; the body must be
// empty unless status is StatusOK.
func NewReply(req *Message, status Status, body []byte) *Message {
	return &Message{
		Version:   Version,
		Type:      MsgReply,
		Op:        req.Op,
		Flags:     req.Flags,
		Status:    status,
		RequestID: req.RequestID,
		Body:      body,
	}
}

// NewCallback builds a monitor callback datagram. Callbacks sit outside the
// request/reply pairing: RequestID is 0, Flags are 0, Status is OK.
func NewCallback(body []byte) *Message {
	return &Message{
		Version: Version,
		Type:    MsgCallback,
		Op:      OpCallbackUpdate,
		Body:    body,
	}
}
