package dbp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ============================================================================
// Body Encoding Helpers - Go Types → Wire Format
// ============================================================================

// WriteUint16 encodes a 16-bit unsigned integer, big-endian.
func WriteUint16(buf *bytes.Buffer, v uint16) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteUint32 encodes a 32-bit unsigned integer, big-endian.
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteInt32 encodes a 32-bit signed integer, big-endian two's complement.
func WriteInt32(buf *bytes.Buffer, v int32) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteUint64 encodes a 64-bit unsigned integer, big-endian.
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	return binary.Write(buf, binary.BigEndian, v)
}

// WriteFloat64 encodes a double as the big-endian representation of its
// IEEE-754 bit pattern.
func WriteFloat64(buf *bytes.Buffer, v float64) error {
	return binary.Write(buf, binary.BigEndian, math.Float64bits(v))
}

// WriteString encodes a string as a 2-byte unsigned length prefix followed
// by that many UTF-8 bytes. Strings longer than MaxStringLen cannot be
// represented on the wire.
//
// Example:
//
//	"ab" → [00 02][61 62] (4 bytes total)
func WriteString(buf *bytes.Buffer, s string) error {
	if len(s) > MaxStringLen {
		return fmt.Errorf("dbp: string length %d exceeds maximum %d", len(s), MaxStringLen)
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return fmt.Errorf("write string length: %w", err)
	}
	if _, err := buf.WriteString(s); err != nil {
		return fmt.Errorf("write string data: %w", err)
	}
	return nil
}

// WritePassword16 encodes a password into the fixed 16-byte field, padding
// with trailing zero bytes. An empty password encodes to all zeros; whether
// that is acceptable is a protocol-boundary decision, not a codec one.
// Passwords longer than the field cannot be represented and are rejected.
func WritePassword16(buf *bytes.Buffer, password string) error {
	if len(password) > PasswordFieldSize {
		return fmt.Errorf("dbp: password length %d exceeds field size %d", len(password), PasswordFieldSize)
	}
	var field [PasswordFieldSize]byte
	copy(field[:], password)
	if _, err := buf.Write(field[:]); err != nil {
		return fmt.Errorf("write password field: %w", err)
	}
	return nil
}
