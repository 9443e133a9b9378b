package dbp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ============================================================================
// Body Decoding Helpers - Wire Format → Go Types
// ============================================================================

// ReadUint16 decodes a big-endian 16-bit unsigned integer.
func ReadUint16(r io.Reader) (uint16, error) {
	var v uint16
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint16: %w", err)
	}
	return v, nil
}

// ReadUint32 decodes a big-endian 32-bit unsigned integer.
func ReadUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return v, nil
}

// ReadInt32 decodes a big-endian 32-bit signed integer.
func ReadInt32(r io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int32: %w", err)
	}
	return v, nil
}

// ReadUint64 decodes a big-endian 64-bit unsigned integer.
func ReadUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return v, nil
}

// ReadFloat64 decodes a big-endian IEEE-754 double.
func ReadFloat64(r io.Reader) (float64, error) {
	bits, err := ReadUint64(r)
	if err != nil {
		return 0, fmt.Errorf("read float64: %w", err)
	}
	return math.Float64frombits(bits), nil
}

// ReadString decodes a length-prefixed string. A buffer shorter than the
// declared length is a decode failure; there is no padding.
func ReadString(r io.Reader) (string, error) {
	length, err := ReadUint16(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if length == 0 {
		return "", nil
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("read string data: %w", err)
	}
	return string(data), nil
}

// ReadPassword16 decodes the fixed 16-byte password field, trimming the
// trailing zero-byte padding. The result may be empty if the field was all
// padding; callers decide whether that is a protocol error.
func ReadPassword16(r io.Reader) (string, error) {
	var field [PasswordFieldSize]byte
	if _, err := io.ReadFull(r, field[:]); err != nil {
		return "", fmt.Errorf("read password field: %w", err)
	}
	return string(bytes.TrimRight(field[:], "\x00")), nil
}

// expectEOF returns an error if the reader still holds unconsumed bytes.
// Body decoders call it last so that oversized bodies are rejected rather
// than silently truncated.
func expectEOF(r *bytes.Reader) error {
	if r.Len() != 0 {
		return fmt.Errorf("dbp: %d trailing bytes after body", r.Len())
	}
	return nil
}
