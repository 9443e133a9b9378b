// Package bytesize parses and renders human-readable byte sizes for
// configuration values like the datagram receive buffer.
package bytesize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes that unmarshals from human-readable strings
// like "64KiB", "32Ki", "1500" or "0.5MiB", as well as plain numbers.
//
// Supported units:
//   - Plain numbers: bytes
//   - Binary units (×1024): Ki/KiB, Mi/MiB
//   - Decimal units (×1000): K/KB, M/MB
//   - Bytes: B
type ByteSize uint64

// Common byte size constants
const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
)

// byteSizePattern matches a number followed by an optional unit suffix.
var byteSizePattern = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*([a-z]*)\s*$`)

// unitMultipliers maps unit suffixes to their byte multipliers.
var unitMultipliers = map[string]ByteSize{
	"":    B,
	"b":   B,
	"k":   KB,
	"kb":  KB,
	"m":   MB,
	"mb":  MB,
	"ki":  KiB,
	"kib": KiB,
	"mi":  MiB,
	"mib": MiB,
}

// ParseByteSize parses a human-readable byte size string.
func ParseByteSize(s string) (ByteSize, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := byteSizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}

	numStr := matches[1]
	unit := strings.ToLower(matches[2])

	multiplier, ok := unitMultipliers[unit]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", matches[2])
	}

	if strings.Contains(numStr, ".") {
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size: %q", numStr)
		}
		return ByteSize(num * float64(multiplier)), nil
	}

	num, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size: %q", numStr)
	}
	return ByteSize(num) * multiplier, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize fields
// decode directly from config strings.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String renders the size with the largest binary unit that divides it
// evenly, falling back to plain bytes. The output round-trips through
// ParseByteSize: 65536 renders as "64KiB", 65535 as "65535".
func (b ByteSize) String() string {
	switch {
	case b >= MiB && b%MiB == 0:
		return fmt.Sprintf("%dMiB", uint64(b/MiB))
	case b >= KiB && b%KiB == 0:
		return fmt.Sprintf("%dKiB", uint64(b/KiB))
	default:
		return strconv.FormatUint(uint64(b), 10)
	}
}

// MarshalYAML renders the size in its human-readable form so saved config
// files stay readable.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// Int returns the ByteSize as an int for APIs that size buffers.
func (b ByteSize) Int() int {
	return int(b)
}
