package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false // Disable colors for easier testing
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

// ============================================================================
// Level Filtering Tests
// ============================================================================

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")
		defer SetLevel("INFO")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		assert.Contains(t, out, "debug message")
		assert.Contains(t, out, "info message")
		assert.Contains(t, out, "warn message")
		assert.Contains(t, out, "error message")
	})

	t.Run("InfoLevelFiltersDebug", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")

		Debug("debug message")
		Info("info message")

		out := buf.String()
		assert.NotContains(t, out, "debug message")
		assert.Contains(t, out, "info message")
	})

	t.Run("ErrorAlwaysLogged", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("ERROR")
		defer SetLevel("INFO")

		Info("info message")
		Error("error message")

		out := buf.String()
		assert.NotContains(t, out, "info message")
		assert.Contains(t, out, "error message")
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("LOUD") // no-op

		Info("still here")
		assert.Contains(t, buf.String(), "still here")
	})
}

// ============================================================================
// Structured Field Tests
// ============================================================================

func TestStructuredFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")

	Info("request received", KeyOp, "DEPOSIT", KeyReqID, uint64(42), KeyClient, "127.0.0.1:5000")

	out := buf.String()
	assert.Contains(t, out, "request received")
	assert.Contains(t, out, "op=DEPOSIT")
	assert.Contains(t, out, "req_id=42")
	assert.Contains(t, out, "client=127.0.0.1:5000")
}

func TestFieldConstructors(t *testing.T) {
	assert.Equal(t, KeyOp, Op("OPEN").Key)
	assert.Equal(t, "OPEN", Op("OPEN").Value.String())

	assert.Equal(t, KeyReqID, ReqID(7).Key)
	assert.Equal(t, KeyAccount, Account(10001).Key)
	assert.Equal(t, KeyClient, Client("1.2.3.4:9").Key)
	assert.Equal(t, KeyStatus, Status("OK").Key)

	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
	assert.Equal(t, "", Err(nil).Value.String())
}

// ============================================================================
// Format Tests
// ============================================================================

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	defer SetFormat("text")

	Info("json line", KeyOp, "OPEN")

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "json line", decoded["msg"])
	assert.Equal(t, "OPEN", decoded["op"])
}

func TestTextFormatShape(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	Info("shaped")

	out := buf.String()
	// [timestamp] [LEVEL] message
	assert.True(t, strings.HasPrefix(out, "["), "line should start with timestamp: %q", out)
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "shaped")
}

// ============================================================================
// With Tests
// ============================================================================

func TestWithBindsFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")

	l := With(KeyComponent, "server")
	l.Info("bound")

	out := buf.String()
	assert.Contains(t, out, "component=server")
	assert.Contains(t, out, "bound")
}
