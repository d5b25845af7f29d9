package mocklogger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// MockHandler is a slog.Handler that records messages and levels so tests
// can assert on the warnings the tolerant load paths emit.
type MockHandler struct {
	mu             sync.Mutex
	LoggedMessages []string
	LoggedLevels   []slog.Level
}

// Enabled implements slog.Handler.
func (h *MockHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *MockHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LoggedMessages = append(h.LoggedMessages, r.Message)
	h.LoggedLevels = append(h.LoggedLevels, r.Level)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *MockHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler.
func (h *MockHandler) WithGroup(_ string) slog.Handler {
	return h
}

// HasMessageContaining reports whether any recorded message contains the
// given substring.
func (h *MockHandler) HasMessageContaining(sub string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range h.LoggedMessages {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// CountAtLevel returns how many records were logged at the given level.
func (h *MockHandler) CountAtLevel(level slog.Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	count := 0
	for _, l := range h.LoggedLevels {
		if l == level {
			count++
		}
	}
	return count
}

// Reset clears the recorded messages and levels.
func (h *MockHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LoggedMessages = nil
	h.LoggedLevels = nil
}

// NewMockLogger creates a new logger with a fresh mock handler.
func NewMockLogger() *slog.Logger {
	return slog.New(&MockHandler{})
}

// NewMockLoggerWithHandler returns both the logger and its handler so tests
// can inspect what was recorded.
func NewMockLoggerWithHandler() (*slog.Logger, *MockHandler) {
	handler := &MockHandler{}
	return slog.New(handler), handler
}
