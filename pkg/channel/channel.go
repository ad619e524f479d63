// Package channel implements named request/response channels. A Messenger
// routes a MethodCall to the handler attached under a channel name and hands
// back exactly one response.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNotImplemented is the protocol-level signal for a method the channel does not handle.
	// It is never a data value and must not be confused with a zero result.
	ErrNotImplemented = errors.New("method not implemented")

	// ErrChannelNotFound is returned when no handler is attached under the requested name.
	ErrChannelNotFound = errors.New("channel not found")
)

// MethodCall is a single named request delivered over a channel.
type MethodCall struct {
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// MethodCallHandler answers one MethodCall with a value or an error.
type MethodCallHandler func(ctx context.Context, call MethodCall) (any, error)

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Channel string
	Method  string
	Value   any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("handler for %s/%s panicked: %v", e.Channel, e.Method, e.Value)
}

// Messenger holds the handlers attached to each channel name. Safe for concurrent use.
type Messenger struct {
	mu       sync.RWMutex
	handlers map[string]MethodCallHandler
}

// NewMessenger returns a messenger with no channels attached.
func NewMessenger() *Messenger {
	return &Messenger{
		handlers: make(map[string]MethodCallHandler),
	}
}

// SetMethodCallHandler attaches handler to name, replacing any previous one.
// A nil handler detaches the channel.
func (m *Messenger) SetMethodCallHandler(name string, handler MethodCallHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handler == nil {
		delete(m.handlers, name)
		return
	}
	m.handlers[name] = handler
}

// Channels returns the attached channel names in sorted order.
func (m *Messenger) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke delivers call to the handler attached under name and returns its response.
func (m *Messenger) Invoke(ctx context.Context, name string, call MethodCall) (result any, err error) {
	m.mu.RLock()
	handler, ok := m.handlers[name]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, name)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = PanicError{Channel: name, Method: call.Method, Value: r}
		}
	}()

	return handler(ctx, call)
}
