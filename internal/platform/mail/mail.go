// Package mail defines the outbound email contract used by the alerting
// bots, an Amazon SES v2 implementation, and a mock sender for tests.
package mail

import (
	"context"
	"errors"
	"sync"
)

// Message is a single outbound email. HTML and text bodies are both
// populated for clinical alerts; plain advisory mails may set only Text.
type Message struct {
	From     string
	To       []string
	CC       []string
	Subject  string
	HTMLBody string
	TextBody string
	Tags     map[string]string
}

// Sender delivers a Message and returns the provider message ID. Transport
// and authentication failures surface as errors.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ---------------------------------------------------------------------------
// Mock Sender (test double)
// ---------------------------------------------------------------------------

// MockSender is a test double for Sender that records every call.
type MockSender struct {
	mu         sync.Mutex
	calls      []Message
	ShouldFail bool
	FailError  string
}

// Send records the message and optionally returns an error.
func (m *MockSender) Send(_ context.Context, msg Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, msg)
	if m.ShouldFail {
		return "", errors.New(m.FailError)
	}
	return "mock-message-id", nil
}

// Calls returns a copy of the recorded messages.
func (m *MockSender) Calls() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.calls))
	copy(out, m.calls)
	return out
}
