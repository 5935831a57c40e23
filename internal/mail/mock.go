package mail

import (
	"context"
	"log"
	"sync"
)

// MockTransport implements the Transport interface by logging messages and
// recording them in memory. Replace with ResendTransport for production use.
type MockTransport struct {
	mu   sync.Mutex
	sent []Message
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	log.Printf("📨 [MockMail] To %s — %s", msg.To, msg.Subject)
	return nil
}

// Sent returns a copy of every message dispatched so far.
func (m *MockTransport) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
