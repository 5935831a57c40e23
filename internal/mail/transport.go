package mail

import "context"

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport defines the interface for dispatching email.
// This abstraction allows swapping the mock with a real provider without refactoring.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}
