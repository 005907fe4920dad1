// Package mail delivers transactional email for the password-reset
// workflow. A single Mailer interface hides the configured transport;
// the message body is rendered once and reused by every transport.
package mail

import "context"

// Message is a rendered email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
