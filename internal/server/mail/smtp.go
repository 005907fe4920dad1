package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const (
	smtpDialTimeout = 8 * time.Second
	smtpIOTimeout   = 15 * time.Second
)

// SMTPMailer delivers messages over SMTP, upgrading to TLS when the
// server offers STARTTLS. Authentication is skipped when no username is
// configured, which matches local relays such as MailHog.
type SMTPMailer struct {
	addr     string
	username string
	password string
	from     string
	fromName string
}

// NewSMTPMailer constructs an SMTPMailer for the given relay address
// ("host:port") and sender identity.
func NewSMTPMailer(addr, username, password, from, fromName string) *SMTPMailer {
	return &SMTPMailer{
		addr:     addr,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	body := buildMIME(m.from, m.fromName, msg)

	conn, err := net.DialTimeout("tcp", m.addr, smtpDialTimeout)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	// One deadline covers the whole exchange so a stalled server cannot
	// hang the caller.
	deadline := time.Now().Add(smtpIOTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	host, _, err := net.SplitHostPort(m.addr)
	if err != nil {
		host = m.addr
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}

// buildMIME assembles the wire form of a message with CRLF-separated
// headers.
func buildMIME(from, fromName string, msg Message) []byte {
	fromHeader := from
	if fromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}
	lines := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		msg.HTML,
	}
	return []byte(strings.Join(lines, "\r\n"))
}
