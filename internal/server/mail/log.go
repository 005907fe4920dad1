package mail

import (
	"context"

	"github.com/basekit-io/basekit/internal/logging"
)

// LogMailer writes messages to the log instead of delivering them.
// It is the development default, where the reset link is read straight
// from the server output.
type LogMailer struct {
	logger logging.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "outgoing email",
		"to", msg.To, "subject", msg.Subject, "html", msg.HTML)
	return nil
}
