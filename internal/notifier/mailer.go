package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers notification messages to tenants.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the application log instead of delivering
// them. It is the default transport until an SMTP relay is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) Mailer {
	return &LogMailer{log: log.Named("notifier.mailer")}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("notification delivered",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
