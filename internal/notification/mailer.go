// Package notification sends the e-mails that accompany leave requests.
package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("notification: message has no recipients")

// Message is a rendered e-mail. HTMLBody is sent as an alternative part when
// set.
type Message struct {
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type noopMailer struct {
	logger *zap.Logger
}

// NewNoop returns the mailer used when no mail transport is configured. It
// only logs what would have been sent.
func NewNoop(logger ...*zap.Logger) Mailer {
	l := zap.L().Named("notification.noop")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.noop")
	}
	return &noopMailer{logger: l}
}

func (m *noopMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	m.logger.Info("mail disabled, message dropped",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func buildMessage(from string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}
	return m
}
