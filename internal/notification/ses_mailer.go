package notification

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"go.uber.org/zap"
)

type sesMailer struct {
	client sesiface.SESAPI
	from   string
	logger *zap.Logger
}

// NewSESClient builds an SES client from the default credential chain.
func NewSESClient(region string) (sesiface.SESAPI, error) {
	sess, err := session.NewSession(aws.NewConfig().WithRegion(region))
	if err != nil {
		return nil, err
	}
	return ses.New(sess), nil
}

// NewSESMailer sends the same MIME message the SMTP mailer would, through
// SendRawEmail.
func NewSESMailer(client sesiface.SESAPI, from string, logger ...*zap.Logger) Mailer {
	l := zap.L().Named("notification.ses")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.ses")
	}
	return &sesMailer{client: client, from: from, logger: l}
}

func (m *sesMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	var raw bytes.Buffer
	if _, err := buildMessage(m.from, msg).WriteTo(&raw); err != nil {
		m.logger.Error("render raw mail failed", zap.Error(err))
		return err
	}

	input := &ses.SendRawEmailInput{
		Source:     aws.String(m.from),
		RawMessage: &ses.RawMessage{Data: raw.Bytes()},
	}
	input.SetDestinations(aws.StringSlice(msg.To))

	out, err := m.client.SendRawEmailWithContext(ctx, input)
	if err != nil {
		m.logger.Error("ses send failed",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return err
	}
	m.logger.Info("mail sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("message_id", aws.StringValue(out.MessageId)),
	)
	return nil
}
