package app

import (
	"context"
	"os/signal"
	"syscall"

	"hr-calendar/internal/employee"
	"hr-calendar/internal/messaging/kafka/consumer"
	"hr-calendar/internal/notification"
	"hr-calendar/internal/shared/config"
	"hr-calendar/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reads calendar events and sends the leave e-mails until
// SIGINT or SIGTERM.
func RunConsumer(cfg config.Config, logger *zap.Logger) error {
	db, err := connection.ConnectGORMWithRetry(postgresConfig(cfg), connectRetries)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		return err
	}
	notifier := notification.NewLeaveNotifier(employee.NewRepository(db), mailer, cfg.AppBaseURL, logger)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  []string{cfg.KafkaBroker},
		GroupID:  cfg.KafkaConsumerGroup,
		Topic:    cfg.KafkaEventsTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.ConsumeCalendarEvents(ctx, reader, notifier, logger)
	return nil
}

func newMailer(cfg config.Config, logger *zap.Logger) (notification.Mailer, error) {
	switch {
	case cfg.MailDriver == "ses":
		client, err := notification.NewSESClient(cfg.SESRegion)
		if err != nil {
			return nil, err
		}
		logger.Info("mail driver selected", zap.String("driver", "ses"), zap.String("region", cfg.SESRegion))
		return notification.NewSESMailer(client, cfg.SMTPFrom, logger), nil
	case cfg.MailDriver == "smtp" || (cfg.MailDriver == "" && cfg.SMTPEnabled()):
		logger.Info("mail driver selected", zap.String("driver", "smtp"), zap.String("host", cfg.SMTPHost))
		return notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger), nil
	default:
		logger.Warn("no mail driver configured, leave e-mails are only logged")
		return notification.NewNoop(logger), nil
	}
}
