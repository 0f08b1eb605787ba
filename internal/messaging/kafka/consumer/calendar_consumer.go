package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"hr-calendar/internal/events"
	"hr-calendar/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumer loop uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type CalendarEventHandler interface {
	HandleCalendarEvent(ctx context.Context, ev events.CalendarEvent) error
}

// ConsumeCalendarEvents feeds calendar outbox events to handler until ctx is
// cancelled. Undecodable messages and messages without recipients are
// committed and skipped; a handler failure leaves the offset uncommitted so
// the message is redelivered after a rebalance or restart.
func ConsumeCalendarEvents(
	ctx context.Context,
	reader MessageReader,
	handler CalendarEventHandler,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.calendar_events")
	log.Info("calendar events consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("calendar events consumer stopped")
				return
			}
			log.Error("fetch calendar event message failed", zap.Error(err))
			continue
		}

		if !handleMessage(ctx, handler, msg, log) {
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit calendar event message failed", zap.Error(err))
		}
	}
}

// handleMessage reports whether msg is done with and may be committed.
func handleMessage(ctx context.Context, handler CalendarEventHandler, msg kafkago.Message, log *zap.Logger) bool {
	var ev events.CalendarEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		log.Error("decode calendar event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return true
	}

	if err := handler.HandleCalendarEvent(ctx, ev); err != nil {
		if errors.Is(err, notification.ErrNoRecipients) {
			log.Warn("calendar event has no recipients, skipping",
				zap.String("event_id", ev.EventID),
				zap.String("event_type", ev.EventType),
			)
			return true
		}
		log.Error("handle calendar event failed",
			zap.String("event_id", ev.EventID),
			zap.String("event_type", ev.EventType),
			zap.Error(err),
		)
		return false
	}

	log.Debug("calendar event handled",
		zap.String("event_id", ev.EventID),
		zap.String("event_type", ev.EventType),
		zap.String("request_id", headerValue(msg, "request_id")),
	)
	return true
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
