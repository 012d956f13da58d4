package service

import (
	"shareit/internal/events"
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// SubscribeBookingObservers logs every booking transition and counts it by status.
func SubscribeBookingObservers(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range events.BookingEvents {
		bus.Subscribe(eventType, func(event *events.Event) error {
			var payload events.BookingEventPayload
			if err := event.Decode(&payload); err != nil {
				return err
			}

			metrics.IncBookingTransition(payload.Status)
			logger.Info().
				Str("event", event.Type).
				Int64("booking_id", payload.BookingID).
				Int64("item_id", payload.ItemID).
				Int64("actor_id", payload.ActorID).
				Str("status", payload.Status).
				Msg("booking event")
			return nil
		})
	}
}
