package notifications

import (
	"context"
	"fmt"

	"github.com/9ssi7/exponent"
)

type BookingEvent string

const (
	BookingRequested BookingEvent = "requested"
	BookingConfirmed BookingEvent = "confirmed"
	BookingCancelled BookingEvent = "cancelled"
	BookingCompleted BookingEvent = "completed"
)

// SendBookingPush pushes a booking update to every device token registered
// for the user. Callers treat failures as log-and-continue; a lost push must
// never fail the booking operation itself.
func SendBookingPush(ctx context.Context, push PushSender, tokens []string, event BookingEvent, reference string) error {
	if len(tokens) == 0 {
		return nil
	}

	var title, body string
	switch event {
	case BookingRequested:
		title = "New booking request"
		body = fmt.Sprintf("Booking %s is waiting for your confirmation", reference)
	case BookingConfirmed:
		title = "Booking confirmed"
		body = fmt.Sprintf("Your booking %s has been confirmed 🎉", reference)
	case BookingCancelled:
		title = "Booking cancelled"
		body = fmt.Sprintf("Your booking %s has been cancelled", reference)
	case BookingCompleted:
		title = "Booking completed"
		body = fmt.Sprintf("Your booking %s is complete. Leave the venue a review!", reference)
	default:
		title = "Booking update"
		body = fmt.Sprintf("Your booking %s has an update", reference)
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msgs = append(msgs, &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":      "booking",
				"event":     string(event),
				"reference": reference,
			},
		})
	}

	_, err := push.Publish(ctx, msgs)
	return err
}
