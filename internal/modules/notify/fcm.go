// README: FCM push notifications for booking events, sent to per-actor topics.
package notify

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"vtc/internal/modules/booking"
	"vtc/internal/types"
)

// Sender is satisfied by *messaging.Client.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMNotifier struct {
	client Sender
}

func NewFCMNotifier(client Sender) *FCMNotifier {
	return &FCMNotifier{client: client}
}

func CustomerTopic(id types.ID) string { return "customer_" + string(id) }
func DriverTopic(id types.ID) string   { return "driver_" + string(id) }

// Notify pushes e to the requester and, when there is one, the driver.
func (n *FCMNotifier) Notify(ctx context.Context, e booking.Event) error {
	title, body, ok := pushText(e)
	if !ok {
		return nil
	}
	topics := []string{CustomerTopic(e.RequesterID)}
	if e.DriverID != nil {
		topics = append(topics, DriverTopic(*e.DriverID))
	}

	var errs []error
	for _, topic := range topics {
		msg := &messaging.Message{
			Topic: topic,
			Data: map[string]string{
				"type":       e.Name,
				"booking_id": string(e.BookingID),
				"reference":  e.Reference,
				"status":     string(e.ToStatus),
			},
			Notification: &messaging.Notification{Title: title, Body: body},
			Android:      &messaging.AndroidConfig{Priority: "high"},
		}
		if _, err := n.client.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("fcm send %s to %s: %w", e.Name, topic, err))
		}
	}
	return errors.Join(errs...)
}

func pushText(e booking.Event) (title, body string, ok bool) {
	switch e.Name {
	case booking.EventBookingConfirmed:
		return "Booking confirmed", fmt.Sprintf("Your booking %s is confirmed.", e.Reference), true
	case booking.EventBookingAssigned:
		return "Driver assigned", fmt.Sprintf("A driver has been assigned to %s.", e.Reference), true
	case booking.EventBookingStarted:
		return "Trip started", fmt.Sprintf("Trip %s is under way.", e.Reference), true
	case booking.EventBookingCompleted:
		return "Trip completed", fmt.Sprintf("Trip %s is complete. Thank you!", e.Reference), true
	case booking.EventBookingCancelled:
		return "Booking cancelled", fmt.Sprintf("Booking %s has been cancelled.", e.Reference), true
	default:
		return "", "", false
	}
}
