// README: Fan-out of one booking event to every configured channel.
package notify

import (
	"context"
	"errors"

	"vtc/internal/modules/booking"
)

// Fanout delivers to every notifier even when an earlier one fails.
type Fanout []booking.Notifier

func (f Fanout) Notify(ctx context.Context, e booking.Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
