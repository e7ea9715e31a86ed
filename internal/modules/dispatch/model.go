// README: Dispatch errors and tuning knobs.
package dispatch

import (
	"errors"
	"time"

	"vtc/internal/modules/booking"
	"vtc/internal/types"
)

var (
	ErrBookingNotAssignable = types.GuardViolation{Guard: "booking not assignable"}
	ErrDriverInactive       = booking.ErrDriverInactive
	ErrDriverBusy           = types.GuardViolation{Guard: "driver has an overlapping booking"}

	// ErrLocked means another assignment for the same driver is in flight.
	ErrLocked = errors.New("dispatch lock held")
)

type Config struct {
	// OverlapWindow is how close to another live booking of the same driver
	// a new assignment may be scheduled.
	OverlapWindow time.Duration
	LockTTL       time.Duration
}

func DefaultConfig() Config {
	return Config{OverlapWindow: 2 * time.Hour, LockTTL: 5 * time.Second}
}
