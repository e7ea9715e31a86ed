// README: Dispatch service: admin assigns an active driver to a confirmed booking in one conditional write.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vtc/internal/modules/booking"
	"vtc/internal/modules/driver"
	"vtc/internal/modules/role"
	"vtc/internal/types"
)

type Bookings interface {
	Load(ctx context.Context, idOrRef string) (*booking.Booking, error)
	Commit(ctx context.Context, b *booking.Booking, t booking.Transition, p booking.Patch) (*booking.Booking, error)
	Now() time.Time
}

type Drivers interface {
	Get(ctx context.Context, id types.ID) (*driver.Driver, error)
	ListActive(ctx context.Context) ([]*driver.Driver, error)
}

// Schedule answers whether a driver already holds a live booking near a time.
type Schedule interface {
	HasOverlap(ctx context.Context, driverID, excludeID types.ID, from, to time.Time) (bool, error)
}

type Locker interface {
	Lock(ctx context.Context, driverID string, ttl time.Duration) (Unlock, error)
}

type Service struct {
	bookings Bookings
	drivers  Drivers
	schedule Schedule
	locks    Locker
	cfg      Config
	log      *slog.Logger
}

func NewService(bookings Bookings, drivers Drivers, schedule Schedule, locks Locker, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		bookings: bookings,
		drivers:  drivers,
		schedule: schedule,
		locks:    locks,
		cfg:      cfg,
		log:      logger.With("module", "dispatch"),
	}
}

// Assign pairs driverID with the booking. The driver reference, assignment
// timestamp, assigning actor and the assigned status are written by a single
// conditional update; a concurrent writer that got there first turns this
// call into types.ErrStaleState. Nothing is retried.
func (s *Service) Assign(ctx context.Context, actor role.Actor, bookingRef string, driverID types.ID) (booking.Assignment, error) {
	if !actor.IsAdmin() {
		return booking.Assignment{}, types.ErrNotAuthorized
	}
	if driverID == "" {
		return booking.Assignment{}, types.ValidationError{Field: "driver_id", Msg: "is required"}
	}

	b, err := s.bookings.Load(ctx, bookingRef)
	if err != nil {
		return booking.Assignment{}, err
	}
	if !booking.CanTransition(b.Status, booking.TriggerAssign) {
		return booking.Assignment{}, types.GuardViolation{
			Guard:  ErrBookingNotAssignable.Guard,
			Detail: "booking is " + string(b.Status),
		}
	}

	d, err := s.drivers.Get(ctx, driverID)
	if err != nil {
		return booking.Assignment{}, err
	}
	if !d.Active {
		return booking.Assignment{}, ErrDriverInactive
	}

	unlock, err := s.locks.Lock(ctx, string(driverID), s.cfg.LockTTL)
	if errors.Is(err, ErrLocked) {
		return booking.Assignment{}, types.ErrStaleState
	}
	if err != nil {
		return booking.Assignment{}, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.WarnContext(ctx, "release dispatch lock failed", "driver_id", driverID, "err", err)
		}
	}()

	busy, err := s.busy(ctx, driverID, b)
	if err != nil {
		return booking.Assignment{}, err
	}
	if busy {
		return booking.Assignment{}, types.GuardViolation{
			Guard:  ErrDriverBusy.Guard,
			Detail: "within " + s.cfg.OverlapWindow.String() + " of " + b.ScheduledAt.Format(time.RFC3339),
		}
	}

	t := b.TransitionFor(booking.TriggerAssign, actor)
	t.DriverActive = d.Active
	assignedBy := actor.ID
	updated, err := s.bookings.Commit(ctx, b, t, booking.Patch{
		At:         s.bookings.Now(),
		DriverID:   &driverID,
		AssignedBy: &assignedBy,
	})
	if err != nil {
		return booking.Assignment{}, err
	}

	a, ok := updated.Assignment()
	if !ok {
		// the store returned a row without the fields it was just asked to set
		return booking.Assignment{}, errors.New("dispatch: assignment not recorded")
	}
	s.log.InfoContext(ctx, "driver assigned", "booking_id", a.BookingID, "reference", a.Reference, "driver_id", a.DriverID, "by", a.AssignedBy)
	return a, nil
}

// Eligible lists the active drivers that could take the booking right now.
func (s *Service) Eligible(ctx context.Context, actor role.Actor, bookingRef string) ([]*driver.Driver, error) {
	if !actor.IsAdmin() {
		return nil, types.ErrNotAuthorized
	}
	b, err := s.bookings.Load(ctx, bookingRef)
	if err != nil {
		return nil, err
	}
	active, err := s.drivers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*driver.Driver, 0, len(active))
	for _, d := range active {
		if !d.Active {
			continue
		}
		busy, err := s.busy(ctx, d.ID, b)
		if err != nil {
			return nil, err
		}
		if !busy {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Service) busy(ctx context.Context, driverID types.ID, b *booking.Booking) (bool, error) {
	if s.cfg.OverlapWindow <= 0 {
		return false, nil
	}
	return s.schedule.HasOverlap(ctx, driverID, b.ID,
		b.ScheduledAt.Add(-s.cfg.OverlapWindow), b.ScheduledAt.Add(s.cfg.OverlapWindow))
}
