// README: Booking store backed by PostgreSQL; every status write is conditional on status + status_version.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"vtc/internal/modules/fare"
	"vtc/internal/types"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

const bookingColumns = `
	id, reference, requester_id, origin, destination, scheduled_at,
	passengers, luggage, child_seat, wheelchair, extra_waiting, notes,
	price_amount, currency, fare_rule, status, status_version,
	driver_id, assigned_at, assigned_by, payment_status,
	created_at, updated_at, started_at, completed_at, cancelled_at, cancel_reason`

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, reference, requester_id, origin, destination, scheduled_at,
			passengers, luggage, child_seat, wheelchair, extra_waiting, notes,
			price_amount, currency, fare_rule, status, status_version,
			payment_status, created_at, updated_at
		) VALUES (
			@id, @reference, @requester_id, @origin, @destination, @scheduled_at,
			@passengers, @luggage, @child_seat, @wheelchair, @extra_waiting, @notes,
			@price_amount, @currency, @fare_rule, @status, @status_version,
			@payment_status, @created_at, @updated_at
		)`,
		pgx.NamedArgs{
			"id":             string(b.ID),
			"reference":      b.Reference,
			"requester_id":   string(b.RequesterID),
			"origin":         b.Origin,
			"destination":    b.Destination,
			"scheduled_at":   b.ScheduledAt,
			"passengers":     b.Passengers,
			"luggage":        b.Luggage,
			"child_seat":     b.AddOns.ChildSeat,
			"wheelchair":     b.AddOns.Wheelchair,
			"extra_waiting":  b.AddOns.ExtraWaiting,
			"notes":          b.Notes,
			"price_amount":   b.Price.Amount,
			"currency":       b.Price.Currency,
			"fare_rule":      string(b.FareRule),
			"status":         string(b.Status),
			"status_version": b.StatusVersion,
			"payment_status": string(b.PaymentStatus),
			"created_at":     b.CreatedAt,
			"updated_at":     b.UpdatedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("booking.Store.Create: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = @id`,
		pgx.NamedArgs{"id": string(id)})
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking.Store.Get: %w", err)
	}
	return b, nil
}

func (s *Store) GetByReference(ctx context.Context, reference string) (*Booking, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference = @reference`,
		pgx.NamedArgs{"reference": reference})
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking.Store.GetByReference: %w", err)
	}
	return b, nil
}

// UpdateIfStatus applies p only if the row still has the expected status and
// version, and returns the updated row. A lost race yields types.ErrStaleState.
func (s *Store) UpdateIfStatus(ctx context.Context, id types.ID, expected Status, version int, p Patch) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE bookings
		SET status = @status,
			status_version = status_version + 1,
			updated_at = @at,
			driver_id = CASE WHEN @clear_driver::boolean THEN NULL ELSE COALESCE(@driver_id::text, driver_id) END,
			assigned_at = CASE
				WHEN @clear_driver::boolean THEN NULL
				WHEN @driver_id::text IS NOT NULL THEN @at
				ELSE assigned_at END,
			assigned_by = CASE WHEN @clear_driver::boolean THEN NULL ELSE COALESCE(@assigned_by::text, assigned_by) END,
			started_at = CASE WHEN @status::text = 'in_progress' THEN @at ELSE started_at END,
			completed_at = CASE WHEN @status::text = 'completed' THEN @at ELSE completed_at END,
			cancelled_at = CASE WHEN @status::text = 'cancelled' THEN @at ELSE cancelled_at END,
			cancel_reason = COALESCE(@cancel_reason::text, cancel_reason)
		WHERE id = @id AND status = @expected AND status_version = @version
		RETURNING `+bookingColumns,
		pgx.NamedArgs{
			"id":            string(id),
			"expected":      string(expected),
			"version":       version,
			"status":        string(p.Status),
			"at":            p.At,
			"clear_driver":  p.ClearDriver,
			"driver_id":     idPtr(p.DriverID),
			"assigned_by":   idPtr(p.AssignedBy),
			"cancel_reason": p.CancelReason,
		},
	)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrStaleState
	}
	if err != nil {
		return nil, fmt.Errorf("booking.Store.UpdateIfStatus: %w", err)
	}
	return b, nil
}

// UpdatePaymentIfStatus moves payment_status from expected to next. The
// lifecycle status and version are untouched.
func (s *Store) UpdatePaymentIfStatus(ctx context.Context, id types.ID, expected, next PaymentStatus, at time.Time) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE bookings
		SET payment_status = @next, updated_at = @at
		WHERE id = @id AND payment_status = @expected
		RETURNING `+bookingColumns,
		pgx.NamedArgs{"id": string(id), "expected": string(expected), "next": string(next), "at": at},
	)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrStaleState
	}
	if err != nil {
		return nil, fmt.Errorf("booking.Store.UpdatePaymentIfStatus: %w", err)
	}
	return b, nil
}

func (s *Store) ListByRequester(ctx context.Context, requesterID types.ID) ([]*Booking, error) {
	return s.list(ctx, "booking.Store.ListByRequester",
		`SELECT `+bookingColumns+` FROM bookings WHERE requester_id = @id ORDER BY scheduled_at DESC`,
		pgx.NamedArgs{"id": string(requesterID)})
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]*Booking, error) {
	return s.list(ctx, "booking.Store.ListByDriver",
		`SELECT `+bookingColumns+` FROM bookings WHERE driver_id = @id ORDER BY scheduled_at ASC`,
		pgx.NamedArgs{"id": string(driverID)})
}

// ListByStatus lists bookings in status, or every booking when status is empty.
func (s *Store) ListByStatus(ctx context.Context, status Status) ([]*Booking, error) {
	return s.list(ctx, "booking.Store.ListByStatus", `
		SELECT `+bookingColumns+` FROM bookings
		WHERE @status::text = '' OR status = @status::text
		ORDER BY scheduled_at ASC`,
		pgx.NamedArgs{"status": string(status)})
}

// HasOverlap reports whether driverID holds another live assignment
// (assigned or in_progress) scheduled strictly inside (from, to).
func (s *Store) HasOverlap(ctx context.Context, driverID, excludeID types.ID, from, to time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE driver_id = @driver_id
			  AND id <> @exclude_id
			  AND status IN ('assigned', 'in_progress')
			  AND scheduled_at > @from
			  AND scheduled_at < @to
		)`,
		pgx.NamedArgs{"driver_id": string(driverID), "exclude_id": string(excludeID), "from": from, "to": to},
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("booking.Store.HasOverlap: %w", err)
	}
	return exists, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO booking_events (
			id, name, booking_id, from_status, to_status, actor_id, actor_role, created_at
		) VALUES (@id, @name, @booking_id, @from_status, @to_status, @actor_id, @actor_role, @created_at)`,
		pgx.NamedArgs{
			"id":          e.ID,
			"name":        e.Name,
			"booking_id":  string(e.BookingID),
			"from_status": string(e.FromStatus),
			"to_status":   string(e.ToStatus),
			"actor_id":    string(e.ActorID),
			"actor_role":  string(e.ActorRole),
			"created_at":  e.CreatedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("booking.Store.AppendEvent: %w", err)
	}
	return nil
}

func (s *Store) list(ctx context.Context, op, sql string, args pgx.NamedArgs) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, sql, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Booking, error) {
		return scanBooking(row)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: scan: %w", op, err)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b          Booking
		status     string
		payment    string
		rule       string
		driverID   *string
		assignedBy *string
	)
	err := row.Scan(
		&b.ID, &b.Reference, &b.RequesterID, &b.Origin, &b.Destination, &b.ScheduledAt,
		&b.Passengers, &b.Luggage, &b.AddOns.ChildSeat, &b.AddOns.Wheelchair, &b.AddOns.ExtraWaiting, &b.Notes,
		&b.Price.Amount, &b.Price.Currency, &rule, &status, &b.StatusVersion,
		&driverID, &b.AssignedAt, &assignedBy, &payment,
		&b.CreatedAt, &b.UpdatedAt, &b.StartedAt, &b.CompletedAt, &b.CancelledAt, &b.CancelReason,
	)
	if err != nil {
		return nil, err
	}
	b.Status = Status(status)
	b.PaymentStatus = PaymentStatus(payment)
	b.FareRule = fare.Rule(rule)
	b.DriverID = toIDPtr(driverID)
	b.AssignedBy = toIDPtr(assignedBy)
	return &b, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toIDPtr(v *string) *types.ID {
	if v == nil {
		return nil
	}
	id := types.ID(*v)
	return &id
}
