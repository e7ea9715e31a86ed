// README: Booking aggregate, status definitions and the transition event record.
package booking

import (
	"time"

	"vtc/internal/modules/fare"
	"vtc/internal/modules/role"
	"vtc/internal/types"
)

type Status string

const (
	StatusNone       Status = "none"
	StatusConfirmed  Status = "confirmed"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HasDriver reports whether a booking in status s carries a driver reference.
func (s Status) HasDriver() bool {
	return s == StatusAssigned || s == StatusInProgress || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID            types.ID
	Reference     string
	RequesterID   types.ID
	Origin        string
	Destination   string
	ScheduledAt   time.Time
	Passengers    int
	Luggage       int
	AddOns        fare.AddOns
	Notes         string
	Price         types.Money
	FareRule      fare.Rule
	Status        Status
	StatusVersion int
	DriverID      *types.ID
	AssignedAt    *time.Time
	AssignedBy    *types.ID
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  *string
}

func (b *Booking) ScheduledDate() string { return b.ScheduledAt.Format(DateLayout) }
func (b *Booking) ScheduledTime() string { return b.ScheduledAt.Format(TimeLayout) }

// IsAssignedTo reports whether id is the booking's driver.
func (b *Booking) IsAssignedTo(id types.ID) bool {
	return b.DriverID != nil && *b.DriverID == id
}

// Assignment is the pairing of a booking with its driver, as recorded on the
// booking row.
type Assignment struct {
	BookingID  types.ID  `json:"booking_id"`
	Reference  string    `json:"reference"`
	DriverID   types.ID  `json:"driver_id"`
	AssignedAt time.Time `json:"assigned_at"`
	AssignedBy types.ID  `json:"assigned_by"`
}

// Assignment returns the current assignment, if any.
func (b *Booking) Assignment() (Assignment, bool) {
	if b.DriverID == nil || b.AssignedAt == nil || b.AssignedBy == nil {
		return Assignment{}, false
	}
	return Assignment{
		BookingID:  b.ID,
		Reference:  b.Reference,
		DriverID:   *b.DriverID,
		AssignedAt: *b.AssignedAt,
		AssignedBy: *b.AssignedBy,
	}, true
}

// Patch carries the fields written together with a status change.
type Patch struct {
	Status       Status
	At           time.Time
	DriverID     *types.ID
	AssignedBy   *types.ID
	ClearDriver  bool
	CancelReason *string
}

// Event records one successful transition. It is persisted to the event log
// and handed to the notification collaborators.
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	BookingID   types.ID  `json:"booking_id"`
	Reference   string    `json:"reference"`
	FromStatus  Status    `json:"from_status"`
	ToStatus    Status    `json:"to_status"`
	ActorID     types.ID  `json:"actor_id"`
	ActorRole   role.Role `json:"actor_role"`
	RequesterID types.ID  `json:"requester_id"`
	DriverID    *types.ID `json:"driver_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingAssigned  = "booking.assigned"
	EventBookingStarted   = "booking.started"
	EventBookingCompleted = "booking.completed"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentPaid      = "payment.paid"
	EventPaymentRefunded  = "payment.refunded"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseStatus accepts the persisted status names. StatusNone is not a stored
// status and is rejected.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusConfirmed, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}
