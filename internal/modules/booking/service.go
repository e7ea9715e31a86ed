// README: Booking service: intake, guarded transitions, visibility and payment bookkeeping.
package booking

import (
	"context"
	"crypto/rand"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vtc/internal/modules/fare"
	"vtc/internal/modules/role"
	"vtc/internal/types"
)

var (
	ErrNotFound          = types.NotFoundError{Resource: "booking"}
	ErrPaymentTransition = types.GuardViolation{Guard: "payment transition"}
)

// Repository is the persistence the service needs. *Store implements it
// against PostgreSQL.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	GetByReference(ctx context.Context, reference string) (*Booking, error)
	UpdateIfStatus(ctx context.Context, id types.ID, expected Status, version int, p Patch) (*Booking, error)
	UpdatePaymentIfStatus(ctx context.Context, id types.ID, expected, next PaymentStatus, at time.Time) (*Booking, error)
	ListByRequester(ctx context.Context, requesterID types.ID) ([]*Booking, error)
	ListByDriver(ctx context.Context, driverID types.ID) ([]*Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]*Booking, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type Pricer interface {
	Quote(req fare.Request) fare.Quote
}

// Notifier receives every recorded event. Failures are logged and never undo
// the transition that produced the event.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }

type Service struct {
	repo     Repository
	pricer   Pricer
	notifier Notifier
	log      *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

type Option func(*Service)

// WithLocation sets the zone in which requested dates and times are read.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, pricer Pricer, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		pricer:   pricer,
		notifier: notifier,
		log:      logger.With("module", "booking"),
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock, shared with collaborators that need the same
// notion of time.
func (s *Service) Now() time.Time { return s.now() }

const maxNotesLen = 500

type CreateCommand struct {
	Requester   role.Actor
	Origin      string
	Destination string
	Date        string
	Time        string
	Passengers  int
	Luggage     int
	AddOns      fare.AddOns
	Notes       string
}

// Create validates and prices a booking request and persists it as
// confirmed/unpaid.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if cmd.Requester.ID == "" {
		return nil, types.ValidationError{Field: "requester", Msg: "is required"}
	}
	origin := strings.TrimSpace(cmd.Origin)
	destination := strings.TrimSpace(cmd.Destination)
	if origin == "" {
		return nil, types.ValidationError{Field: "origin", Msg: "is required"}
	}
	if destination == "" {
		return nil, types.ValidationError{Field: "destination", Msg: "is required"}
	}
	if _, err := time.Parse(DateLayout, cmd.Date); err != nil {
		return nil, types.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD"}
	}
	if _, err := time.Parse(TimeLayout, cmd.Time); err != nil {
		return nil, types.ValidationError{Field: "time", Msg: "must be HH:MM"}
	}
	scheduledAt, err := time.ParseInLocation(DateLayout+" "+TimeLayout, cmd.Date+" "+cmd.Time, s.loc)
	if err != nil {
		return nil, types.ValidationError{Field: "date", Msg: err.Error()}
	}
	now := s.now()
	if scheduledAt.Before(now) {
		return nil, types.ValidationError{Field: "date", Msg: "must not be in the past"}
	}
	notes := strings.TrimSpace(cmd.Notes)
	if len(notes) > maxNotesLen {
		return nil, types.ValidationError{Field: "notes", Msg: "too long"}
	}

	passengers := fare.ClampPassengers(cmd.Passengers)
	quote := s.pricer.Quote(fare.Request{
		Origin:      origin,
		Destination: destination,
		Passengers:  passengers,
		AddOns:      cmd.AddOns,
	})

	b := &Booking{
		ID:            types.ID(uuid.NewString()),
		Reference:     NewReference(),
		RequesterID:   cmd.Requester.ID,
		Origin:        origin,
		Destination:   destination,
		ScheduledAt:   scheduledAt,
		Passengers:    passengers,
		Luggage:       fare.ClampLuggage(cmd.Luggage),
		AddOns:        cmd.AddOns,
		Notes:         notes,
		Price:         quote.Total,
		FareRule:      quote.Rule,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.record(ctx, s.newEvent(EventBookingConfirmed, b, StatusNone, StatusConfirmed, cmd.Requester, now))
	return b, nil
}

// Load fetches a booking by id or by its VTC- reference, without any
// visibility check.
func (s *Service) Load(ctx context.Context, idOrRef string) (*Booking, error) {
	key := strings.TrimSpace(idOrRef)
	if key == "" {
		return nil, types.ValidationError{Field: "id", Msg: "is required"}
	}
	if IsReference(key) {
		return s.repo.GetByReference(ctx, strings.ToUpper(key))
	}
	return s.repo.Get(ctx, types.ID(key))
}

// Get returns the booking if actor may see it: admins see everything, others
// see what they requested or are assigned to.
func (s *Service) Get(ctx context.Context, actor role.Actor, idOrRef string) (*Booking, error) {
	b, err := s.Load(ctx, idOrRef)
	if err != nil {
		return nil, err
	}
	if !visibleTo(b, actor) {
		return nil, types.ErrNotAuthorized
	}
	return b, nil
}

func visibleTo(b *Booking, actor role.Actor) bool {
	return actor.IsAdmin() || b.RequesterID == actor.ID || b.IsAssignedTo(actor.ID)
}

func (s *Service) ListMine(ctx context.Context, actor role.Actor) ([]*Booking, error) {
	return s.repo.ListByRequester(ctx, actor.ID)
}

func (s *Service) ListAssigned(ctx context.Context, actor role.Actor) ([]*Booking, error) {
	return s.repo.ListByDriver(ctx, actor.ID)
}

// ListByStatus is the dispatch board. An empty status lists everything.
func (s *Service) ListByStatus(ctx context.Context, actor role.Actor, status string) ([]*Booking, error) {
	if !actor.IsAdmin() {
		return nil, types.ErrNotAuthorized
	}
	var st Status
	if status != "" {
		parsed, ok := ParseStatus(status)
		if !ok {
			return nil, types.ValidationError{Field: "status", Msg: "unknown status " + status}
		}
		st = parsed
	}
	return s.repo.ListByStatus(ctx, st)
}

// Commit runs the guards for t against b and, if they pass, writes the new
// status conditionally on the status and version b was read with. On success
// the transition event is recorded and notified.
func (s *Service) Commit(ctx context.Context, b *Booking, t Transition, p Patch) (*Booking, error) {
	next, err := Apply(b.Status, t)
	if err != nil {
		return nil, err
	}
	p.Status = next
	if p.At.IsZero() {
		p.At = s.now()
	}
	if next == StatusCancelled {
		p.ClearDriver = true
		p.DriverID = nil
		p.AssignedBy = nil
	}

	updated, err := s.repo.UpdateIfStatus(ctx, b.ID, b.Status, b.StatusVersion, p)
	if err != nil {
		return nil, err
	}

	e := s.newEvent(eventName(next), updated, b.Status, next, t.Actor, p.At)
	if e.DriverID == nil {
		// a cancelled booking no longer carries its driver, who still has to hear about it
		e.DriverID = b.DriverID
	}
	s.record(ctx, e)
	return updated, nil
}

func (s *Service) Start(ctx context.Context, actor role.Actor, idOrRef string) (*Booking, error) {
	b, err := s.Load(ctx, idOrRef)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, b, b.TransitionFor(TriggerStart, actor), Patch{})
}

func (s *Service) Complete(ctx context.Context, actor role.Actor, idOrRef string) (*Booking, error) {
	b, err := s.Load(ctx, idOrRef)
	if err != nil {
		return nil, err
	}
	return s.Commit(ctx, b, b.TransitionFor(TriggerComplete, actor), Patch{})
}

func (s *Service) Cancel(ctx context.Context, actor role.Actor, idOrRef, reason string) (*Booking, error) {
	b, err := s.Load(ctx, idOrRef)
	if err != nil {
		return nil, err
	}
	var p Patch
	if r := strings.TrimSpace(reason); r != "" {
		p.CancelReason = &r
	}
	return s.Commit(ctx, b, b.TransitionFor(TriggerCancel, actor), p)
}

// MarkPaid records payment for a booking that is not cancelled.
func (s *Service) MarkPaid(ctx context.Context, actor role.Actor, idOrRef string) (*Booking, error) {
	return s.movePayment(ctx, actor, idOrRef, PaymentUnpaid, PaymentPaid, EventPaymentPaid)
}

func (s *Service) Refund(ctx context.Context, actor role.Actor, idOrRef string) (*Booking, error) {
	return s.movePayment(ctx, actor, idOrRef, PaymentPaid, PaymentRefunded, EventPaymentRefunded)
}

func (s *Service) movePayment(ctx context.Context, actor role.Actor, idOrRef string, from, to PaymentStatus, name string) (*Booking, error) {
	if !actor.IsAdmin() {
		return nil, types.ErrNotAuthorized
	}
	b, err := s.Load(ctx, idOrRef)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != from {
		return nil, withDetail(ErrPaymentTransition, "payment is "+string(b.PaymentStatus))
	}
	if to == PaymentPaid && b.Status == StatusCancelled {
		return nil, withDetail(ErrPaymentTransition, "booking is cancelled")
	}
	now := s.now()
	updated, err := s.repo.UpdatePaymentIfStatus(ctx, b.ID, from, to, now)
	if err != nil {
		return nil, err
	}
	s.record(ctx, s.newEvent(name, updated, updated.Status, updated.Status, actor, now))
	return updated, nil
}

func (s *Service) newEvent(name string, b *Booking, from, to Status, actor role.Actor, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Name:        name,
		BookingID:   b.ID,
		Reference:   b.Reference,
		FromStatus:  from,
		ToStatus:    to,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		RequesterID: b.RequesterID,
		DriverID:    b.DriverID,
		CreatedAt:   at,
	}
}

// record persists and fans out e. Both are best-effort: the state change has
// already been committed.
func (s *Service) record(ctx context.Context, e Event) {
	if err := s.repo.AppendEvent(ctx, &e); err != nil {
		s.log.WarnContext(ctx, "append booking event failed", "event", e.Name, "booking_id", e.BookingID, "err", err)
	}
	if err := s.notifier.Notify(ctx, e); err != nil {
		s.log.WarnContext(ctx, "notify booking event failed", "event", e.Name, "booking_id", e.BookingID, "err", err)
	}
}

const (
	referencePrefix   = "VTC-"
	referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	referenceLen      = 8
)

// NewReference returns a human-friendly booking reference such as VTC-7KQ2M9XA.
func NewReference() string {
	buf := make([]byte, referenceLen)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	out := make([]byte, referenceLen)
	for i, b := range buf {
		out[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return referencePrefix + string(out)
}

func IsReference(s string) bool {
	return len(s) == len(referencePrefix)+referenceLen && strings.EqualFold(s[:len(referencePrefix)], referencePrefix)
}
