package testutil

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"vtc/internal/modules/booking"
	"vtc/internal/modules/dispatch"
	"vtc/internal/modules/driver"
	"vtc/internal/modules/role"
	"vtc/internal/types"
)

// Bookings is an in-memory booking.Repository with the same conditional
// update semantics as the Postgres store.
type Bookings struct {
	mu     sync.Mutex
	rows   map[types.ID]booking.Booking
	Events []booking.Event
}

func NewBookings() *Bookings {
	return &Bookings{rows: make(map[types.ID]booking.Booking)}
}

func (m *Bookings) Create(_ context.Context, b *booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = *b
	return nil
}

func (m *Bookings) Get(_ context.Context, id types.ID) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &b, nil
}

func (m *Bookings) GetByReference(_ context.Context, reference string) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.Reference == reference {
			return &b, nil
		}
	}
	return nil, booking.ErrNotFound
}

func (m *Bookings) UpdateIfStatus(_ context.Context, id types.ID, expected booking.Status, version int, p booking.Patch) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Status != expected || b.StatusVersion != version {
		return nil, types.ErrStaleState
	}
	at := p.At
	b.Status = p.Status
	b.StatusVersion++
	b.UpdatedAt = at
	switch {
	case p.ClearDriver:
		b.DriverID, b.AssignedAt, b.AssignedBy = nil, nil, nil
	case p.DriverID != nil:
		d := *p.DriverID
		b.DriverID = &d
		b.AssignedAt = &at
		if p.AssignedBy != nil {
			by := *p.AssignedBy
			b.AssignedBy = &by
		}
	}
	switch p.Status {
	case booking.StatusInProgress:
		b.StartedAt = &at
	case booking.StatusCompleted:
		b.CompletedAt = &at
	case booking.StatusCancelled:
		b.CancelledAt = &at
	}
	if p.CancelReason != nil {
		r := *p.CancelReason
		b.CancelReason = &r
	}
	m.rows[id] = b
	return &b, nil
}

func (m *Bookings) UpdatePaymentIfStatus(_ context.Context, id types.ID, expected, next booking.PaymentStatus, at time.Time) (*booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.PaymentStatus != expected {
		return nil, types.ErrStaleState
	}
	b.PaymentStatus = next
	b.UpdatedAt = at
	m.rows[id] = b
	return &b, nil
}

func (m *Bookings) ListByRequester(_ context.Context, requesterID types.ID) ([]*booking.Booking, error) {
	return m.filter(func(b *booking.Booking) bool { return b.RequesterID == requesterID }), nil
}

func (m *Bookings) ListByDriver(_ context.Context, driverID types.ID) ([]*booking.Booking, error) {
	return m.filter(func(b *booking.Booking) bool { return b.IsAssignedTo(driverID) }), nil
}

func (m *Bookings) ListByStatus(_ context.Context, status booking.Status) ([]*booking.Booking, error) {
	return m.filter(func(b *booking.Booking) bool { return status == "" || b.Status == status }), nil
}

func (m *Bookings) HasOverlap(_ context.Context, driverID, excludeID types.ID, from, to time.Time) (bool, error) {
	live := m.filter(func(b *booking.Booking) bool {
		return b.ID != excludeID && b.IsAssignedTo(driverID) &&
			(b.Status == booking.StatusAssigned || b.Status == booking.StatusInProgress) &&
			b.ScheduledAt.After(from) && b.ScheduledAt.Before(to)
	})
	return len(live) > 0, nil
}

func (m *Bookings) AppendEvent(_ context.Context, e *booking.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, *e)
	return nil
}

// EventNames returns the recorded event names in order.
func (m *Bookings) EventNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.Events))
	for i, e := range m.Events {
		names[i] = e.Name
	}
	return names
}

func (m *Bookings) filter(keep func(*booking.Booking) bool) []*booking.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*booking.Booking
	for _, b := range m.rows {
		if keep(&b) {
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

// Grants is an in-memory role grant store.
type Grants struct {
	mu   sync.Mutex
	held map[string][]role.Role
}

func NewGrants() *Grants {
	return &Grants{held: make(map[string][]role.Role)}
}

func (g *Grants) Grants(_ context.Context, actorID string) ([]role.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.held[actorID]), nil
}

func (g *Grants) Grant(_ context.Context, actorID string, r role.Role) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !slices.Contains(g.held[actorID], r) {
		g.held[actorID] = append(g.held[actorID], r)
	}
	return nil
}

func (g *Grants) Revoke(_ context.Context, actorID string, r role.Role) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held[actorID] = slices.DeleteFunc(g.held[actorID], func(h role.Role) bool { return h == r })
	return nil
}

// Drivers is an in-memory driver.Repository. Activation updates the linked
// Grants the way the Postgres store does inside its transaction.
type Drivers struct {
	mu     sync.Mutex
	rows   map[types.ID]driver.Driver
	grants *Grants
}

func NewDrivers(grants *Grants) *Drivers {
	if grants == nil {
		grants = NewGrants()
	}
	return &Drivers{rows: make(map[types.ID]driver.Driver), grants: grants}
}

func (m *Drivers) Create(_ context.Context, d *driver.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[d.ID]; ok {
		return driver.ErrAlreadyApplied
	}
	m.rows[d.ID] = *d
	return nil
}

func (m *Drivers) Get(_ context.Context, id types.ID) (*driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, driver.ErrNotFound
	}
	return &d, nil
}

func (m *Drivers) List(_ context.Context, activeOnly bool) ([]*driver.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*driver.Driver
	for _, d := range m.rows {
		if activeOnly && !d.Active {
			continue
		}
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Drivers) SetActive(ctx context.Context, id types.ID, active bool, at time.Time) (*driver.Driver, error) {
	m.mu.Lock()
	d, ok := m.rows[id]
	if !ok {
		m.mu.Unlock()
		return nil, driver.ErrNotFound
	}
	d.Active = active
	d.UpdatedAt = at
	if active {
		d.ActivatedAt = &at
	}
	m.rows[id] = d
	m.mu.Unlock()

	var err error
	if active {
		err = m.grants.Grant(ctx, string(id), role.Driver)
	} else {
		err = m.grants.Revoke(ctx, string(id), role.Driver)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Put stores d directly, bypassing the application flow.
func (m *Drivers) Put(d driver.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[d.ID] = d
}

// Locker is an in-process dispatch.Locker.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]bool)}
}

func (l *Locker) Lock(_ context.Context, driverID string, _ time.Duration) (dispatch.Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[driverID] {
		return nil, dispatch.ErrLocked
	}
	l.held[driverID] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, driverID)
		return nil
	}, nil
}
