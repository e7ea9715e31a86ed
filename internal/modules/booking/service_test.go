package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtc/internal/modules/booking"
	"vtc/internal/modules/fare"
	"vtc/internal/modules/role"
	"vtc/internal/testutil"
	"vtc/internal/types"
)

var (
	customer = role.Actor{ID: "cust-1", Role: role.User}
	stranger = role.Actor{ID: "cust-2", Role: role.User}
	admin    = role.Actor{ID: "admin-1", Role: role.Admin}
	clock    = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []booking.Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e booking.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func newService(t *testing.T) (*booking.Service, *testutil.Bookings, *recordingNotifier) {
	t.Helper()
	repo := testutil.NewBookings()
	n := &recordingNotifier{}
	svc := booking.NewService(repo, fare.NewCalculator(fare.DefaultRates()), n, nil,
		booking.WithClock(func() time.Time { return clock }))
	return svc, repo, n
}

func cdgCommand() booking.CreateCommand {
	return booking.CreateCommand{
		Requester:   customer,
		Origin:      "Aéroport Charles de Gaulle (CDG)",
		Destination: "12 Avenue Montaigne, 75008 Paris",
		Date:        "2030-01-02",
		Time:        "10:30",
		Passengers:  2,
	}
}

func mustCreate(t *testing.T, svc *booking.Service) *booking.Booking {
	t.Helper()
	b, err := svc.Create(context.Background(), cdgCommand())
	require.NoError(t, err)
	return b
}

func TestCreateConfirmsAndPrices(t *testing.T) {
	svc, repo, n := newService(t)

	b := mustCreate(t, svc)

	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, booking.PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, types.Money{Amount: 7500, Currency: "EUR"}, b.Price)
	assert.Equal(t, fare.RuleCDGFixed, b.FareRule)
	assert.True(t, booking.IsReference(b.Reference))
	assert.NotEqual(t, string(b.ID), b.Reference)
	assert.Nil(t, b.DriverID)
	assert.Equal(t, "2030-01-02", b.ScheduledDate())
	assert.Equal(t, "10:30", b.ScheduledTime())

	assert.Equal(t, []string{booking.EventBookingConfirmed}, repo.EventNames())
	require.Len(t, n.events, 1)
	assert.Equal(t, booking.StatusNone, n.events[0].FromStatus)
	assert.Equal(t, booking.StatusConfirmed, n.events[0].ToStatus)
}

func TestCreateClampsCounts(t *testing.T) {
	svc, _, _ := newService(t)
	cmd := cdgCommand()
	cmd.Passengers = 12
	cmd.Luggage = -3

	b, err := svc.Create(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, fare.MaxPassengers, b.Passengers)
	assert.Equal(t, fare.MinLuggage, b.Luggage)
}

func TestCreateValidation(t *testing.T) {
	svc, repo, _ := newService(t)

	cases := []struct {
		name  string
		edit  func(*booking.CreateCommand)
		field string
	}{
		{"missing origin", func(c *booking.CreateCommand) { c.Origin = "  " }, "origin"},
		{"missing destination", func(c *booking.CreateCommand) { c.Destination = "" }, "destination"},
		{"bad date", func(c *booking.CreateCommand) { c.Date = "02/01/2030" }, "date"},
		{"bad time", func(c *booking.CreateCommand) { c.Time = "25:99" }, "time"},
		{"in the past", func(c *booking.CreateCommand) { c.Date = "2029-12-31" }, "date"},
		{"anonymous", func(c *booking.CreateCommand) { c.Requester = role.Actor{} }, "requester"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := cdgCommand()
			tc.edit(&cmd)
			_, err := svc.Create(context.Background(), cmd)
			var ve types.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	all, _ := repo.ListByStatus(context.Background(), "")
	assert.Empty(t, all)
}

func TestGetVisibility(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc)

	got, err := svc.Get(ctx, customer, string(b.ID))
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	got, err = svc.Get(ctx, admin, b.Reference)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = svc.Get(ctx, stranger, b.Reference)
	assert.ErrorIs(t, err, types.ErrNotAuthorized)

	_, err = svc.Get(ctx, admin, "VTC-ZZZZZZZZ")
	assert.True(t, types.IsNotFound(err))
}

func TestCancelByRequester(t *testing.T) {
	svc, repo, n := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc)

	got, err := svc.Cancel(ctx, customer, b.Reference, " plans changed ")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	require.NotNil(t, got.CancelReason)
	assert.Equal(t, "plans changed", *got.CancelReason)
	assert.Equal(t, b.StatusVersion+1, got.StatusVersion)

	assert.Equal(t, []string{booking.EventBookingConfirmed, booking.EventBookingCancelled}, repo.EventNames())
	assert.Equal(t, customer.ID, n.events[1].ActorID)
}

func TestCancelGuards(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc)

	_, err := svc.Cancel(ctx, stranger, string(b.ID), "")
	assert.ErrorIs(t, err, booking.ErrNotRequester)

	_, err = svc.Cancel(ctx, admin, string(b.ID), "")
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, admin, string(b.ID), "")
	assert.ErrorIs(t, err, booking.ErrTerminalState)
}

func TestStartRequiresAssignment(t *testing.T) {
	svc, _, _ := newService(t)
	b := mustCreate(t, svc)

	_, err := svc.Start(context.Background(), admin, string(b.ID))
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)
	_, err = svc.Complete(context.Background(), admin, string(b.ID))
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)
}

func TestCommitWithStaleReadLoses(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc)

	stale, err := svc.Load(ctx, string(b.ID))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, customer, string(b.ID), "")
	require.NoError(t, err)

	_, err = svc.Commit(ctx, stale, stale.TransitionFor(booking.TriggerCancel, admin), booking.Patch{})
	assert.ErrorIs(t, err, types.ErrStaleState)
}

func TestNotifierFailureKeepsTransition(t *testing.T) {
	svc, _, n := newService(t)
	n.err = errors.New("broker down")
	ctx := context.Background()
	b := mustCreate(t, svc)

	_, err := svc.Cancel(ctx, customer, string(b.ID), "")
	require.NoError(t, err)

	got, err := svc.Load(ctx, string(b.ID))
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, got.Status)
}

func TestConcurrentCancelSingleWinner(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc)

	const callers = 8
	errs := make(chan error, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Cancel(ctx, customer, string(b.ID), "")
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var ok int
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, types.ErrStaleState) || errors.Is(err, booking.ErrTerminalState), "unexpected %v", err)
	}
	assert.Equal(t, 1, ok)

	cancelled := 0
	for _, name := range repo.EventNames() {
		if name == booking.EventBookingCancelled {
			cancelled++
		}
	}
	assert.Equal(t, 1, cancelled)
}

func TestPaymentStatus(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc)

	_, err := svc.MarkPaid(ctx, customer, string(b.ID))
	assert.ErrorIs(t, err, types.ErrNotAuthorized)

	_, err = svc.Refund(ctx, admin, string(b.ID))
	assert.ErrorIs(t, err, booking.ErrPaymentTransition)

	paid, err := svc.MarkPaid(ctx, admin, string(b.ID))
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, booking.StatusConfirmed, paid.Status)
	assert.Equal(t, b.Price, paid.Price)
	assert.Equal(t, b.StatusVersion, paid.StatusVersion)

	_, err = svc.MarkPaid(ctx, admin, string(b.ID))
	assert.ErrorIs(t, err, booking.ErrPaymentTransition)

	refunded, err := svc.Refund(ctx, admin, b.Reference)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRefunded, refunded.PaymentStatus)

	names := repo.EventNames()
	assert.Equal(t, []string{booking.EventBookingConfirmed, booking.EventPaymentPaid, booking.EventPaymentRefunded}, names)
}

func TestMarkPaidRejectsCancelled(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	b := mustCreate(t, svc)
	_, err := svc.Cancel(ctx, admin, string(b.ID), "")
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, admin, string(b.ID))
	assert.ErrorIs(t, err, booking.ErrPaymentTransition)
}

func TestListings(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	mine := mustCreate(t, svc)
	other := cdgCommand()
	other.Requester = stranger
	_, err := svc.Create(ctx, other)
	require.NoError(t, err)

	list, err := svc.ListMine(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = svc.ListByStatus(ctx, customer, "")
	assert.ErrorIs(t, err, types.ErrNotAuthorized)

	_, err = svc.ListByStatus(ctx, admin, "driving")
	assert.True(t, types.IsValidation(err))

	board, err := svc.ListByStatus(ctx, admin, "confirmed")
	require.NoError(t, err)
	assert.Len(t, board, 2)
}
