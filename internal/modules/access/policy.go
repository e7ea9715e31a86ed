// README: Operation policy table consumed by the access gate.
package access

import "vtc/internal/modules/role"

type Operation string

const (
	OpCreateBooking   Operation = "booking.create"
	OpViewBooking     Operation = "booking.view"
	OpListOwnBookings Operation = "booking.list_own"
	OpCancelBooking   Operation = "booking.cancel"
	OpStartTrip       Operation = "booking.start"
	OpCompleteTrip    Operation = "booking.complete"
	OpListAssigned    Operation = "booking.list_assigned"
	OpDispatchBoard   Operation = "booking.list_all"
	OpAssignDriver    Operation = "dispatch.assign"
	OpRecordPayment   Operation = "payment.record"
	OpApplyAsDriver   Operation = "driver.apply"
	OpListDrivers     Operation = "driver.list"
	OpActivateDriver  Operation = "driver.activate"
)

var (
	everyone  = []role.Role{role.Admin, role.Driver, role.Partner, role.User}
	drivers   = []role.Role{role.Driver, role.Admin}
	adminOnly = []role.Role{role.Admin}
)

// policy is the allowed-role set per operation. Ownership rules (requester,
// assigned driver) are enforced by the lifecycle guards, not here.
var policy = map[Operation][]role.Role{
	OpCreateBooking:   everyone,
	OpViewBooking:     everyone,
	OpListOwnBookings: everyone,
	OpCancelBooking:   everyone,
	OpApplyAsDriver:   everyone,
	OpStartTrip:       drivers,
	OpCompleteTrip:    drivers,
	OpListAssigned:    drivers,
	OpDispatchBoard:   adminOnly,
	OpAssignDriver:    adminOnly,
	OpRecordPayment:   adminOnly,
	OpListDrivers:     adminOnly,
	OpActivateDriver:  adminOnly,
}

// Allowed returns a copy of the roles permitted to invoke op.
func Allowed(op Operation) []role.Role {
	return append([]role.Role(nil), policy[op]...)
}
