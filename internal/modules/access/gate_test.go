package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vtc/internal/modules/role"
)

func TestDecide(t *testing.T) {
	cases := []struct {
		name      string
		effective role.Role
		allowed   []role.Role
		want      Decision
	}{
		{"admin allowed", role.Admin, []role.Role{role.Admin}, Decision{Permitted: true}},
		{"driver denied admin op", role.Driver, []role.Role{role.Admin}, Decision{RedirectHint: "driver"}},
		{"user redirected to customer", role.User, []role.Role{role.Admin, role.Driver}, Decision{RedirectHint: "customer"}},
		{"partner redirected to partner", role.Partner, []role.Role{role.Driver}, Decision{RedirectHint: "partner"}},
		{"admin denied driver-only op", role.Admin, []role.Role{role.Driver}, Decision{RedirectHint: "admin"}},
		{"empty allowed set denies", role.Admin, nil, Decision{RedirectHint: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.effective, tc.allowed))
		})
	}
}

func TestCheck_Policy(t *testing.T) {
	assert.True(t, Check(role.Admin, OpAssignDriver).Permitted)
	assert.False(t, Check(role.Driver, OpAssignDriver).Permitted)
	assert.False(t, Check(role.User, OpStartTrip).Permitted)
	assert.True(t, Check(role.Driver, OpStartTrip).Permitted)
	assert.True(t, Check(role.Admin, OpCompleteTrip).Permitted)
	assert.True(t, Check(role.User, OpCreateBooking).Permitted)
	assert.True(t, Check(role.User, OpCancelBooking).Permitted)
	assert.False(t, Check(role.Partner, OpActivateDriver).Permitted)
	assert.False(t, Check(role.Admin, Operation("unknown")).Permitted)
}

func TestAllowed_ReturnsCopy(t *testing.T) {
	got := Allowed(OpAssignDriver)
	got[0] = role.User
	assert.True(t, Check(role.Admin, OpAssignDriver).Permitted)
}

func TestLanding(t *testing.T) {
	assert.Equal(t, "admin", Landing(role.Admin))
	assert.Equal(t, "driver", Landing(role.Driver))
	assert.Equal(t, "partner", Landing(role.Partner))
	assert.Equal(t, "customer", Landing(role.User))
	assert.Equal(t, "customer", Landing(""))
}
