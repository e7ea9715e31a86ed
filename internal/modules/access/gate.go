// README: Access gate: authorization predicate over (effective role, allowed roles).
package access

import (
	"slices"

	"vtc/internal/modules/role"
)

// Landing areas a denied actor is steered to.
const (
	LandingAdmin    = "admin"
	LandingDriver   = "driver"
	LandingPartner  = "partner"
	LandingCustomer = "customer"
)

type Decision struct {
	Permitted    bool   `json:"permitted"`
	RedirectHint string `json:"redirect,omitempty"`
}

func Permit() Decision { return Decision{Permitted: true} }

func Deny(effective role.Role) Decision {
	return Decision{RedirectHint: Landing(effective)}
}

// Landing returns the surface an actor with the given role should use.
func Landing(r role.Role) string {
	switch r {
	case role.Admin:
		return LandingAdmin
	case role.Driver:
		return LandingDriver
	case role.Partner:
		return LandingPartner
	default:
		return LandingCustomer
	}
}

// Decide permits the effective role if it is one of allowed. An empty allowed
// set denies everyone.
func Decide(effective role.Role, allowed []role.Role) Decision {
	if slices.Contains(allowed, effective) {
		return Permit()
	}
	return Deny(effective)
}

// Check looks up the policy for op and decides. Unknown operations are denied.
func Check(effective role.Role, op Operation) Decision {
	return Decide(effective, policy[op])
}
