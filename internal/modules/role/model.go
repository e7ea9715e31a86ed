// README: Role enumeration, priority order and the explicit actor context.
package role

import "vtc/internal/types"

type Role string

const (
	Admin   Role = "admin"
	Driver  Role = "driver"
	Partner Role = "partner"
	User    Role = "user"
)

// Priority lists every role from highest to lowest. It is the only place the
// ordering is defined.
var Priority = []Role{Admin, Driver, Partner, User}

// Parse maps a raw grant string to a Role. Unknown strings are not roles.
func Parse(s string) (Role, bool) {
	for _, r := range Priority {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Actor is the caller of a core operation: who they are and the effective
// role resolved for the current request.
type Actor struct {
	ID   types.ID
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == Admin }
