// README: Role resolver: collapses a grant set to one effective role.
package role

import "context"

// Resolve returns the highest-priority role in grants, or User when no
// known role is granted.
func Resolve(grants []Role) Role {
	held := make(map[Role]bool, len(grants))
	for _, g := range grants {
		held[g] = true
	}
	for _, r := range Priority {
		if held[r] {
			return r
		}
	}
	return User
}

// ResolveStrings is Resolve over raw grant strings, ignoring unknown values.
func ResolveStrings(raw []string) Role {
	grants := make([]Role, 0, len(raw))
	for _, s := range raw {
		if r, ok := Parse(s); ok {
			grants = append(grants, r)
		}
	}
	return Resolve(grants)
}

type GrantStore interface {
	Grants(ctx context.Context, actorID string) ([]Role, error)
}

type Service struct {
	store GrantStore
}

func NewService(store GrantStore) *Service {
	return &Service{store: store}
}

// Effective loads the actor's stored grants, merges any grants carried by the
// identity token, and resolves them. Call it once per request; the result must
// not outlive the request since grants change (a driver gets activated, an
// admin is demoted).
func (s *Service) Effective(ctx context.Context, actorID string, tokenGrants []string) (Role, error) {
	stored, err := s.store.Grants(ctx, actorID)
	if err != nil {
		return "", err
	}
	grants := append([]Role(nil), stored...)
	for _, g := range tokenGrants {
		if r, ok := Parse(g); ok {
			grants = append(grants, r)
		}
	}
	return Resolve(grants), nil
}
