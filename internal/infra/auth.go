// README: Identity token verification shared by the Firebase and HS256 JWT providers.
package infra

import "context"

// Token holds the verified token data used by downstream middleware.
type Token struct {
	UID    string
	Claims map[string]any
}

// TokenVerifier verifies a raw bearer token and returns its subject and claims.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Token, error)
}

// Grants extracts role grants carried by the token: a "roles" array and/or a
// single "role" string. Unknown values are passed through and ignored by the
// role resolver.
func (t *Token) Grants() []string {
	if t == nil {
		return nil
	}
	var out []string
	switch v := t.Claims["roles"].(type) {
	case []any:
		for _, r := range v {
			if s, ok := r.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	}
	if s, ok := t.Claims["role"].(string); ok && s != "" {
		out = append(out, s)
	}
	return out
}
