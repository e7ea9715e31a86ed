// README: Role grant store backed by PostgreSQL (one row per actor/role pair).
package role

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is satisfied by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Grants(ctx context.Context, actorID string) ([]Role, error) {
	rows, err := s.db.Query(ctx, `SELECT role FROM user_roles WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": actorID})
	if err != nil {
		return nil, fmt.Errorf("role.Store.Grants: %w", err)
	}
	raw, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("role.Store.Grants: scan: %w", err)
	}
	grants := make([]Role, 0, len(raw))
	for _, s := range raw {
		if r, ok := Parse(s); ok {
			grants = append(grants, r)
		}
	}
	return grants, nil
}

// Grant adds a role to an actor. Granting an already held role is a no-op.
func (s *Store) Grant(ctx context.Context, actorID string, r Role) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role) VALUES (@user_id, @role)
		ON CONFLICT (user_id, role) DO NOTHING`,
		pgx.NamedArgs{"user_id": actorID, "role": string(r)})
	if err != nil {
		return fmt.Errorf("role.Store.Grant: %w", err)
	}
	return nil
}

func (s *Store) Revoke(ctx context.Context, actorID string, r Role) error {
	_, err := s.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = @user_id AND role = @role`,
		pgx.NamedArgs{"user_id": actorID, "role": string(r)})
	if err != nil {
		return fmt.Errorf("role.Store.Revoke: %w", err)
	}
	return nil
}
