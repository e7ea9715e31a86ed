// README: Driver store backed by PostgreSQL. Activation flips the flag and the driver role grant in one transaction.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"vtc/internal/modules/role"
	"vtc/internal/types"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

const driverColumns = `
	id, name, phone, license_number, vehicle_make, vehicle_model, vehicle_year, plate,
	active, created_at, updated_at, activated_at`

func (s *Store) Create(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (
			id, name, phone, license_number, vehicle_make, vehicle_model, vehicle_year, plate,
			active, created_at, updated_at
		) VALUES (
			@id, @name, @phone, @license_number, @vehicle_make, @vehicle_model, @vehicle_year, @plate,
			@active, @created_at, @updated_at
		)`,
		pgx.NamedArgs{
			"id":             string(d.ID),
			"name":           d.Name,
			"phone":          d.Phone,
			"license_number": d.LicenseNumber,
			"vehicle_make":   d.VehicleMake,
			"vehicle_model":  d.VehicleModel,
			"vehicle_year":   d.VehicleYear,
			"plate":          d.Plate,
			"active":         d.Active,
			"created_at":     d.CreatedAt,
			"updated_at":     d.UpdatedAt,
		},
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyApplied
	}
	if err != nil {
		return fmt.Errorf("driver.Store.Create: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Driver, error) {
	row := s.db.QueryRow(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = @id`,
		pgx.NamedArgs{"id": string(id)})
	d, err := scanDriver(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("driver.Store.Get: %w", err)
	}
	return d, nil
}

// List returns drivers ordered by name; activeOnly restricts to active ones.
func (s *Store) List(ctx context.Context, activeOnly bool) ([]*Driver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+driverColumns+` FROM drivers
		WHERE NOT @active_only::boolean OR active
		ORDER BY name, id`,
		pgx.NamedArgs{"active_only": activeOnly})
	if err != nil {
		return nil, fmt.Errorf("driver.Store.List: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Driver, error) {
		return scanDriver(row)
	})
	if err != nil {
		return nil, fmt.Errorf("driver.Store.List: scan: %w", err)
	}
	return out, nil
}

// SetActive updates the active flag and grants or revokes the driver role in
// the same transaction, so the flag and the grant never disagree.
func (s *Store) SetActive(ctx context.Context, id types.ID, active bool, at time.Time) (*Driver, error) {
	var d *Driver
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE drivers
			SET active = @active,
				updated_at = @at,
				activated_at = CASE WHEN @active::boolean THEN @at ELSE activated_at END
			WHERE id = @id
			RETURNING `+driverColumns,
			pgx.NamedArgs{"id": string(id), "active": active, "at": at})
		var err error
		d, err = scanDriver(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		grants := role.NewStore(tx)
		if active {
			return grants.Grant(ctx, string(id), role.Driver)
		}
		return grants.Revoke(ctx, string(id), role.Driver)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("driver.Store.SetActive: %w", err)
	}
	return d, nil
}

func scanDriver(row pgx.Row) (*Driver, error) {
	var d Driver
	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.LicenseNumber, &d.VehicleMake, &d.VehicleModel, &d.VehicleYear, &d.Plate,
		&d.Active, &d.CreatedAt, &d.UpdatedAt, &d.ActivatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
