// README: Driver onboarding: application, admin activation/deactivation, active roster.
package driver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vtc/internal/modules/role"
	"vtc/internal/types"
)

var (
	ErrNotFound       = types.NotFoundError{Resource: "driver"}
	ErrAlreadyApplied = types.GuardViolation{Guard: "driver application exists"}
)

type Repository interface {
	Create(ctx context.Context, d *Driver) error
	Get(ctx context.Context, id types.ID) (*Driver, error)
	List(ctx context.Context, activeOnly bool) ([]*Driver, error)
	SetActive(ctx context.Context, id types.ID, active bool, at time.Time) (*Driver, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, log: logger.With("module", "driver"), now: time.Now}
}

type ApplyCommand struct {
	Applicant     role.Actor
	Name          string
	Phone         string
	LicenseNumber string
	VehicleMake   string
	VehicleModel  string
	VehicleYear   int
	Plate         string
}

// Apply records an inactive driver profile for the applicant. An admin has
// to activate it before the applicant can be dispatched.
func (s *Service) Apply(ctx context.Context, cmd ApplyCommand) (*Driver, error) {
	if cmd.Applicant.ID == "" {
		return nil, types.ValidationError{Field: "applicant", Msg: "is required"}
	}
	required := []struct{ field, value string }{
		{"name", cmd.Name},
		{"phone", cmd.Phone},
		{"license_number", cmd.LicenseNumber},
		{"vehicle_make", cmd.VehicleMake},
		{"vehicle_model", cmd.VehicleModel},
		{"plate", cmd.Plate},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, types.ValidationError{Field: r.field, Msg: "is required"}
		}
	}
	now := s.now()
	if cmd.VehicleYear < minVehicleYear || cmd.VehicleYear > now.Year()+1 {
		return nil, types.ValidationError{Field: "vehicle_year", Msg: "out of range"}
	}
	plate := strings.ToUpper(strings.TrimSpace(cmd.Plate))
	if len(plate) > maxPlateLen {
		return nil, types.ValidationError{Field: "plate", Msg: "too long"}
	}

	d := &Driver{
		ID:            cmd.Applicant.ID,
		Name:          strings.TrimSpace(cmd.Name),
		Phone:         strings.TrimSpace(cmd.Phone),
		LicenseNumber: strings.TrimSpace(cmd.LicenseNumber),
		VehicleMake:   strings.TrimSpace(cmd.VehicleMake),
		VehicleModel:  strings.TrimSpace(cmd.VehicleModel),
		VehicleYear:   cmd.VehicleYear,
		Plate:         plate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "driver application received", "driver_id", d.ID)
	return d, nil
}

func (s *Service) Activate(ctx context.Context, actor role.Actor, id types.ID) (*Driver, error) {
	return s.setActive(ctx, actor, id, true)
}

func (s *Service) Deactivate(ctx context.Context, actor role.Actor, id types.ID) (*Driver, error) {
	return s.setActive(ctx, actor, id, false)
}

func (s *Service) setActive(ctx context.Context, actor role.Actor, id types.ID, active bool) (*Driver, error) {
	if !actor.IsAdmin() {
		return nil, types.ErrNotAuthorized
	}
	d, err := s.repo.SetActive(ctx, id, active, s.now())
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "driver activation changed", "driver_id", id, "active", active, "by", actor.ID)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Driver, error) {
	return s.repo.Get(ctx, id)
}

// List is the admin roster.
func (s *Service) List(ctx context.Context, actor role.Actor, activeOnly bool) ([]*Driver, error) {
	if !actor.IsAdmin() {
		return nil, types.ErrNotAuthorized
	}
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) ListActive(ctx context.Context) ([]*Driver, error) {
	return s.repo.List(ctx, true)
}

// IsActive reports the driver's active flag; unknown drivers yield ErrNotFound.
func (s *Service) IsActive(ctx context.Context, id types.ID) (bool, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return d.Active, nil
}
