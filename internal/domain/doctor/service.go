package doctor

import (
	"context"
	"errors"
	"sync"

	"github.com/ruralcare/clinic/internal/domain/appointment"
	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/credential"
	"github.com/ruralcare/clinic/internal/platform/sequence"
)

// ErrInvalidLogin is returned for any credential failure on doctor login.
var ErrInvalidLogin = errors.New("invalid username or password")

// AppointmentSource supplies a doctor's appointments for the dashboard.
type AppointmentSource interface {
	ListByDoctor(ctx context.Context, doctorID string) ([]*appointment.Appointment, error)
}

type Service struct {
	repo       Repository
	appts      AppointmentSource
	bcryptCost int

	// idMu serializes read-max-then-insert for doctor id allocation.
	idMu sync.Mutex
}

func NewService(repo Repository, appts AppointmentSource, bcryptCost int) *Service {
	return &Service{repo: repo, appts: appts, bcryptCost: bcryptCost}
}

// CreateInput carries the admin doctor-creation form.
type CreateInput struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Hospital       string `json:"hospital"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

// Create registers a new doctor with the next id at or above the floor.
// A taken username is a conflict, checked up front and backed by the
// unique constraint for races.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Doctor, error) {
	if in.Name == "" || in.Username == "" || in.Password == "" {
		return nil, apperr.Validation("name, username and password are required")
	}

	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Conflict("username %s is already taken", in.Username)
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := credential.Hash(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Dependency(err, "hash password")
	}

	s.idMu.Lock()
	defer s.idMu.Unlock()

	maxID, err := s.repo.MaxIDAtOrAbove(ctx, IDFloor)
	if err != nil {
		return nil, err
	}
	d := &Doctor{
		DoctorID:       sequence.Next(IDPrefix, IDWidth, IDFloor, maxID),
		Name:           in.Name,
		Specialization: in.Specialization,
		Hospital:       in.Hospital,
		Username:       in.Username,
		PasswordHash:   hash,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Login verifies a doctor's username and password. Seeded accounts carry
// plaintext secrets, admin-created ones bcrypt hashes; both verify.
func (s *Service) Login(ctx context.Context, username, password string) (*Doctor, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	d, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !credential.Parse(d.PasswordHash).Verify(password) {
		return nil, ErrInvalidLogin
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, doctorID string) (*Doctor, error) {
	if doctorID == "" {
		return nil, apperr.Validation("doctorId is required")
	}
	return s.repo.GetByID(ctx, doctorID)
}

func (s *Service) List(ctx context.Context) ([]*Doctor, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*Doctor{}
	}
	return docs, nil
}

func (s *Service) Delete(ctx context.Context, doctorID string) error {
	if doctorID == "" {
		return apperr.Validation("doctorId is required")
	}
	return s.repo.Delete(ctx, doctorID)
}

// Dashboard bundles the doctor record with their appointment list.
type Dashboard struct {
	Doctor       *Doctor                    `json:"doctor"`
	Appointments []*appointment.Appointment `json:"appointments"`
}

func (s *Service) Dashboard(ctx context.Context, doctorID string) (*Dashboard, error) {
	d, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	appts, err := s.appts.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*appointment.Appointment{}
	}
	return &Dashboard{Doctor: d, Appointments: appts}, nil
}
