package patient

import (
	"context"
	"errors"
	"sync"

	"github.com/ruralcare/clinic/internal/domain/appointment"
	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/credential"
	"github.com/ruralcare/clinic/internal/platform/sequence"
)

// ErrInvalidLogin is returned for any credential failure. Handlers map it
// to 401 without distinguishing unknown id from wrong password.
var ErrInvalidLogin = errors.New("invalid patient id or password")

// AppointmentSource supplies a patient's appointments for the dashboard.
type AppointmentSource interface {
	ListByPatient(ctx context.Context, patientID string) ([]*appointment.Appointment, error)
}

// HistoryFunc returns the static medical-history fixture for a patient.
type HistoryFunc func(patientID string) []HistoryEntry

type Service struct {
	repo       Repository
	appts      AppointmentSource
	history    HistoryFunc
	bcryptCost int

	// idMu serializes read-max-then-insert so concurrent signups never
	// allocate the same patient id.
	idMu sync.Mutex
}

func NewService(repo Repository, appts AppointmentSource, history HistoryFunc, bcryptCost int) *Service {
	if history == nil {
		history = func(string) []HistoryEntry { return nil }
	}
	return &Service{repo: repo, appts: appts, history: history, bcryptCost: bcryptCost}
}

// SignupInput carries the self-registration form.
type SignupInput struct {
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

// Signup registers a new patient, allocating the next sequential id and
// storing only a bcrypt hash of the password.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Patient, error) {
	if in.Name == "" || in.Password == "" {
		return nil, apperr.Validation("name and password are required")
	}

	hash, err := credential.Hash(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Dependency(err, "hash password")
	}

	s.idMu.Lock()
	defer s.idMu.Unlock()

	maxID, err := s.repo.MaxID(ctx)
	if err != nil {
		return nil, err
	}
	p := &Patient{
		PatientID:    sequence.Next(IDPrefix, IDWidth, IDFloor, maxID),
		Name:         in.Name,
		Age:          in.Age,
		Gender:       in.Gender,
		Phone:        in.Phone,
		Email:        in.Email,
		Address:      in.Address,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Login verifies a patient id and password. Stored secrets may be bcrypt
// hashes or legacy plaintext; both verify, neither leaks which.
func (s *Service) Login(ctx context.Context, patientID, password string) (*Patient, error) {
	if patientID == "" || password == "" {
		return nil, apperr.Validation("patientId and password are required")
	}
	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !credential.Parse(p.PasswordHash).Verify(password) {
		return nil, ErrInvalidLogin
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, patientID string) (*Patient, error) {
	if patientID == "" {
		return nil, apperr.Validation("patientId is required")
	}
	return s.repo.GetByID(ctx, patientID)
}

// UpdateInput carries the profile form. Nil fields are left unchanged.
type UpdateInput struct {
	Name         *string `json:"name"`
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	ProfileImage *string `json:"profileImage"`
}

// UpdateProfile applies the provided fields to an existing patient.
// Identity and credentials are not editable here.
func (s *Service) UpdateProfile(ctx context.Context, patientID string, in UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		p.Name = *in.Name
	}
	if in.Age != nil {
		p.Age = in.Age
	}
	if in.Gender != nil {
		p.Gender = in.Gender
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if in.Email != nil {
		p.Email = in.Email
	}
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.ProfileImage != nil {
		p.ProfileImage = in.ProfileImage
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns a page of patients with the total count, for the admin
// console.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	pts, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if pts == nil {
		pts = []*Patient{}
	}
	return pts, total, nil
}

// Dashboard bundles the patient record, their appointments and the static
// history fixture into one payload.
type Dashboard struct {
	Patient      *Patient                   `json:"patient"`
	Appointments []*appointment.Appointment `json:"appointments"`
	History      []HistoryEntry             `json:"history"`
}

func (s *Service) Dashboard(ctx context.Context, patientID string) (*Dashboard, error) {
	p, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	appts, err := s.appts.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*appointment.Appointment{}
	}
	history := s.history(patientID)
	if history == nil {
		history = []HistoryEntry{}
	}
	return &Dashboard{Patient: p, Appointments: appts, History: history}, nil
}
