package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/timeslot"
)

// PatientDirectory resolves patient display names. Booking uses it
// best-effort; a missing patient record does not block the booking.
type PatientDirectory interface {
	GetName(ctx context.Context, patientID string) (string, error)
}

// PrescriptionWriter upserts the prescription stub created when a doctor
// completes an appointment.
type PrescriptionWriter interface {
	SaveFromCompletion(ctx context.Context, a *Appointment, summary string) error
}

// TxRunner executes fn atomically. Production wiring runs fn inside a
// database transaction; tests pass a pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// slotLocks serializes the check-then-insert window per doctor and day so
// two concurrent requests cannot both pass the conflict scan.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *slotLocks) lock(doctorID, date string) func() {
	key := doctorID + "|" + date
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

type Service struct {
	repo          Repository
	patients      PatientDirectory
	prescriptions PrescriptionWriter
	runInTx       TxRunner
	now           func() time.Time
	slots         slotLocks

	// idMu and lastIDMillis keep "A-<millis>" ids unique when two
	// bookings land inside the same millisecond.
	idMu         sync.Mutex
	lastIDMillis int64
}

func NewService(repo Repository, patients PatientDirectory, prescriptions PrescriptionWriter, runInTx TxRunner) *Service {
	if runInTx == nil {
		runInTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{
		repo:          repo,
		patients:      patients,
		prescriptions: prescriptions,
		runInTx:       runInTx,
		now:           time.Now,
	}
}

// BookInput carries a booking request. DurationMinutes other than 60
// books the standard 30-minute slot.
type BookInput struct {
	PatientID       string `json:"patientId"`
	DoctorID        string `json:"doctorId"`
	DoctorName      string `json:"doctorName"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	ReasonForVisit  string `json:"reasonForVisit"`
	DurationMinutes int    `json:"durationMinutes"`
}

func validateSchedule(date, clock string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return apperr.Validation("date must be YYYY-MM-DD")
	}
	if _, err := timeslot.ParseClock(clock); err != nil {
		return apperr.Validation("time must be HH:MM")
	}
	return nil
}

// Book creates an upcoming appointment after a same-day overlap scan
// against the doctor's existing schedule. Overlapping requests get a
// conflict error; the scan and insert run under a per-doctor-day lock.
func (s *Service) Book(ctx context.Context, in BookInput) (*Appointment, error) {
	if in.PatientID == "" || in.DoctorID == "" || in.Date == "" || in.Time == "" {
		return nil, apperr.Validation("patientId, doctorId, date and time are required")
	}
	if err := validateSchedule(in.Date, in.Time); err != nil {
		return nil, err
	}

	duration := DefaultDurationMinutes
	if in.DurationMinutes == ExtendedDurationMinutes {
		duration = ExtendedDurationMinutes
	}

	unlock := s.slots.lock(in.DoctorID, in.Date)
	defer unlock()

	sameDay, err := s.repo.ListByDoctorDate(ctx, in.DoctorID, in.Date, "")
	if err != nil {
		return nil, err
	}
	for _, a := range sameDay {
		if a.Status == StatusCancelled {
			continue
		}
		if timeslot.Overlap(a.Time, a.DurationMinutes, in.Time, duration) {
			return nil, apperr.Conflict("this slot is already booked")
		}
	}

	patientName := ""
	if name, err := s.patients.GetName(ctx, in.PatientID); err == nil {
		patientName = name
	}

	appt := &Appointment{
		AppointmentID:   s.nextID(),
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		DoctorName:      in.DoctorName,
		PatientName:     patientName,
		Date:            in.Date,
		Time:            in.Time,
		DurationMinutes: duration,
		Status:          StatusUpcoming,
		ReasonForVisit:  in.ReasonForVisit,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

// nextID allocates a millisecond-stamped appointment id, bumping the
// stamp past the last one handed out so same-millisecond bookings for
// different doctors cannot collide.
func (s *Service) nextID() string {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	ms := s.now().UnixMilli()
	if ms <= s.lastIDMillis {
		ms = s.lastIDMillis + 1
	}
	s.lastIDMillis = ms
	return fmt.Sprintf("A-%d", ms)
}

// RescheduleInput moves an existing appointment to a new date and time.
type RescheduleInput struct {
	AppointmentID string `json:"appointmentId"`
	NewDate       string `json:"newDate"`
	NewTime       string `json:"newTime"`
}

// Reschedule moves an appointment, re-running the overlap scan on the
// target day with the appointment's own duration and excluding itself.
func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (*Appointment, error) {
	if in.AppointmentID == "" || in.NewDate == "" || in.NewTime == "" {
		return nil, apperr.Validation("appointmentId, newDate and newTime are required")
	}
	if err := validateSchedule(in.NewDate, in.NewTime); err != nil {
		return nil, err
	}

	appt, err := s.repo.GetByID(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	unlock := s.slots.lock(appt.DoctorID, in.NewDate)
	defer unlock()

	sameDay, err := s.repo.ListByDoctorDate(ctx, appt.DoctorID, in.NewDate, appt.AppointmentID)
	if err != nil {
		return nil, err
	}
	for _, a := range sameDay {
		if a.Status == StatusCancelled {
			continue
		}
		if timeslot.Overlap(a.Time, a.DurationMinutes, in.NewTime, appt.DurationMinutes) {
			return nil, apperr.Conflict("slot already booked")
		}
	}

	if err := s.repo.UpdateSchedule(ctx, appt.AppointmentID, in.NewDate, in.NewTime); err != nil {
		return nil, err
	}
	appt.Date = in.NewDate
	appt.Time = in.NewTime
	return appt, nil
}

// Complete marks an appointment completed with the doctor's summary and
// upserts the matching prescription stub. Both writes happen in one
// transaction so a prescription failure rolls the completion back.
func (s *Service) Complete(ctx context.Context, appointmentID, summary string) error {
	if appointmentID == "" {
		return apperr.Validation("appointmentId is required")
	}
	appt, err := s.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	return s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SetCompleted(ctx, appt.AppointmentID, summary); err != nil {
			return err
		}
		return s.prescriptions.SaveFromCompletion(ctx, appt, summary)
	})
}

func (s *Service) Get(ctx context.Context, appointmentID string) (*Appointment, error) {
	if appointmentID == "" {
		return nil, apperr.Validation("appointmentId is required")
	}
	return s.repo.GetByID(ctx, appointmentID)
}

// List returns appointments, optionally filtered by doctor or patient.
func (s *Service) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	appts, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return appts, nil
}

// ListByPatient satisfies the patient dashboard's appointment source.
func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return s.List(ctx, Filter{PatientID: patientID})
}

// ListByDoctor satisfies the doctor dashboard's appointment source.
func (s *Service) ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return s.List(ctx, Filter{DoctorID: doctorID})
}
