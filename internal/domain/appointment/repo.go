package appointment

import "context"

// Filter narrows List. Zero values mean "any".
type Filter struct {
	DoctorID  string
	PatientID string
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, appointmentID string) (*Appointment, error)
	List(ctx context.Context, f Filter) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	// ListByDoctorDate returns a doctor's appointments on one calendar
	// day, excluding excludeID when non-empty. Used for conflict scans.
	ListByDoctorDate(ctx context.Context, doctorID, date, excludeID string) ([]*Appointment, error)
	// ListUpcomingBetween returns upcoming appointments with startDate <=
	// date <= endDate (dates compare lexicographically as YYYY-MM-DD).
	ListUpcomingBetween(ctx context.Context, startDate, endDate string) ([]*Appointment, error)
	UpdateSchedule(ctx context.Context, appointmentID, date, time string) error
	SetCompleted(ctx context.Context, appointmentID, summary string) error
}
