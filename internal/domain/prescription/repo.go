package prescription

import "context"

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByAppointment(ctx context.Context, appointmentID string) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	// UpsertCompletion writes the visit-summary stub, creating the row if
	// absent and otherwise overwriting remarks and names while leaving
	// medicines and file url untouched.
	UpsertCompletion(ctx context.Context, p *Prescription) error
}
