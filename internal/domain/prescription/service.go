package prescription

import (
	"context"
	"fmt"
	"time"

	"github.com/ruralcare/clinic/internal/domain/appointment"
	"github.com/ruralcare/clinic/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SaveInput carries the structured prescription form from the doctor's
// console. Empty fields leave existing values in place on update; a nil
// medicines slice keeps the stored list, an empty one clears it.
type SaveInput struct {
	AppointmentID string     `json:"appointmentId"`
	PatientID     string     `json:"patientId"`
	DoctorID      string     `json:"doctorId"`
	DoctorName    string     `json:"doctorName"`
	PatientName   string     `json:"patientName"`
	Remarks       string     `json:"remarks"`
	Medicines     []Medicine `json:"medicines"`
}

// Save creates or merges the prescription for an appointment.
func (s *Service) Save(ctx context.Context, in SaveInput) (*Prescription, error) {
	if in.AppointmentID == "" || in.PatientID == "" || in.DoctorID == "" {
		return nil, apperr.Validation("appointmentId, patientId and doctorId are required")
	}

	existing, err := s.repo.GetByAppointment(ctx, in.AppointmentID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			return nil, err
		}
		meds := in.Medicines
		if meds == nil {
			meds = []Medicine{}
		}
		p := &Prescription{
			AppointmentID: in.AppointmentID,
			PatientID:     in.PatientID,
			DoctorID:      in.DoctorID,
			DoctorName:    in.DoctorName,
			PatientName:   in.PatientName,
			Remarks:       in.Remarks,
			Medicines:     meds,
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	if in.DoctorName != "" {
		existing.DoctorName = in.DoctorName
	}
	if in.PatientName != "" {
		existing.PatientName = in.PatientName
	}
	if in.Remarks != "" {
		existing.Remarks = in.Remarks
	}
	if in.Medicines != nil {
		existing.Medicines = in.Medicines
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SaveFromCompletion upserts the visit-summary stub when a doctor
// completes an appointment. Summary lands in remarks; any structured
// medicines already saved stay untouched.
func (s *Service) SaveFromCompletion(ctx context.Context, a *appointment.Appointment, summary string) error {
	return s.repo.UpsertCompletion(ctx, &Prescription{
		AppointmentID: a.AppointmentID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		DoctorName:    a.DoctorName,
		PatientName:   a.PatientName,
		Remarks:       summary,
	})
}

// Upload records a patient-uploaded prescription scan. The record gets a
// synthetic UP- appointment id and no doctor attribution.
func (s *Service) Upload(ctx context.Context, patientID, fileURL string) (*Prescription, error) {
	if patientID == "" || fileURL == "" {
		return nil, apperr.Validation("patientId and file are required")
	}
	p := &Prescription{
		AppointmentID: fmt.Sprintf("%s%d", UploadIDPrefix, s.now().UnixMilli()),
		PatientID:     patientID,
		DoctorID:      UnknownDoctorID,
		Remarks:       "Uploaded prescription file",
		FileURL:       &fileURL,
		Medicines:     []Medicine{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID string) (*Prescription, error) {
	if appointmentID == "" {
		return nil, apperr.Validation("appointmentId is required")
	}
	return s.repo.GetByAppointment(ctx, appointmentID)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Prescription, error) {
	if patientID == "" {
		return nil, apperr.Validation("patientId is required")
	}
	list, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Prescription{}
	}
	return list, nil
}
