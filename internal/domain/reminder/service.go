// Package reminder dispatches email reminders for upcoming appointments.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruralcare/clinic/internal/domain/appointment"
	"github.com/ruralcare/clinic/internal/domain/doctor"
	"github.com/ruralcare/clinic/internal/domain/patient"
	"github.com/ruralcare/clinic/internal/platform/mail"
)

// Dispatch windows. Mode24h covers today through tomorrow; Mode7d covers
// exactly the day one week out. Unknown modes fall back to Mode24h.
const (
	Mode24h = "24h"
	Mode7d  = "7d"
)

const dateLayout = "2006-01-02"

// Window returns the inclusive [start, end] date range a mode selects,
// relative to now in UTC.
func Window(mode string, now time.Time) (start, end string) {
	now = now.UTC()
	if mode == Mode7d {
		day := now.Add(7 * 24 * time.Hour).Format(dateLayout)
		return day, day
	}
	return now.Format(dateLayout), now.Add(24 * time.Hour).Format(dateLayout)
}

type AppointmentSource interface {
	ListUpcomingBetween(ctx context.Context, startDate, endDate string) ([]*appointment.Appointment, error)
}

type PatientDirectory interface {
	ListByIDs(ctx context.Context, patientIDs []string) ([]*patient.Patient, error)
}

type DoctorDirectory interface {
	ListByIDs(ctx context.Context, doctorIDs []string) ([]*doctor.Doctor, error)
}

type Service struct {
	appts    AppointmentSource
	patients PatientDirectory
	doctors  DoctorDirectory
	mailer   mail.Sender
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(appts AppointmentSource, patients PatientDirectory, doctors DoctorDirectory, mailer mail.Sender, log zerolog.Logger) *Service {
	return &Service{
		appts:    appts,
		patients: patients,
		doctors:  doctors,
		mailer:   mailer,
		log:      log,
		now:      time.Now,
	}
}

// Send emails every patient with an upcoming appointment in the mode's
// window and returns how many reminders went out. Appointments without a
// patient record or patient email are skipped; individual delivery
// failures are logged and do not abort the batch.
func (s *Service) Send(ctx context.Context, mode string) (int, error) {
	start, end := Window(mode, s.now())

	appts, err := s.appts.ListUpcomingBetween(ctx, start, end)
	if err != nil {
		return 0, err
	}
	if len(appts) == 0 {
		return 0, nil
	}

	patientIDs := uniqueIDs(appts, func(a *appointment.Appointment) string { return a.PatientID })
	doctorIDs := uniqueIDs(appts, func(a *appointment.Appointment) string { return a.DoctorID })

	pts, err := s.patients.ListByIDs(ctx, patientIDs)
	if err != nil {
		return 0, err
	}
	docs, err := s.doctors.ListByIDs(ctx, doctorIDs)
	if err != nil {
		return 0, err
	}

	patientByID := make(map[string]*patient.Patient, len(pts))
	for _, p := range pts {
		patientByID[p.PatientID] = p
	}
	doctorByID := make(map[string]*doctor.Doctor, len(docs))
	for _, d := range docs {
		doctorByID[d.DoctorID] = d
	}

	sent := 0
	for _, a := range appts {
		p := patientByID[a.PatientID]
		if p == nil || p.Email == nil || *p.Email == "" {
			continue
		}
		subject, body := composeReminder(a, p, doctorByID[a.DoctorID])
		if err := s.mailer.SendEmail(ctx, *p.Email, subject, body); err != nil {
			s.log.Error().Err(err).
				Str("appointment_id", a.AppointmentID).
				Str("patient_id", a.PatientID).
				Msg("reminder email failed")
			continue
		}
		sent++
	}
	return sent, nil
}

func uniqueIDs(appts []*appointment.Appointment, key func(*appointment.Appointment) string) []string {
	seen := make(map[string]bool, len(appts))
	var out []string
	for _, a := range appts {
		id := key(a)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func composeReminder(a *appointment.Appointment, p *patient.Patient, d *doctor.Doctor) (subject, body string) {
	doctorName := a.DoctorName
	if d != nil && d.Name != "" {
		doctorName = d.Name
	}
	subjectDoctor := doctorName
	if subjectDoctor == "" {
		subjectDoctor = "your doctor"
	}
	patientName := p.Name
	if patientName == "" {
		patientName = "Patient"
	}
	reason := a.ReasonForVisit
	if reason == "" {
		reason = "General checkup"
	}

	subject = fmt.Sprintf("Appointment reminder with %s", subjectDoctor)
	body = fmt.Sprintf(`<p>Dear %s,</p>
<p>This is a reminder for your upcoming appointment:</p>
<ul>
  <li><strong>Date:</strong> %s</li>
  <li><strong>Time:</strong> %s</li>
  <li><strong>Doctor:</strong> %s</li>
  <li><strong>Reason:</strong> %s</li>
</ul>
<p>If you need to reschedule, please log in to the Rural Health Care portal.</p>
<p>Regards,<br/>Rural Health Care</p>`,
		patientName, a.Date, a.Time, doctorName, reason)
	return subject, body
}
