package reminder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruralcare/clinic/internal/domain/appointment"
	"github.com/ruralcare/clinic/internal/domain/doctor"
	"github.com/ruralcare/clinic/internal/domain/patient"
	"github.com/ruralcare/clinic/internal/platform/mail"
)

type mockAppointments struct {
	appts []*appointment.Appointment
}

func (m *mockAppointments) ListUpcomingBetween(_ context.Context, start, end string) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	for _, a := range m.appts {
		if a.Status == appointment.StatusUpcoming && a.Date >= start && a.Date <= end {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockPatients struct {
	patients map[string]*patient.Patient
	queried  [][]string
}

func (m *mockPatients) ListByIDs(_ context.Context, ids []string) ([]*patient.Patient, error) {
	m.queried = append(m.queried, ids)
	var out []*patient.Patient
	for _, id := range ids {
		if p, ok := m.patients[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockDoctors struct {
	doctors map[string]*doctor.Doctor
}

func (m *mockDoctors) ListByIDs(_ context.Context, ids []string) ([]*doctor.Doctor, error) {
	var out []*doctor.Doctor
	for _, id := range ids {
		if d, ok := m.doctors[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func email(s string) *string { return &s }

func fixedNow() time.Time {
	return time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
}

func TestWindow(t *testing.T) {
	now := fixedNow()

	start, end := Window(Mode24h, now)
	if start != "2026-09-10" || end != "2026-09-11" {
		t.Errorf("24h window = [%s, %s]", start, end)
	}

	start, end = Window(Mode7d, now)
	if start != "2026-09-17" || end != "2026-09-17" {
		t.Errorf("7d window = [%s, %s]", start, end)
	}

	// unknown modes behave like the default
	start, end = Window("weekly", now)
	if start != "2026-09-10" || end != "2026-09-11" {
		t.Errorf("unknown mode window = [%s, %s]", start, end)
	}
}

func newTestService(appts *mockAppointments, patients *mockPatients, doctors *mockDoctors, sender mail.Sender) *Service {
	svc := NewService(appts, patients, doctors, sender, zerolog.Nop())
	svc.now = fixedNow
	return svc
}

func upcoming(id, patientID, doctorID, date string) *appointment.Appointment {
	return &appointment.Appointment{
		AppointmentID: id,
		PatientID:     patientID,
		DoctorID:      doctorID,
		Date:          date,
		Time:          "10:00",
		Status:        appointment.StatusUpcoming,
	}
}

func TestSendBatches(t *testing.T) {
	appts := &mockAppointments{appts: []*appointment.Appointment{
		upcoming("A001", "P001", "D001", "2026-09-10"),
		upcoming("A002", "P002", "D001", "2026-09-11"),
		upcoming("A003", "P001", "D002", "2026-09-11"),
		upcoming("A004", "P003", "D001", "2026-09-20"), // outside window
	}}
	patients := &mockPatients{patients: map[string]*patient.Patient{
		"P001": {PatientID: "P001", Name: "John Doe", Email: email("john@example.com")},
		"P002": {PatientID: "P002", Name: "Jane Smith", Email: email("jane@example.com")},
	}}
	doctors := &mockDoctors{doctors: map[string]*doctor.Doctor{
		"D001": {DoctorID: "D001", Name: "Dr. Alan Brown"},
	}}
	sender := &mail.MockSender{}

	svc := newTestService(appts, patients, doctors, sender)
	sent, err := svc.Send(context.Background(), Mode24h)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 3 {
		t.Errorf("sent = %d, want 3", sent)
	}
	if calls := sender.Calls(); len(calls) != 3 {
		t.Errorf("expected 3 deliveries, got %d", len(calls))
	}

	// patient lookups are batched into a single query
	if len(patients.queried) != 1 {
		t.Fatalf("expected one batched patient lookup, got %d", len(patients.queried))
	}
	if len(patients.queried[0]) != 2 {
		t.Errorf("expected 2 unique patient ids, got %v", patients.queried[0])
	}
}

func TestSendSkipsMissingPatientAndEmail(t *testing.T) {
	appts := &mockAppointments{appts: []*appointment.Appointment{
		upcoming("A001", "P001", "D001", "2026-09-10"),
		upcoming("A002", "P404", "D001", "2026-09-10"), // no patient record
		upcoming("A003", "P002", "D001", "2026-09-10"), // no email
	}}
	patients := &mockPatients{patients: map[string]*patient.Patient{
		"P001": {PatientID: "P001", Name: "John Doe", Email: email("john@example.com")},
		"P002": {PatientID: "P002", Name: "Jane Smith"},
	}}
	sender := &mail.MockSender{}

	svc := newTestService(appts, patients, &mockDoctors{}, sender)
	sent, err := svc.Send(context.Background(), Mode24h)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if calls := sender.Calls(); len(calls) != 1 || calls[0].To != "john@example.com" {
		t.Errorf("unexpected deliveries: %+v", calls)
	}
}

func TestSendToleratesPerMessageFailures(t *testing.T) {
	appts := &mockAppointments{appts: []*appointment.Appointment{
		upcoming("A001", "P001", "D001", "2026-09-10"),
		upcoming("A002", "P002", "D001", "2026-09-10"),
	}}
	patients := &mockPatients{patients: map[string]*patient.Patient{
		"P001": {PatientID: "P001", Email: email("john@example.com")},
		"P002": {PatientID: "P002", Email: email("jane@example.com")},
	}}
	sender := &mail.MockSender{FailFor: map[string]bool{"john@example.com": true}}

	svc := newTestService(appts, patients, &mockDoctors{}, sender)
	sent, err := svc.Send(context.Background(), Mode24h)
	if err != nil {
		t.Fatalf("a single delivery failure must not abort the batch: %v", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
}

func TestSendEmptyWindow(t *testing.T) {
	svc := newTestService(&mockAppointments{}, &mockPatients{}, &mockDoctors{}, &mail.MockSender{})
	sent, err := svc.Send(context.Background(), Mode7d)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent != 0 {
		t.Errorf("sent = %d, want 0", sent)
	}
}

func TestReminderContent(t *testing.T) {
	appts := &mockAppointments{appts: []*appointment.Appointment{
		{
			AppointmentID:  "A001",
			PatientID:      "P001",
			DoctorID:       "D001",
			DoctorName:     "Dr. Alan Brown",
			Date:           "2026-09-10",
			Time:           "10:00",
			Status:         appointment.StatusUpcoming,
			ReasonForVisit: "Fever and cold",
		},
	}}
	patients := &mockPatients{patients: map[string]*patient.Patient{
		"P001": {PatientID: "P001", Name: "John Doe", Email: email("john@example.com")},
	}}
	doctors := &mockDoctors{doctors: map[string]*doctor.Doctor{
		"D001": {DoctorID: "D001", Name: "Dr. Alan Brown"},
	}}
	sender := &mail.MockSender{}

	svc := newTestService(appts, patients, doctors, sender)
	if _, err := svc.Send(context.Background(), Mode24h); err != nil {
		t.Fatal(err)
	}

	calls := sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(calls))
	}
	if calls[0].Subject != "Appointment reminder with Dr. Alan Brown" {
		t.Errorf("unexpected subject %q", calls[0].Subject)
	}
	for _, want := range []string{"John Doe", "2026-09-10", "10:00", "Fever and cold"} {
		if !strings.Contains(calls[0].Body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}
