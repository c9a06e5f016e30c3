// Package seed loads the demo fixtures: five doctors, four patients and
// a handful of appointments with prescriptions. Seeding is idempotent;
// fixture rows are deleted and reinserted by id, other rows are left
// alone.
package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruralcare/clinic/internal/domain/patient"
)

type doctorFixture struct {
	id, name, specialization, hospital, username, password string
}

type patientFixture struct {
	id, name      string
	age           int
	gender, phone string
	email, addr   string
}

type appointmentFixture struct {
	id, patientID, patientName string
	date, time                 string
	duration                   int
	status, reason, summary    string
}

type medicineFixture struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Instructions string `json:"instructions"`
}

type prescriptionFixture struct {
	appointmentID, patientID, patientName string
	remarks                               string
	medicines                             []medicineFixture
}

// Demo doctors keep plaintext secrets on purpose: they exercise the
// legacy verification path that new signups never hit.
var doctors = []doctorFixture{
	{"D001", "Dr. Alan Brown", "General Physician", "Rural Community Clinic, Block A", "alan", "password1"},
	{"D002", "Dr. Maria Garcia", "Cardiologist", "District Hospital, Cardiology Wing", "maria", "password2"},
	{"D003", "Dr. Emily White", "Dermatologist", "Rural Health Center, Skin Clinic", "emily", "password3"},
	{"D004", "Dr. Ravi Mehta", "Pediatrician", "Children's Rural Clinic", "ravi", "password4"},
	{"D005", "Dr. Fatima Noor", "ENT Specialist", "District ENT Hospital", "fatima", "password5"},
}

var patients = []patientFixture{
	{"P001", "John Doe", 42, "Male", "+1 555 111-2222", "john.doe@example.com", "Demo Street 1"},
	{"P002", "Jane Smith", 35, "Female", "+1 555 222-3333", "jane.smith@example.com", "Demo Street 2"},
	{"P003", "Ravi Kumar", 29, "Male", "+91 90000 11111", "ravi.kumar@example.com", "Demo Nagar"},
	{"P004", "Fatima Noor", 31, "Female", "+91 90000 22222", "fatima.noor@example.com", "Demo Colony"},
}

// All demo appointments belong to Dr. Alan Brown.
const demoDoctorID = "D001"
const demoDoctorName = "Dr. Alan Brown"

var appointments = []appointmentFixture{
	{"A001", "P001", "John Doe", "2025-10-27", "10:00", 30, "completed", "Fever and cold", "Recovered well."},
	{"A002", "P002", "Jane Smith", "2025-10-28", "11:00", 30, "upcoming", "Headache", ""},
	{"A003", "P003", "Ravi Kumar", "2025-10-29", "12:00", 30, "upcoming", "Skin rash", ""},
	{"A004", "P004", "Fatima Noor", "2025-10-30", "09:30", 30, "completed", "Follow-up", "Stable."},
}

var prescriptions = []prescriptionFixture{
	{
		"A001", "P001", "John Doe",
		"The patient presented with symptoms of a mild upper respiratory tract infection. Recommended rest and symptomatic treatment.",
		[]medicineFixture{
			{"Paracetamol", "500 mg", "1 tablet, twice daily after food"},
			{"Cetirizine", "10 mg", "1 tablet at night before sleep"},
			{"Vitamin C", "500 mg", "1 tablet, once a day"},
			{"Azithromycin", "250 mg", "2 tablets on day 1, then 1 tablet daily for 4 days"},
		},
	},
	{
		"A002", "P002", "Jane Smith",
		"Headache and fatigue. Hydration and rest advised.",
		[]medicineFixture{{"Ibuprofen", "400 mg", "1 tablet as needed after food"}},
	},
	{
		"A003", "P003", "Ravi Kumar",
		"Skin rash. Apply ointment twice daily.",
		[]medicineFixture{{"Hydrocortisone cream", "thin layer", "Apply to affected area twice daily"}},
	},
	{
		"A004", "P004", "Fatima Noor",
		"Follow-up visit. Condition stable.",
		nil,
	},
}

// Run loads every fixture set inside one transaction.
func Run(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, d := range doctors {
		if _, err := tx.Exec(ctx, `DELETE FROM doctor WHERE doctor_id = $1`, d.id); err != nil {
			return fmt.Errorf("seed doctor %s: %w", d.id, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctor (doctor_id, name, specialization, hospital, username, password_hash)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			d.id, d.name, d.specialization, d.hospital, d.username, d.password); err != nil {
			return fmt.Errorf("seed doctor %s: %w", d.id, err)
		}
	}

	for _, p := range patients {
		if _, err := tx.Exec(ctx, `DELETE FROM patient WHERE patient_id = $1`, p.id); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.id, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO patient (patient_id, name, age, gender, phone, email, address, password_hash)
			VALUES ($1,$2,$3,$4,$5,$6,$7,'')`,
			p.id, p.name, p.age, p.gender, p.phone, p.email, p.addr); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.id, err)
		}
	}

	for _, a := range appointments {
		if _, err := tx.Exec(ctx, `DELETE FROM appointment WHERE appointment_id = $1`, a.id); err != nil {
			return fmt.Errorf("seed appointment %s: %w", a.id, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO appointment (appointment_id, patient_id, doctor_id, doctor_name,
				patient_name, date, time, duration_minutes, status, reason_for_visit, summary)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			a.id, a.patientID, demoDoctorID, demoDoctorName,
			a.patientName, a.date, a.time, a.duration, a.status, a.reason, a.summary); err != nil {
			return fmt.Errorf("seed appointment %s: %w", a.id, err)
		}
	}

	for _, p := range prescriptions {
		meds := p.medicines
		if meds == nil {
			meds = []medicineFixture{}
		}
		medsJSON, err := json.Marshal(meds)
		if err != nil {
			return fmt.Errorf("seed prescription %s: %w", p.appointmentID, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM prescription WHERE appointment_id = $1`, p.appointmentID); err != nil {
			return fmt.Errorf("seed prescription %s: %w", p.appointmentID, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO prescription (appointment_id, patient_id, doctor_id, doctor_name,
				patient_name, remarks, medicines)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			p.appointmentID, p.patientID, demoDoctorID, demoDoctorName,
			p.patientName, p.remarks, medsJSON); err != nil {
			return fmt.Errorf("seed prescription %s: %w", p.appointmentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

// history is the static dashboard fixture; only the earliest demo
// patients have entries.
var history = map[string][]patient.HistoryEntry{
	"P001": {
		{
			Medicine:     "Paracetamol",
			Date:         "May 10, 2023",
			RemarksLabel: "Dr. White's Remarks",
			Remarks:      "Take one tablet after meals for 2 days.",
		},
	},
	"P002": {
		{
			Medicine:     "Ibuprofen",
			Date:         "April 02, 2023",
			RemarksLabel: "Dr. Brown's Remarks",
			Remarks:      "For muscle pain, take as needed, not more than 3 tablets a day.",
		},
	},
}

// History returns the static medical-history fixture for a patient.
func History(patientID string) []patient.HistoryEntry {
	return history[patientID]
}
