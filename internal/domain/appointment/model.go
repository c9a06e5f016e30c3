package appointment

import "time"

// Appointment status lifecycle. Cancelled is representable for forward
// compatibility but no current operation sets it.
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Slot lengths. Booking accepts exactly 60, anything else books the
// standard 30-minute slot.
const (
	DefaultDurationMinutes  = 30
	ExtendedDurationMinutes = 60
)

// Appointment maps to the appointment table. Date is YYYY-MM-DD and Time
// is HH:MM; both stay as strings end to end so day matching and overlap
// arithmetic work on the exact values patients submitted.
type Appointment struct {
	AppointmentID   string    `db:"appointment_id" json:"appointmentId"`
	PatientID       string    `db:"patient_id" json:"patientId"`
	DoctorID        string    `db:"doctor_id" json:"doctorId"`
	DoctorName      string    `db:"doctor_name" json:"doctorName"`
	PatientName     string    `db:"patient_name" json:"patientName"`
	Date            string    `db:"date" json:"date"`
	Time            string    `db:"time" json:"time"`
	DurationMinutes int       `db:"duration_minutes" json:"durationMinutes"`
	Status          string    `db:"status" json:"status"`
	ReasonForVisit  string    `db:"reason_for_visit" json:"reasonForVisit"`
	Summary         string    `db:"summary" json:"summary"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}
