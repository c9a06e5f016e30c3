package prescription

import "time"

// UploadIDPrefix marks prescription records created from patient file
// uploads rather than doctor visits.
const UploadIDPrefix = "UP-"

// UnknownDoctorID is recorded on uploaded scans, which carry no doctor.
const UnknownDoctorID = "UNKNOWN"

// Medicine is one line of a structured prescription.
type Medicine struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Instructions string `json:"instructions"`
}

// Prescription maps to the prescription table and is keyed by
// appointment: one prescription per appointment, upserted in place.
type Prescription struct {
	AppointmentID string     `db:"appointment_id" json:"appointmentId"`
	PatientID     string     `db:"patient_id" json:"patientId"`
	DoctorID      string     `db:"doctor_id" json:"doctorId"`
	DoctorName    string     `db:"doctor_name" json:"doctorName"`
	PatientName   string     `db:"patient_name" json:"patientName"`
	Remarks       string     `db:"remarks" json:"remarks"`
	FileURL       *string    `db:"file_url" json:"fileUrl,omitempty"`
	Medicines     []Medicine `db:"medicines" json:"medicines"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}
