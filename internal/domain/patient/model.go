package patient

import "time"

// IDPrefix and IDFloor define the patient identifier scheme (P001, P002, ...).
const (
	IDPrefix = "P"
	IDWidth  = 3
	IDFloor  = "P001"
)

// Patient maps to the patient table. PasswordHash holds either a bcrypt
// hash (signup accounts) or a legacy plaintext secret (seed accounts);
// the credential package tells them apart.
type Patient struct {
	PatientID    string    `db:"patient_id" json:"patientId"`
	Name         string    `db:"name" json:"name"`
	Age          *int      `db:"age" json:"age,omitempty"`
	Gender       *string   `db:"gender" json:"gender,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ProfileImage *string   `db:"profile_image" json:"profileImage,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// HistoryEntry is one row of the static pre-seeded patient-history
// fixture shown on the dashboard alongside live appointments.
type HistoryEntry struct {
	Medicine     string `json:"medicine"`
	Date         string `json:"date"`
	RemarksLabel string `json:"remarksLabel"`
	Remarks      string `json:"remarks"`
}
