package doctor

import "time"

// Admin-created doctors are numbered from D006 upward; D001 through D005
// are reserved for the seeded demo doctors.
const (
	IDPrefix = "D"
	IDWidth  = 3
	IDFloor  = "D006"
)

type Doctor struct {
	DoctorID       string    `db:"doctor_id" json:"doctorId"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	Hospital       string    `db:"hospital" json:"hospital"`
	Username       string    `db:"username" json:"username"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
