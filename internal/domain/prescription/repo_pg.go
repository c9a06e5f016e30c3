package prescription

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruralcare/clinic/internal/platform/apperr"
	"github.com/ruralcare/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) Repository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const presCols = `appointment_id, patient_id, doctor_id, doctor_name, patient_name,
	remarks, file_url, medicines, created_at, updated_at`

func medicinesJSON(meds []Medicine) ([]byte, error) {
	if meds == nil {
		meds = []Medicine{}
	}
	return json.Marshal(meds)
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	var meds []byte
	err := row.Scan(&p.AppointmentID, &p.PatientID, &p.DoctorID, &p.DoctorName, &p.PatientName,
		&p.Remarks, &p.FileURL, &meds, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("prescription not found")
		}
		return nil, apperr.Dependency(err, "scan prescription")
	}
	if len(meds) > 0 {
		if err := json.Unmarshal(meds, &p.Medicines); err != nil {
			return nil, apperr.Dependency(err, "decode medicines")
		}
	}
	if p.Medicines == nil {
		p.Medicines = []Medicine{}
	}
	return &p, nil
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	meds, err := medicinesJSON(p.Medicines)
	if err != nil {
		return apperr.Dependency(err, "encode medicines")
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (appointment_id, patient_id, doctor_id, doctor_name,
			patient_name, remarks, file_url, medicines)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		p.AppointmentID, p.PatientID, p.DoctorID, p.DoctorName,
		p.PatientName, p.Remarks, p.FileURL, meds).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("prescription for appointment %s already exists", p.AppointmentID)
		}
		return apperr.Dependency(err, "insert prescription")
	}
	return nil
}

func (r *prescriptionRepoPG) GetByAppointment(ctx context.Context, appointmentID string) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+presCols+` FROM prescription WHERE appointment_id = $1`, appointmentID))
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID string) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+presCols+` FROM prescription WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, apperr.Dependency(err, "query prescriptions")
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	meds, err := medicinesJSON(p.Medicines)
	if err != nil {
		return apperr.Dependency(err, "encode medicines")
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription SET doctor_name=$2, patient_name=$3, remarks=$4,
			medicines=$5, updated_at=NOW()
		WHERE appointment_id = $1`,
		p.AppointmentID, p.DoctorName, p.PatientName, p.Remarks, meds)
	if err != nil {
		return apperr.Dependency(err, "update prescription")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("prescription not found")
	}
	return nil
}

func (r *prescriptionRepoPG) UpsertCompletion(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (appointment_id, patient_id, doctor_id, doctor_name,
			patient_name, remarks, medicines)
		VALUES ($1,$2,$3,$4,$5,$6,'[]')
		ON CONFLICT (appointment_id) DO UPDATE SET
			patient_id = EXCLUDED.patient_id,
			doctor_id = EXCLUDED.doctor_id,
			doctor_name = EXCLUDED.doctor_name,
			patient_name = EXCLUDED.patient_name,
			remarks = EXCLUDED.remarks,
			updated_at = NOW()`,
		p.AppointmentID, p.PatientID, p.DoctorID, p.DoctorName, p.PatientName, p.Remarks)
	if err != nil {
		return apperr.Dependency(err, "upsert prescription")
	}
	return nil
}
