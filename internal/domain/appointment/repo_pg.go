package appointment

import (
	"context"
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

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) Repository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apptCols = `appointment_id, patient_id, doctor_id, doctor_name, patient_name,
	date, time, duration_minutes, status, reason_for_visit, summary,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.AppointmentID, &a.PatientID, &a.DoctorID, &a.DoctorName, &a.PatientName,
		&a.Date, &a.Time, &a.DurationMinutes, &a.Status, &a.ReasonForVisit, &a.Summary,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("appointment not found")
		}
		return nil, apperr.Dependency(err, "scan appointment")
	}
	return &a, nil
}

func (r *appointmentRepoPG) collect(rows pgx.Rows, err error, what string) ([]*Appointment, error) {
	if err != nil {
		return nil, apperr.Dependency(err, "query %s", what)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (appointment_id, patient_id, doctor_id, doctor_name,
			patient_name, date, time, duration_minutes, status, reason_for_visit, summary)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		a.AppointmentID, a.PatientID, a.DoctorID, a.DoctorName,
		a.PatientName, a.Date, a.Time, a.DurationMinutes, a.Status, a.ReasonForVisit, a.Summary).
		Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("appointment %s already exists", a.AppointmentID)
		}
		return apperr.Dependency(err, "insert appointment")
	}
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, appointmentID string) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE appointment_id = $1`, appointmentID))
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE ($1 = '' OR doctor_id = $1)
		  AND ($2 = '' OR patient_id = $2)
		ORDER BY date, time`, f.DoctorID, f.PatientID)
	return r.collect(rows, err, "appointments")
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return r.List(ctx, Filter{PatientID: patientID})
}

func (r *appointmentRepoPG) ListByDoctorDate(ctx context.Context, doctorID, date, excludeID string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE doctor_id = $1 AND date = $2 AND appointment_id <> $3`,
		doctorID, date, excludeID)
	return r.collect(rows, err, "same-day appointments")
}

func (r *appointmentRepoPG) ListUpcomingBetween(ctx context.Context, startDate, endDate string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE status = $1 AND date >= $2 AND date <= $3
		ORDER BY date, time`, StatusUpcoming, startDate, endDate)
	return r.collect(rows, err, "upcoming appointments")
}

func (r *appointmentRepoPG) UpdateSchedule(ctx context.Context, appointmentID, date, time string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET date=$2, time=$3, updated_at=NOW()
		WHERE appointment_id = $1`, appointmentID, date, time)
	if err != nil {
		return apperr.Dependency(err, "update appointment schedule")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *appointmentRepoPG) SetCompleted(ctx context.Context, appointmentID, summary string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET status=$2, summary=$3, updated_at=NOW()
		WHERE appointment_id = $1`, appointmentID, StatusCompleted, summary)
	if err != nil {
		return apperr.Dependency(err, "complete appointment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}
