package patient

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

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) Repository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `patient_id, name, age, gender, phone, email, address,
	password_hash, profile_image, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.PatientID, &p.Name, &p.Age, &p.Gender, &p.Phone, &p.Email, &p.Address,
		&p.PasswordHash, &p.ProfileImage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("patient not found")
		}
		return nil, apperr.Dependency(err, "scan patient")
	}
	return &p, nil
}

// uniqueViolation translates a 23505 on either patient constraint into a
// conflict the handlers can map to 409. Returns nil for other errors.
func uniqueViolation(err error, p *Patient) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if pgErr.ConstraintName == "patient_email_key" {
		email := ""
		if p.Email != nil {
			email = *p.Email
		}
		return apperr.Conflict("email %s is already in use", email)
	}
	return apperr.Conflict("patient %s already exists", p.PatientID)
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (patient_id, name, age, gender, phone, email, address,
			password_hash, profile_image)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.PatientID, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Address,
		p.PasswordHash, p.ProfileImage).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if cerr := uniqueViolation(err, p); cerr != nil {
			return cerr
		}
		return apperr.Dependency(err, "insert patient")
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, patientID string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE patient_id = $1`, patientID))
}

func (r *patientRepoPG) ListByIDs(ctx context.Context, patientIDs []string) ([]*Patient, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE patient_id = ANY($1)`, patientIDs)
	if err != nil {
		return nil, apperr.Dependency(err, "query patients by ids")
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, apperr.Dependency(err, "count patients")
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY patient_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, apperr.Dependency(err, "query patients")
	}
	defer rows.Close()

	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET name=$2, age=$3, gender=$4, phone=$5, email=$6,
			address=$7, profile_image=$8, updated_at=NOW()
		WHERE patient_id = $1`,
		p.PatientID, p.Name, p.Age, p.Gender, p.Phone, p.Email, p.Address, p.ProfileImage)
	if err != nil {
		if cerr := uniqueViolation(err, p); cerr != nil {
			return cerr
		}
		return apperr.Dependency(err, "update patient")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient not found")
	}
	return nil
}

func (r *patientRepoPG) MaxID(ctx context.Context) (string, error) {
	var max *string
	err := r.conn(ctx).QueryRow(ctx, `SELECT MAX(patient_id) FROM patient`).Scan(&max)
	if err != nil {
		return "", apperr.Dependency(err, "query max patient id")
	}
	if max == nil {
		return "", nil
	}
	return *max, nil
}
