package doctor

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

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) Repository {
	return &doctorRepoPG{pool: pool}
}

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const doctorCols = `doctor_id, name, specialization, hospital, username, password_hash,
	created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.DoctorID, &d.Name, &d.Specialization, &d.Hospital, &d.Username,
		&d.PasswordHash, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("doctor not found")
		}
		return nil, apperr.Dependency(err, "scan doctor")
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor (doctor_id, name, specialization, hospital, username, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		d.DoctorID, d.Name, d.Specialization, d.Hospital, d.Username, d.PasswordHash).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "doctor_username_key" {
				return apperr.Conflict("username %s is already taken", d.Username)
			}
			return apperr.Conflict("doctor %s already exists", d.DoctorID)
		}
		return apperr.Dependency(err, "insert doctor")
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, doctorID string) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE doctor_id = $1`, doctorID))
}

func (r *doctorRepoPG) GetByUsername(ctx context.Context, username string) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE username = $1`, username))
}

func (r *doctorRepoPG) ListByIDs(ctx context.Context, doctorIDs []string) ([]*Doctor, error) {
	if len(doctorIDs) == 0 {
		return nil, nil
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor WHERE doctor_id = ANY($1)`, doctorIDs)
	if err != nil {
		return nil, apperr.Dependency(err, "query doctors by ids")
	}
	return collectDoctors(rows)
}

func (r *doctorRepoPG) List(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor ORDER BY doctor_id`)
	if err != nil {
		return nil, apperr.Dependency(err, "query doctors")
	}
	return collectDoctors(rows)
}

func collectDoctors(rows pgx.Rows) ([]*Doctor, error) {
	defer rows.Close()
	var out []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *doctorRepoPG) Delete(ctx context.Context, doctorID string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return apperr.Dependency(err, "delete doctor")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

func (r *doctorRepoPG) MaxIDAtOrAbove(ctx context.Context, atLeast string) (string, error) {
	var max *string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT MAX(doctor_id) FROM doctor WHERE doctor_id >= $1`, atLeast).Scan(&max)
	if err != nil {
		return "", apperr.Dependency(err, "query max doctor id")
	}
	if max == nil {
		return "", nil
	}
	return *max, nil
}
