package doctor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/frontdesk/frontdesk/internal/platform/db"
	"github.com/frontdesk/frontdesk/pkg/pagination"
)

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const doctorColumns = `id, name, specialty, gender, location, available, email, phone,
	working_hours_start, working_hours_end, created_at, updated_at`

func (r *pgRepo) Create(ctx context.Context, d *Doctor) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO doctors (
			name, specialty, gender, location, available, email, phone,
			working_hours_start, working_hours_end
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		d.Name, d.Specialty, d.Gender, d.Location, d.Available, d.Email, d.Phone,
		d.WorkingHours.Start, d.WorkingHours.End,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *pgRepo) GetByID(ctx context.Context, id int) (*Doctor, error) {
	d, err := scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return d, err
}

func (r *pgRepo) Update(ctx context.Context, d *Doctor) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE doctors SET
			name = $2, specialty = $3, gender = $4, location = $5, available = $6,
			email = $7, phone = $8, working_hours_start = $9, working_hours_end = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		d.ID, d.Name, d.Specialty, d.Gender, d.Location, d.Available,
		d.Email, d.Phone, d.WorkingHours.Start, d.WorkingHours.End,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return err
}

func (r *pgRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) List(ctx context.Context, f Filter, p pagination.Params) ([]*Doctor, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Search != "" {
		where += fmt.Sprintf(` AND (name ILIKE $%d OR specialty ILIKE $%d OR location ILIKE $%d)`, idx, idx, idx)
		args = append(args, db.ContainsPattern(f.Search))
		idx++
	}
	if f.Specialty != "" {
		where += fmt.Sprintf(` AND specialty = $%d`, idx)
		args = append(args, f.Specialty)
		idx++
	}
	if f.Location != "" {
		where += fmt.Sprintf(` AND location = $%d`, idx)
		args = append(args, f.Location)
		idx++
	}
	if f.Available != nil {
		where += fmt.Sprintf(` AND available = $%d`, idx)
		args = append(args, *f.Available)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + doctorColumns + ` FROM doctors` + where +
		fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, db.LimitArg(p.Limit), p.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, d)
	}
	return doctors, total, rows.Err()
}

func (r *pgRepo) Specialties(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT specialty FROM doctors WHERE specialty <> '' ORDER BY specialty`)
}

func (r *pgRepo) Locations(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT location FROM doctors WHERE location <> '' ORDER BY location`)
}

func (r *pgRepo) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.Name, &d.Specialty, &d.Gender, &d.Location, &d.Available, &d.Email, &d.Phone,
		&d.WorkingHours.Start, &d.WorkingHours.End, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
