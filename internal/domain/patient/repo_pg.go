package patient

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

// email is stored as NULL when empty so the unique index only covers real
// addresses.
const patientColumns = `id, first_name, last_name, COALESCE(email, ''), phone, date_of_birth, gender,
	address, emergency_contact, medical_history, allergies, medications, insurance,
	created_at, updated_at`

func (r *pgRepo) Create(ctx context.Context, p *Patient) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO patients (
			first_name, last_name, email, phone, date_of_birth, gender,
			address, emergency_contact, medical_history, allergies, medications, insurance
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`,
		p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.Gender,
		p.Address, p.EmergencyContact, p.MedicalHistory, p.Allergies, p.Medications, p.Insurance,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *pgRepo) GetByID(ctx context.Context, id int) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	return p, translate(err)
}

func (r *pgRepo) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE email = $1`, email))
	return p, translate(err)
}

func (r *pgRepo) Update(ctx context.Context, p *Patient) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE patients SET
			first_name = $2, last_name = $3, email = NULLIF($4, ''), phone = $5,
			date_of_birth = $6, gender = $7, address = $8, emergency_contact = $9,
			medical_history = $10, allergies = $11, medications = $12, insurance = $13,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone,
		p.DateOfBirth, p.Gender, p.Address, p.EmergencyContact,
		p.MedicalHistory, p.Allergies, p.Medications, p.Insurance,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *pgRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepo) List(ctx context.Context, search string, pg pagination.Params) ([]*Patient, int, error) {
	where := ``
	var args []interface{}
	if search != "" {
		where = ` WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR phone LIKE $1`
		args = append(args, db.ContainsPattern(search))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + patientColumns + ` FROM patients` + where +
		fmt.Sprintf(` ORDER BY id LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, db.LimitArg(pg.Limit), pg.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth, &p.Gender,
		&p.Address, &p.EmergencyContact, &p.MedicalHistory, &p.Allergies, &p.Medications, &p.Insurance,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.normalize()
	return &p, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	if _, ok := db.UniqueViolation(err); ok {
		return ErrEmailTaken
	}
	return err
}
