package directory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

type pgPatientRepository struct{ pool *pgxpool.Pool }

func NewPGPatientRepository(pool *pgxpool.Pool) PatientRepository {
	return &pgPatientRepository{pool: pool}
}

const patientCols = `id, name, email, date_of_birth, gender, phone, address,
	emergency_contact, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var id string
	err := row.Scan(&id, &p.Name, &p.Email, &p.DateOfBirth, &p.Gender,
		&p.Phone, &p.Address, &p.EmergencyContact, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = identity.Ref(id)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	pgErr, ok := err.(*pgconn.PgError)
	return ok && pgErr.Code == "23505"
}

func (s *pgPatientRepository) Create(ctx context.Context, p *Patient) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, date_of_birth, gender, phone,
			address, emergency_contact, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID.String(), p.Name, p.Email, p.DateOfBirth, p.Gender, p.Phone,
		p.Address, p.EmergencyContact, p.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return apperr.InvalidArgument("patient %s is already registered", p.ID)
	}
	return err
}

func (s *pgPatientRepository) GetByID(ctx context.Context, id identity.Ref) (*Patient, error) {
	p, err := scanPatient(s.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id.String()))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("patient %s not found", id)
	}
	return p, err
}

func (s *pgPatientRepository) Update(ctx context.Context, p *Patient) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE patients SET name=$2, email=$3, date_of_birth=$4, gender=$5,
			phone=$6, address=$7, emergency_contact=$8
		WHERE id = $1`,
		p.ID.String(), p.Name, p.Email, p.DateOfBirth, p.Gender,
		p.Phone, p.Address, p.EmergencyContact)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("patient %s not found", p.ID)
	}
	return nil
}

func (s *pgPatientRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}

type pgProviderRepository struct{ pool *pgxpool.Pool }

func NewPGProviderRepository(pool *pgxpool.Pool) ProviderRepository {
	return &pgProviderRepository{pool: pool}
}

const providerCols = `id, name, specialty, license_number, hospital_affiliation,
	email, phone, verified, created_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	var id string
	err := row.Scan(&id, &p.Name, &p.Specialty, &p.LicenseNumber,
		&p.HospitalAffiliation, &p.Email, &p.Phone, &p.Verified, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = identity.Ref(id)
	return &p, nil
}

func (s *pgProviderRepository) Create(ctx context.Context, p *Provider) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO providers (id, name, specialty, license_number,
			hospital_affiliation, email, phone, verified, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID.String(), p.Name, p.Specialty, p.LicenseNumber,
		p.HospitalAffiliation, p.Email, p.Phone, p.Verified, p.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return apperr.InvalidArgument("provider %s is already registered", p.ID)
	}
	return err
}

func (s *pgProviderRepository) GetByID(ctx context.Context, id identity.Ref) (*Provider, error) {
	p, err := scanProvider(s.pool.QueryRow(ctx,
		`SELECT `+providerCols+` FROM providers WHERE id = $1`, id.String()))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("provider %s not found", id)
	}
	return p, err
}

func (s *pgProviderRepository) Update(ctx context.Context, p *Provider) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE providers SET name=$2, specialty=$3, license_number=$4,
			hospital_affiliation=$5, email=$6, phone=$7, verified=$8
		WHERE id = $1`,
		p.ID.String(), p.Name, p.Specialty, p.LicenseNumber,
		p.HospitalAffiliation, p.Email, p.Phone, p.Verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("provider %s not found", p.ID)
	}
	return nil
}

func (s *pgProviderRepository) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM providers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+providerCols+` FROM providers ORDER BY created_at, id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (s *pgProviderRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM providers`).Scan(&n)
	return n, err
}
