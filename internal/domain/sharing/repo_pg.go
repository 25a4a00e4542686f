package sharing

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/identity"
)

type pgRepository struct{ pool *pgxpool.Pool }

func NewPGRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const requestCols = `id, patient_id, provider_id, record_ids, status, message,
	requested_at, expires_at`

func scanRequest(row pgx.Row) (*ShareRequest, error) {
	var r ShareRequest
	var patient, provider string
	err := row.Scan(&r.ID, &patient, &provider, &r.RecordIDs, &r.Status,
		&r.Message, &r.RequestedAt, &r.ExpiresAt)
	if err != nil {
		return nil, err
	}
	r.Patient = identity.Ref(patient)
	r.Provider = identity.Ref(provider)
	return &r, nil
}

func (s *pgRepository) Create(ctx context.Context, r *ShareRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO share_requests (id, patient_id, provider_id, record_ids,
			status, message, requested_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.Patient.String(), r.Provider.String(), r.RecordIDs,
		r.Status, r.Message, r.RequestedAt, r.ExpiresAt)
	return err
}

func (s *pgRepository) GetByID(ctx context.Context, id string) (*ShareRequest, error) {
	r, err := scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestCols+` FROM share_requests WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("share request %s not found", id)
	}
	return r, err
}

func (s *pgRepository) Update(ctx context.Context, r *ShareRequest) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE share_requests SET status=$2 WHERE id = $1`,
		r.ID, r.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("share request %s not found", r.ID)
	}
	return nil
}

func (s *pgRepository) list(ctx context.Context, query string, args ...interface{}) ([]*ShareRequest, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ShareRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *pgRepository) ListByPatient(ctx context.Context, patient identity.Ref) ([]*ShareRequest, error) {
	return s.list(ctx,
		`SELECT `+requestCols+` FROM share_requests WHERE patient_id = $1 ORDER BY requested_at, id`,
		patient.String())
}

func (s *pgRepository) ListByProvider(ctx context.Context, provider identity.Ref) ([]*ShareRequest, error) {
	return s.list(ctx,
		`SELECT `+requestCols+` FROM share_requests WHERE provider_id = $1 ORDER BY requested_at, id`,
		provider.String())
}

func (s *pgRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM share_requests`).Scan(&n)
	return n, err
}
