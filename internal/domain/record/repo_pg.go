package record

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

const recordCols = `id, owner_id, title, description, record_type, payload,
	shared_with, created_at, updated_at`

func scanRecord(row pgx.Row) (*HealthRecord, error) {
	var r HealthRecord
	var owner string
	var shared []string
	err := row.Scan(&r.ID, &owner, &r.Title, &r.Description, &r.RecordType,
		&r.Payload, &shared, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Owner = identity.Ref(owner)
	r.SharedWith = make([]identity.Ref, 0, len(shared))
	for _, g := range shared {
		r.SharedWith = append(r.SharedWith, identity.Ref(g))
	}
	return &r, nil
}

func sharedStrings(r *HealthRecord) []string {
	out := make([]string, 0, len(r.SharedWith))
	for _, g := range r.SharedWith {
		out = append(out, g.String())
	}
	return out
}

func (s *pgRepository) Create(ctx context.Context, r *HealthRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO health_records (id, owner_id, title, description, record_type,
			payload, shared_with, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.Owner.String(), r.Title, r.Description, r.RecordType,
		r.Payload, sharedStrings(r), r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *pgRepository) GetByID(ctx context.Context, id string) (*HealthRecord, error) {
	r, err := scanRecord(s.pool.QueryRow(ctx,
		`SELECT `+recordCols+` FROM health_records WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, apperr.NotFound("record %s not found", id)
	}
	return r, err
}

func (s *pgRepository) Update(ctx context.Context, r *HealthRecord) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE health_records SET title=$2, description=$3, record_type=$4,
			payload=$5, shared_with=$6, updated_at=$7
		WHERE id = $1`,
		r.ID, r.Title, r.Description, r.RecordType,
		r.Payload, sharedStrings(r), r.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("record %s not found", r.ID)
	}
	return nil
}

func (s *pgRepository) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM health_records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("record %s not found", id)
	}
	return nil
}

func (s *pgRepository) list(ctx context.Context, query string, args ...interface{}) ([]*HealthRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*HealthRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *pgRepository) ListByOwner(ctx context.Context, owner identity.Ref) ([]*HealthRecord, error) {
	return s.list(ctx,
		`SELECT `+recordCols+` FROM health_records WHERE owner_id = $1 ORDER BY created_at, id`,
		owner.String())
}

func (s *pgRepository) ListSharedWith(ctx context.Context, grantee identity.Ref) ([]*HealthRecord, error) {
	return s.list(ctx,
		`SELECT `+recordCols+` FROM health_records WHERE $1 = ANY(shared_with) ORDER BY created_at, id`,
		grantee.String())
}

func (s *pgRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM health_records`).Scan(&n)
	return n, err
}
