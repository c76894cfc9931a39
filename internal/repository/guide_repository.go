package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/guide-store/internal/domain"
)

// GuideRepository encapsulates guide catalog reads. Guides are managed by an
// external content process; Create exists only for the seed tool.
type GuideRepository interface {
	Create(ctx context.Context, guide *domain.Guide) error
	GetByID(ctx context.Context, id string) (*domain.Guide, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Guide, error)
	ListActive(ctx context.Context) ([]domain.Guide, error)
}

type guideRepository struct {
	pool *pgxpool.Pool
}

// NewGuideRepository instantiates repository.
func NewGuideRepository(pool *pgxpool.Pool) GuideRepository {
	return &guideRepository{pool: pool}
}

const guideColumns = `id, slug, title, description, cover_image, price, currency, content, is_active, created_at, updated_at`

func (r *guideRepository) Create(ctx context.Context, guide *domain.Guide) error {
	const query = `
        INSERT INTO guides (slug, title, description, cover_image, price, currency, content, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (slug) DO NOTHING
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		guide.Slug,
		guide.Title,
		guide.Description,
		guide.CoverImage,
		guide.Price,
		guide.Currency,
		guide.Content,
		guide.IsActive,
	).Scan(&guide.ID, &guide.CreatedAt, &guide.UpdatedAt)
	if err == pgx.ErrNoRows {
		// slug already seeded
		return nil
	}
	return err
}

func (r *guideRepository) GetByID(ctx context.Context, id string) (*domain.Guide, error) {
	return r.fetchSingle(ctx, `SELECT `+guideColumns+` FROM guides WHERE id=$1`, id)
}

func (r *guideRepository) GetBySlug(ctx context.Context, slug string) (*domain.Guide, error) {
	return r.fetchSingle(ctx, `SELECT `+guideColumns+` FROM guides WHERE slug=$1`, slug)
}

func (r *guideRepository) ListActive(ctx context.Context) ([]domain.Guide, error) {
	const query = `SELECT ` + guideColumns + `
        FROM guides WHERE is_active=TRUE ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Guide
	for rows.Next() {
		guide, err := scanGuide(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *guide)
	}
	return result, rows.Err()
}

func (r *guideRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Guide, error) {
	return scanGuide(r.pool.QueryRow(ctx, query, arg))
}

func scanGuide(row pgx.Row) (*domain.Guide, error) {
	var guide domain.Guide
	if err := row.Scan(
		&guide.ID,
		&guide.Slug,
		&guide.Title,
		&guide.Description,
		&guide.CoverImage,
		&guide.Price,
		&guide.Currency,
		&guide.Content,
		&guide.IsActive,
		&guide.CreatedAt,
		&guide.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &guide, nil
}
