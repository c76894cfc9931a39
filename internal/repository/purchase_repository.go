package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/guide-store/internal/domain"
)

// ErrDuplicatePurchase is returned when an insert hits the (user_id, guide_id)
// uniqueness constraint. The constraint is the idempotency mechanism for
// redelivered payment notifications; callers treat this as an existing
// completed purchase, not a failure.
var ErrDuplicatePurchase = errors.New("purchase already exists for user and guide")

const uniqueViolationCode = "23505"

// PurchaseRepository encapsulates purchase persistence.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.Purchase) error
	GetByUserAndGuide(ctx context.Context, userID, guideID string) (*domain.Purchase, error)
	ListCompletedByUser(ctx context.Context, userID string) ([]domain.PurchaseWithGuide, error)
}

type purchaseRepository struct {
	pool *pgxpool.Pool
}

// NewPurchaseRepository instantiates repository.
func NewPurchaseRepository(pool *pgxpool.Pool) PurchaseRepository {
	return &purchaseRepository{pool: pool}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	const query = `
        INSERT INTO purchases (user_id, guide_id, stripe_payment_id, status, amount, currency)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		purchase.UserID,
		purchase.GuideID,
		purchase.StripePaymentID,
		purchase.Status,
		purchase.Amount,
		purchase.Currency,
	).Scan(&purchase.ID, &purchase.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicatePurchase
		}
		return err
	}
	return nil
}

func (r *purchaseRepository) GetByUserAndGuide(ctx context.Context, userID, guideID string) (*domain.Purchase, error) {
	const query = `
        SELECT id, user_id, guide_id, stripe_payment_id, status, amount, currency, created_at
        FROM purchases WHERE user_id=$1 AND guide_id=$2`

	var p domain.Purchase
	if err := r.pool.QueryRow(ctx, query, userID, guideID).Scan(
		&p.ID,
		&p.UserID,
		&p.GuideID,
		&p.StripePaymentID,
		&p.Status,
		&p.Amount,
		&p.Currency,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) ListCompletedByUser(ctx context.Context, userID string) ([]domain.PurchaseWithGuide, error) {
	const query = `
        SELECT p.id, p.user_id, p.guide_id, p.stripe_payment_id, p.status, p.amount, p.currency, p.created_at,
               g.id, g.slug, g.title, g.description, g.cover_image, g.price, g.currency, g.content, g.is_active, g.created_at, g.updated_at
        FROM purchases p
        JOIN guides g ON g.id = p.guide_id
        WHERE p.user_id=$1 AND p.status=$2
        ORDER BY p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, domain.PurchaseStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPurchasesWithGuides(rows)
}

func scanPurchasesWithGuides(rows pgx.Rows) ([]domain.PurchaseWithGuide, error) {
	var result []domain.PurchaseWithGuide
	for rows.Next() {
		var item domain.PurchaseWithGuide
		if err := rows.Scan(
			&item.Purchase.ID,
			&item.Purchase.UserID,
			&item.Purchase.GuideID,
			&item.Purchase.StripePaymentID,
			&item.Purchase.Status,
			&item.Purchase.Amount,
			&item.Purchase.Currency,
			&item.Purchase.CreatedAt,
			&item.Guide.ID,
			&item.Guide.Slug,
			&item.Guide.Title,
			&item.Guide.Description,
			&item.Guide.CoverImage,
			&item.Guide.Price,
			&item.Guide.Currency,
			&item.Guide.Content,
			&item.Guide.IsActive,
			&item.Guide.CreatedAt,
			&item.Guide.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
