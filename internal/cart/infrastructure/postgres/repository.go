package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mousegear/store/internal/cart/domain"
	platform "github.com/mousegear/store/internal/platform/postgres"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Items(ctx context.Context, userID string) ([]domain.Item, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT product_id, quantity FROM cart_items WHERE user_id=$1 ORDER BY position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *Repository) UpsertItem(ctx context.Context, userID, productID string, delta int) error {
	q := platform.QuerierFrom(ctx, r.pool)
	if _, err := q.Exec(ctx, `INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `INSERT INTO cart_items (user_id, product_id, quantity) VALUES ($1,$2,$3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, delta)
	return err
}

func (r *Repository) SetQuantity(ctx context.Context, userID, productID string, qty int) error {
	q := platform.QuerierFrom(ctx, r.pool)
	ct, err := q.Exec(ctx, `UPDATE cart_items SET quantity=$3 WHERE user_id=$1 AND product_id=$2`, userID, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, userID, productID string) error {
	q := platform.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	return err
}

// Resolve joins cart lines against live products. Lines whose product has
// been soft-deleted since it was added drop out of the view.
func (r *Repository) Resolve(ctx context.Context, userID string) ([]domain.Line, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT ci.product_id, p.name, p.price, p.img_url, ci.quantity, p.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id AND p.deleted_at IS NULL
		WHERE ci.user_id=$1
		ORDER BY ci.position`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var ln domain.Line
		if err := rows.Scan(&ln.ProductID, &ln.Name, &ln.Price, &ln.ImgURL, &ln.Quantity, &ln.Stock); err != nil {
			return nil, err
		}
		lines = append(lines, ln)
	}
	return lines, rows.Err()
}

func (r *Repository) Clear(ctx context.Context, userID string) error {
	q := platform.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
