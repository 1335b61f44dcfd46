package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mousegear/store/internal/catalog/domain"
	platform "github.com/mousegear/store/internal/platform/postgres"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const productColumns = `id, name, price, quantity, brand, category, description, img_url, deleted_at, created_at, updated_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.Brand, &p.Category,
		&p.Description, &p.ImgURL, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) Create(ctx context.Context, p domain.Product) error {
	q := platform.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, `INSERT INTO products (id, name, price, quantity, brand, category, description, img_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Price, p.Quantity, p.Brand, p.Category, p.Description, p.ImgURL)
	return err
}

// FindByID resolves only live products.
func (r *Repository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	return scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 AND deleted_at IS NULL`, id))
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repository) SearchByName(ctx context.Context, partial string) ([]domain.Product, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products
		WHERE name ILIKE '%' || $1 || '%' AND deleted_at IS NULL ORDER BY name`, partial)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repository) FilterByCategory(ctx context.Context, c domain.Category) ([]domain.Product, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products
		WHERE category=$1 AND deleted_at IS NULL ORDER BY name`, c)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repository) Update(ctx context.Context, id string, p domain.PartialUpdate) (domain.Product, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `UPDATE products SET
			name        = COALESCE($2, name),
			price       = COALESCE($3, price),
			quantity    = COALESCE($4, quantity),
			brand       = COALESCE($5, brand),
			category    = COALESCE($6, category),
			description = COALESCE($7, description),
			img_url     = COALESCE($8, img_url),
			updated_at  = now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING `+productColumns,
		id, p.Name, p.Price, p.Quantity, p.Brand, p.Category, p.Description, p.ImgURL)
	return scanProduct(row)
}

func (r *Repository) MarkDeleted(ctx context.Context, id string) error {
	q := platform.QuerierFrom(ctx, r.pool)
	ct, err := q.Exec(ctx, `UPDATE products SET deleted_at=now(), updated_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Restore(ctx context.Context, id string) (domain.Product, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `UPDATE products SET deleted_at=NULL, updated_at=now() WHERE id=$1 RETURNING `+productColumns, id)
	return scanProduct(row)
}

// ReserveStock is the oversell guard: the availability predicate and the
// decrement are a single statement, serialized by the row lock.
func (r *Repository) ReserveStock(ctx context.Context, id string, qty int) error {
	q := platform.QuerierFrom(ctx, r.pool)
	ct, err := q.Exec(ctx, `UPDATE products SET quantity = quantity - $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL AND quantity >= $2`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if probeErr := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1 AND deleted_at IS NULL)`, id).Scan(&exists); probeErr != nil {
			return probeErr
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *Repository) AddStock(ctx context.Context, id string, qty int) error {
	q := platform.QuerierFrom(ctx, r.pool)
	ct, err := q.Exec(ctx, `UPDATE products SET quantity = quantity + $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL`, id, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
