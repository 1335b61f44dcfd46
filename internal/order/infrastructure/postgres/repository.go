package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mousegear/store/internal/order/domain"
	platform "github.com/mousegear/store/internal/platform/postgres"
	"github.com/mousegear/store/pkg/tracing"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// Create inserts the order, its frozen items, and the OrderPlaced outbox
// event through the ambient querier, so inside a checkout transaction all
// three commit or roll back with it.
func (r *Repository) Create(ctx context.Context, o domain.Order) error {
	q := platform.QuerierFrom(ctx, r.pool)

	_, err := q.Exec(ctx, `INSERT INTO orders (id, user_id, total_amount, status, payment_status, shipping_address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.UserID, o.TotalAmount, o.Status, o.PaymentStatus, o.ShippingAddress, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES ($1,$2,$3,$4,$5)`,
			o.ID, it.ProductID, it.Name, it.Price, it.Quantity)
	}
	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return r.appendEvent(ctx, o.ID, "OrderPlaced", domain.OrderPlaced{
		OrderID:       o.ID,
		UserID:        o.UserID,
		TotalAmount:   o.TotalAmount,
		PaymentStatus: o.PaymentStatus,
		Items:         o.Items,
	})
}

func (r *Repository) appendEvent(ctx context.Context, orderID, eventType string, event any) error {
	q := platform.QuerierFrom(ctx, r.pool)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		VALUES ('order', $1, $2, $3, '{}'::jsonb, $4, 'pending')`,
		orderID, eventType, payload, tracing.TraceparentFromContext(ctx))
	return err
}

const orderColumns = `id, user_id, total_amount, status, payment_status, shipping_address, created_at, updated_at`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.PaymentStatus,
		&o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return domain.Order{}, err
	}
	if err := r.loadItems(ctx, []*domain.Order{&o}); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *Repository) list(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Repository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	q := platform.QuerierFrom(ctx, r.pool)
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := q.Query(ctx, `SELECT order_id, product_id, name, price, quantity FROM order_items WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var it domain.Item
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return err
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, u domain.StatusUpdate) (domain.Order, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `UPDATE orders SET
			status         = COALESCE($2, status),
			payment_status = COALESCE($3, payment_status),
			updated_at     = now()
		WHERE id=$1
		RETURNING `+orderColumns,
		id, u.Status, u.PaymentStatus)
	o, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}
	if err := r.loadItems(ctx, []*domain.Order{&o}); err != nil {
		return domain.Order{}, err
	}
	err = r.appendEvent(ctx, o.ID, "OrderStatusChanged", domain.OrderStatusChanged{
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
	})
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
