package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	platform "github.com/mousegear/store/internal/platform/postgres"
	"github.com/mousegear/store/internal/user/domain"
)

const uniqueViolation = "23505"

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const userColumns = `id, name, email, phone, address, password_hash, role, balance, deleted_at, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.PasswordHash,
		&u.Role, &u.Balance, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (r *Repository) Create(ctx context.Context, u domain.User) error {
	q := platform.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, `INSERT INTO users (id, name, email, phone, address, password_hash, role, balance)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Name, u.Email, u.Phone, u.Address, u.PasswordHash, u.Role, u.Balance)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrNameTaken
	}
	return err
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.User, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 AND deleted_at IS NULL`, id))
}

// FindByName resolves soft-deleted accounts too; callers decide whether a
// deleted account is acceptable.
func (r *Repository) FindByName(ctx context.Context, name string) (domain.User, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	return scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE name=$1`, name))
}

func (r *Repository) List(ctx context.Context) ([]domain.User, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) Update(ctx context.Context, id string, p domain.PartialUpdate) (domain.User, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `UPDATE users SET
			email   = COALESCE($2, email),
			phone   = COALESCE($3, phone),
			address = COALESCE($4, address),
			updated_at = now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING `+userColumns,
		id, p.Email, p.Phone, p.Address)
	return scanUser(row)
}

func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	q := platform.QuerierFrom(ctx, r.pool)
	ct, err := q.Exec(ctx, `UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1 AND deleted_at IS NULL`, id, hash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) MarkDeleted(ctx context.Context, id string) error {
	q := platform.QuerierFrom(ctx, r.pool)
	ct, err := q.Exec(ctx, `UPDATE users SET deleted_at=now(), updated_at=now() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Restore(ctx context.Context, name string) (domain.User, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `UPDATE users SET deleted_at=NULL, updated_at=now() WHERE name=$1 RETURNING `+userColumns, name)
	return scanUser(row)
}

func (r *Repository) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	var balance int64
	err := q.QueryRow(ctx, `UPDATE users SET balance = balance + $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING balance`, id, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return balance, err
}

// Debit is a single conditional update: the balance check and the decrement
// cannot be interleaved by a concurrent writer.
func (r *Repository) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	q := platform.QuerierFrom(ctx, r.pool)
	var balance int64
	err := q.QueryRow(ctx, `UPDATE users SET balance = balance - $2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL AND balance >= $2
		RETURNING balance`, id, amount).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if probeErr := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1 AND deleted_at IS NULL)`, id).Scan(&exists); probeErr != nil {
			return 0, probeErr
		}
		if !exists {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrInsufficientFunds
	}
	return balance, err
}
