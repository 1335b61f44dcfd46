package application

import (
	"context"
	"log/slog"

	"github.com/mousegear/store/internal/user/domain"
)

// Ledger owns the invariant that a balance never goes negative. Amounts are
// satang and must be positive.
type Ledger struct {
	log  *slog.Logger
	repo UserRepository
	tx   TxRunner
}

func NewLedger(log *slog.Logger, repo UserRepository, tx TxRunner) *Ledger {
	return &Ledger{log: log, repo: repo, tx: tx}
}

// Credit increases the target balance and returns the new value. Credits
// always succeed for an existing account.
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return l.repo.Credit(ctx, userID, amount)
}

// Debit decreases the balance, failing with domain.ErrInsufficientFunds when
// the account cannot cover the amount. The check and the write are one
// conditional update.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	return l.repo.Debit(ctx, userID, amount)
}

// Transfer moves amount between two accounts as one unit. A failed credit
// rolls back the debit.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return l.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := l.repo.Debit(ctx, fromID, amount); err != nil {
			return err
		}
		if _, err := l.repo.Credit(ctx, toID, amount); err != nil {
			return err
		}
		l.log.Info("transfer applied", "from", fromID, "to", toID, "amount", amount)
		return nil
	})
}
