package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// resolveFunding verifies that an optional funding reference names an
// existing account or card. A missing target is rejected as
// ErrInvalidReference before anything is written.
func resolveFunding(ctx context.Context, tx *storage.SQLiteRepository, f *core.FundingRef) error {
	if f == nil {
		return nil
	}
	var err error
	switch f.Type {
	case core.OwnerAccount:
		_, err = tx.GetAccount(ctx, f.ID)
	case core.OwnerCard:
		_, err = tx.GetCreditCard(ctx, f.ID)
	default:
		return core.ErrInvalidType
	}
	if errors.Is(err, core.ErrNotFound) {
		return core.ErrInvalidReference
	}
	return err
}

// synthesize creates the transaction a funded record owns and applies
// its monetary effect. A nil funding reference synthesizes nothing.
// Zero amounts still produce a (zero-effect) transaction so later
// amount edits reconcile through the normal update path.
func synthesize(ctx context.Context, tx *storage.SQLiteRepository, src core.SourceType, sourceID, description string, date core.Date, amount core.Money, f *core.FundingRef) error {
	if f == nil {
		return nil
	}
	txn := core.Transaction{
		ID:          uuid.NewString(),
		OwnerType:   f.Type,
		OwnerID:     f.ID,
		AmountCents: core.SignedAmount(src, f.Type, amount),
		Description: description,
		Date:        date,
		SourceType:  src,
		SourceID:    sourceID,
		CreatedAt:   time.Now(),
	}
	if err := tx.CreateTransaction(ctx, txn); err != nil {
		return err
	}
	return apply(ctx, tx, txn)
}

// desynthesize reverses and deletes the transaction a source record
// owns, if any. A record that never named a funding reference has no
// transaction, which is not an error.
func desynthesize(ctx context.Context, tx *storage.SQLiteRepository, src core.SourceType, sourceID string) error {
	txn, err := tx.GetTransactionBySource(ctx, src, sourceID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := reverse(ctx, tx, txn); err != nil {
		return err
	}
	return tx.DeleteTransaction(ctx, txn.ID)
}

// apply adds the transaction's signed amount to its owner's balance.
// The sign already encodes the direction for both owner kinds, so this
// is a single addition.
func apply(ctx context.Context, tx *storage.SQLiteRepository, t core.Transaction) error {
	return adjustOwner(ctx, tx, t.OwnerType, t.OwnerID, t.AmountCents)
}

// reverse subtracts the transaction's signed amount, the exact inverse
// of apply: apply-then-reverse is a no-op on the balance.
func reverse(ctx context.Context, tx *storage.SQLiteRepository, t core.Transaction) error {
	return adjustOwner(ctx, tx, t.OwnerType, t.OwnerID, -t.AmountCents)
}

func adjustOwner(ctx context.Context, tx *storage.SQLiteRepository, owner core.OwnerType, ownerID string, delta int64) error {
	switch owner {
	case core.OwnerAccount:
		return tx.AdjustAccountBalance(ctx, ownerID, delta)
	case core.OwnerCard:
		return tx.AdjustCardBalance(ctx, ownerID, delta)
	}
	return core.ErrInvalidType
}

// RecomputeBalance is the consistency-repair path: it derives the
// balance from the initial/opening balance plus the signed sum of all
// live transactions, stores it, and returns it. For a store maintained
// only through the ledger it produces exactly the incrementally
// maintained value.
func (l *Ledger) RecomputeBalance(ctx context.Context, owner core.OwnerType, ownerID string) (int64, error) {
	var balance int64
	err := l.storage.WithTx(ctx, func(tx *storage.SQLiteRepository) error {
		sum, err := tx.SumTransactionsByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		switch owner {
		case core.OwnerAccount:
			account, err := tx.GetAccount(ctx, ownerID)
			if err != nil {
				return err
			}
			balance = account.InitialCents + sum
			account.BalanceCents = balance
			return tx.UpdateAccount(ctx, account)
		case core.OwnerCard:
			card, err := tx.GetCreditCard(ctx, ownerID)
			if err != nil {
				return err
			}
			balance = card.OpeningCents + sum
			card.BalanceCents = balance
			return tx.UpdateCreditCard(ctx, card)
		}
		return core.ErrInvalidType
	})
	if err != nil {
		return 0, fmt.Errorf("recompute balance: %w", err)
	}
	return balance, nil
}
