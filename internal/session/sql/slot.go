package sessionsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkcm/blog-client/internal/session"
)

// Slot keeps durable slot values in the token_slot table.
type Slot struct {
	db *pgxpool.Pool
}

var _ = session.Slot(&Slot{})

func NewSlot(db *pgxpool.Pool) *Slot {
	return &Slot{
		db: db,
	}
}

func (s *Slot) Get(ctx context.Context, key string) (value string, _ error) {
	if err := s.db.QueryRow(ctx, `SELECT value FROM token_slot WHERE key = $1;`, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", session.ErrSlotEmpty
		}

		return "", fmt.Errorf("selecting from token_slot: %w", err)
	}

	return value, nil
}

func (s *Slot) Set(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO token_slot (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key)
	DO UPDATE SET (value, updated_at) = (EXCLUDED.value, EXCLUDED.updated_at);`,
		key, value,
	); err != nil {
		if err, ok := handlePgError(err); ok {
			return err
		}

		return fmt.Errorf("upserting into token_slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing tx: %w", err)
	}

	return nil
}

// Delete removes the value. Deleting a missing key is not an error.
func (s *Slot) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM token_slot WHERE key = $1;`, key); err != nil {
		return fmt.Errorf("deleting from token_slot: %w", err)
	}

	return nil
}
