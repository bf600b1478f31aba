package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type currencySeed struct {
	Code      string
	Name      string
	Symbol    *string
	MinorUnit int
	IsActive  bool
}

// seedSystemImmutableData loads reference data the application reads but
// never writes. Re-running is safe; every statement upserts.
func seedSystemImmutableData(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("system seed requires database handle")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin system seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := seedCurrencies(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit system seed transaction: %w", err)
	}
	return nil
}

func seedCurrencies(ctx context.Context, tx *sql.Tx) error {
	inr := "₹"
	usd := "$"
	aed := "AED"
	sgd := "SGD"

	seeds := []currencySeed{
		{Code: "INR", Name: "Indian Rupee", Symbol: &inr, MinorUnit: 2, IsActive: true},
		{Code: "USD", Name: "US Dollar", Symbol: &usd, MinorUnit: 2, IsActive: true},
		{Code: "AED", Name: "UAE Dirham", Symbol: &aed, MinorUnit: 2, IsActive: true},
		{Code: "SGD", Name: "Singapore Dollar", Symbol: &sgd, MinorUnit: 2, IsActive: true},
	}

	const stmt = `
		INSERT INTO currencies (code, name, symbol, minor_unit, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE
		SET name = EXCLUDED.name,
		    symbol = EXCLUDED.symbol,
		    minor_unit = EXCLUDED.minor_unit,
		    is_active = EXCLUDED.is_active
	`

	for _, seed := range seeds {
		if _, err := tx.ExecContext(ctx, stmt, seed.Code, seed.Name, seed.Symbol, seed.MinorUnit, seed.IsActive); err != nil {
			return fmt.Errorf("seed currency %s: %w", seed.Code, err)
		}
	}
	return nil
}
