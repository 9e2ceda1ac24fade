package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SeedStore fills an empty store with a starter catalog. Safe to run on
// every startup.
func SeedStore(ctx context.Context, database *sql.DB) error {
	var count int
	if err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM store_items`).Scan(&count); err != nil {
		return fmt.Errorf("check store_items: %w", err)
	}
	if count > 0 {
		return nil
	}

	items := []struct {
		name string
		cost int
	}{
		{"Kitap", 50},
		{"Kırtasiye Seti", 80},
		{"Sinema Bileti", 120},
		{"Kulaklık", 300},
		{"Günlük İzin", 200},
	}
	for _, it := range items {
		if _, err := database.ExecContext(ctx,
			`INSERT INTO store_items (name, cost) VALUES ($1, $2)`, it.name, it.cost); err != nil {
			return fmt.Errorf("seed item %s: %w", it.name, err)
		}
	}
	return nil
}
