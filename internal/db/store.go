package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

func CreateStoreItem(ctx context.Context, q Querier, name string, cost int, stock *int) (*models.StoreItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.New(apperr.KindValidation, "item name is required")
	}
	if cost <= 0 {
		return nil, apperr.New(apperr.KindValidation, "item cost must be positive")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	item := models.StoreItem{Name: name, Cost: cost, Stock: stock, IsActive: true}
	err := q.QueryRowContext(ctx, `
		INSERT INTO store_items (name, cost, stock) VALUES ($1, $2, $3) RETURNING id`,
		name, cost, stock).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("create store item: %w", err)
	}
	return &item, nil
}

func GetStoreItem(ctx context.Context, q Querier, id int64) (*models.StoreItem, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var it models.StoreItem
	err := q.QueryRowContext(ctx,
		`SELECT id, name, cost, stock, is_active FROM store_items WHERE id = $1`, id,
	).Scan(&it.ID, &it.Name, &it.Cost, &it.Stock, &it.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "store item %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get store item: %w", err)
	}
	return &it, nil
}

func ListStoreItems(ctx context.Context, q Querier, includeInactive bool) ([]models.StoreItem, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, name, cost, stock, is_active FROM store_items`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY cost, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list store items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.StoreItem
	for rows.Next() {
		var it models.StoreItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Cost, &it.Stock, &it.IsActive); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func SetStoreItemActive(ctx context.Context, q Querier, id int64, active bool) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `UPDATE store_items SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set item active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.KindNotFound, "store item %d not found", id)
	}
	return nil
}
