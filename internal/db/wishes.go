package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

func CreateWish(ctx context.Context, q Querier, authorID int64, body string) (*models.Wish, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.New(apperr.KindValidation, "wish body is required")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	w := models.Wish{AuthorID: authorID, Body: body}
	err := q.QueryRowContext(ctx, `
		INSERT INTO wishes (author_id, body) VALUES ($1, $2) RETURNING id, created_at`,
		authorID, body).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create wish: %w", err)
	}
	return &w, nil
}

func ListWishes(ctx context.Context, q Querier) ([]models.Wish, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx,
		`SELECT id, author_id, body, created_at FROM wishes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list wishes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Wish
	for rows.Next() {
		var w models.Wish
		if err := rows.Scan(&w.ID, &w.AuthorID, &w.Body, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
