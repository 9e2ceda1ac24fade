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

func CreatePointEarningCard(ctx context.Context, q Querier, title string, points int, createdBy int64) (*models.PointEarningCard, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.New(apperr.KindValidation, "card title is required")
	}
	if points <= 0 {
		return nil, apperr.New(apperr.KindValidation, "card points must be positive")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	c := models.PointEarningCard{Title: title, Points: points, CreatedBy: createdBy, IsActive: true}
	err := q.QueryRowContext(ctx, `
		INSERT INTO point_earning_cards (title, points, created_by)
		VALUES ($1, $2, $3) RETURNING id`,
		title, points, createdBy).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}
	return &c, nil
}

func ListPointEarningCards(ctx context.Context, q Querier, includeInactive bool) ([]models.PointEarningCard, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT id, title, points, created_by, is_active FROM point_earning_cards`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY points, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.PointEarningCard
	for rows.Next() {
		var c models.PointEarningCard
		if err := rows.Scan(&c.ID, &c.Title, &c.Points, &c.CreatedBy, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AwardCard grants a card's fixed point value to a student. It is plain
// AwardPoints with the card's title as the reason.
func AwardCard(ctx context.Context, q Querier, cardID, studentID, tutorID int64) (*models.PointsTransaction, error) {
	var c models.PointEarningCard
	err := q.QueryRowContext(ctx,
		`SELECT id, title, points, created_by, is_active FROM point_earning_cards WHERE id = $1`, cardID,
	).Scan(&c.ID, &c.Title, &c.Points, &c.CreatedBy, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "card %d not found", cardID)
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	if !c.IsActive {
		return nil, apperr.Newf(apperr.KindConflict, "card %d is not active", cardID)
	}
	return AwardPoints(ctx, q, AwardInput{
		StudentID: studentID,
		TutorID:   &tutorID,
		Amount:    c.Points,
		Reason:    &c.Title,
	})
}
