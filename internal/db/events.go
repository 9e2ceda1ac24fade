package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

func CreateEvent(ctx context.Context, q Querier, title string, startsAt time.Time, createdBy int64, tutorID *int64) (*models.Event, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.New(apperr.KindValidation, "event title is required")
	}
	period, err := GetActivePeriod(ctx, q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	e := models.Event{
		Title: title, StartsAt: startsAt, PeriodID: period.ID,
		CreatedBy: createdBy, TutorID: tutorID,
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO events (title, starts_at, period_id, created_by, tutor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		title, startsAt, period.ID, createdBy, tutorID).Scan(&e.ID)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &e, nil
}

func ListEventsByPeriod(ctx context.Context, q Querier, periodID int64) ([]models.EventWithCount, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT e.id, e.title, e.starts_at, e.period_id, e.created_by, e.tutor_id,
			COUNT(p.user_id) AS participants
		FROM events e
		LEFT JOIN event_participants p ON p.event_id = e.id
		WHERE e.period_id = $1
		GROUP BY e.id
		ORDER BY e.starts_at`, periodID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.EventWithCount
	for rows.Next() {
		var e models.EventWithCount
		if err := rows.Scan(&e.ID, &e.Title, &e.StartsAt, &e.PeriodID, &e.CreatedBy,
			&e.TutorID, &e.Participants); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func JoinEvent(ctx context.Context, q Querier, eventID, userID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `
		INSERT INTO event_participants (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING`, eventID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Newf(apperr.KindNotFound, "event %d not found", eventID)
		}
		return fmt.Errorf("join event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.KindConflict, "already joined event %d", eventID)
	}
	return nil
}

func LeaveEvent(ctx context.Context, q Querier, eventID, userID int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx,
		`DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("leave event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.KindNotFound, "not a participant of event %d", eventID)
	}
	return nil
}
