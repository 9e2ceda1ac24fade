package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

func CreatePeriod(ctx context.Context, q Querier, p models.Period) (int64, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, apperr.New(apperr.KindValidation, "period name is required")
	}
	if !p.EndDate.After(p.StartDate) {
		return 0, apperr.New(apperr.KindValidation, "period end must be after start")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO periods (name, start_date, end_date, status)
		VALUES ($1, $2, $3, 'INACTIVE')
		RETURNING id`,
		p.Name, p.StartDate, p.EndDate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create period: %w", err)
	}
	return id, nil
}

func GetPeriodByID(ctx context.Context, q Querier, id int64) (*models.Period, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var p models.Period
	err := q.QueryRowContext(ctx,
		`SELECT id, name, start_date, end_date, status FROM periods WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "period %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get period: %w", err)
	}
	return &p, nil
}

// GetActivePeriod returns apperr.ErrNoActivePeriod when no period is active.
// Every balance computation requires an active period as a precondition.
func GetActivePeriod(ctx context.Context, q Querier) (*models.Period, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var p models.Period
	err := q.QueryRowContext(ctx,
		`SELECT id, name, start_date, end_date, status FROM periods WHERE status = 'ACTIVE' LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNoActivePeriod
	}
	if err != nil {
		return nil, fmt.Errorf("get active period: %w", err)
	}
	return &p, nil
}

func ListPeriods(ctx context.Context, q Querier) ([]models.Period, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx,
		`SELECT id, name, start_date, end_date, status FROM periods ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Period
	for rows.Next() {
		var p models.Period
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.Status); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ActivatePeriod makes period id the single ACTIVE period. When resetData is
// set, the cached points/experience counters of every reward-bearing user are
// zeroed in the same transaction. Transaction rows are never touched, so
// period-scoped aggregation is unaffected by the reset.
//
// A failure anywhere leaves the previously active period active.
func ActivatePeriod(ctx context.Context, database *sql.DB, id int64, resetData bool) error {
	ctx, cancel := ctxutil.WithTimeout(ctx, 2*ctxutil.DefaultDBTimeout)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate period: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status models.PeriodStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM periods WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Newf(apperr.KindNotFound, "period %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("lock period: %w", err)
	}
	if status == models.PeriodActive {
		return apperr.Newf(apperr.KindConflict, "period %d is already active", id)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE periods SET status = 'INACTIVE' WHERE status = 'ACTIVE'`); err != nil {
		return fmt.Errorf("deactivate periods: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE periods SET status = 'ACTIVE' WHERE id = $1`, id); err != nil {
		// The uniq_active_period index fires when another activation won the
		// race between our deactivate and activate statements.
		if isUniqueViolation(err) {
			return apperr.New(apperr.KindConflict, "another period activation is in progress")
		}
		return fmt.Errorf("activate period: %w", err)
	}

	if resetData {
		roles := make([]string, 0, len(models.RewardRoles))
		for _, r := range models.RewardRoles {
			roles = append(roles, string(r))
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE users SET points = 0, experience = 0
			WHERE role = ANY($1)`, pq.Array(roles)); err != nil {
			return fmt.Errorf("reset counters: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return apperr.New(apperr.KindConflict, "another period activation is in progress")
		}
		return fmt.Errorf("commit activate period: %w", err)
	}
	return nil
}
