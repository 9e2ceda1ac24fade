package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

// The ledger is the source of truth for balances. The cached counters on
// users are written only by ActivatePeriod resets and explicit admin edits;
// nothing in this file touches them.
//
// Sign convention: amounts are stored positive, AWARD rows add and REDEEM
// rows subtract. The same net-balance convention applies everywhere a
// balance is read.

type AwardInput struct {
	StudentID int64
	TutorID   *int64
	Amount    int
	Reason    *string
}

// AwardPoints records an AWARD transaction in the active period. The award
// also counts as experience: UserExperience folds AWARD points rows in, so
// there is no second write to drift out of sync.
func AwardPoints(ctx context.Context, q Querier, in AwardInput) (*models.PointsTransaction, error) {
	if in.Amount <= 0 {
		return nil, apperr.New(apperr.KindValidation, "award amount must be positive")
	}
	period, err := GetActivePeriod(ctx, q)
	if err != nil {
		return nil, err
	}
	return insertPointsTx(ctx, q, in, period.ID, models.Award)
}

// RedeemPoints records a REDEEM transaction. Only item request approval
// creates these; the balance decrease is always a consequence of the new
// row, never a direct counter mutation.
func RedeemPoints(ctx context.Context, q Querier, in AwardInput, periodID int64) (*models.PointsTransaction, error) {
	if in.Amount <= 0 {
		return nil, apperr.New(apperr.KindValidation, "redeem amount must be positive")
	}
	return insertPointsTx(ctx, q, in, periodID, models.Redeem)
}

func insertPointsTx(ctx context.Context, q Querier, in AwardInput, periodID int64, typ models.TransactionType) (*models.PointsTransaction, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	t := models.PointsTransaction{
		StudentID: in.StudentID,
		TutorID:   in.TutorID,
		PeriodID:  periodID,
		Amount:    in.Amount,
		Type:      typ,
		Reason:    in.Reason,
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO points_transactions (student_id, tutor_id, period_id, amount, type, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, rolled_back, created_at`,
		t.StudentID, t.TutorID, t.PeriodID, t.Amount, string(t.Type), t.Reason,
	).Scan(&t.ID, &t.RolledBack, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert points transaction: %w", err)
	}
	return &t, nil
}

// AwardExperience records experience earned outside of point awards
// (event participation, sports attendance and the like).
func AwardExperience(ctx context.Context, q Querier, studentID int64, amount int, reason *string) (*models.ExperienceTransaction, error) {
	if amount <= 0 {
		return nil, apperr.New(apperr.KindValidation, "experience amount must be positive")
	}
	period, err := GetActivePeriod(ctx, q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	t := models.ExperienceTransaction{
		StudentID: studentID,
		PeriodID:  period.ID,
		Amount:    amount,
		Reason:    reason,
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO experience_transactions (student_id, period_id, amount, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, rolled_back, created_at`,
		t.StudentID, t.PeriodID, t.Amount, t.Reason,
	).Scan(&t.ID, &t.RolledBack, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert experience transaction: %w", err)
	}
	return &t, nil
}

// RollbackPointsTransaction reverses a transaction by flipping rolled_back.
// Rows are never deleted outside cascade user deletion.
func RollbackPointsTransaction(ctx context.Context, q Querier, id int64) error {
	return rollbackTx(ctx, q, "points_transactions", id)
}

func RollbackExperienceTransaction(ctx context.Context, q Querier, id int64) error {
	return rollbackTx(ctx, q, "experience_transactions", id)
}

func rollbackTx(ctx context.Context, q Querier, table string, id int64) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx,
		`UPDATE `+table+` SET rolled_back = TRUE WHERE id = $1 AND NOT rolled_back`, id)
	if err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := q.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperr.Newf(apperr.KindNotFound, "transaction %d not found", id)
		}
		return apperr.Newf(apperr.KindConflict, "transaction %d already rolled back", id)
	}
	return nil
}

// UserPoints computes the authoritative net point balance for one student in
// one period: sum of non-rolled-back rows, AWARD positive, REDEEM negative.
func UserPoints(ctx context.Context, q Querier, userID, periodID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var total int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'AWARD' THEN amount ELSE -amount END), 0)
		FROM points_transactions
		WHERE student_id = $1 AND period_id = $2 AND NOT rolled_back`,
		userID, periodID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return total, nil
}

// UserExperience sums non-rolled-back experience rows plus AWARD points rows
// of the same period: point awards implicitly grant equal experience.
func UserExperience(ctx context.Context, q Querier, userID, periodID int64) (int, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var total int
	err := q.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(amount) FROM experience_transactions
				WHERE student_id = $1 AND period_id = $2 AND NOT rolled_back), 0)
			+
			COALESCE((SELECT SUM(amount) FROM points_transactions
				WHERE student_id = $1 AND period_id = $2 AND type = 'AWARD' AND NOT rolled_back), 0)`,
		userID, periodID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum experience: %w", err)
	}
	return total, nil
}

// UserBalance bundles both aggregates for one student in one period.
func UserBalance(ctx context.Context, q Querier, userID, periodID int64) (*models.Balance, error) {
	points, err := UserPoints(ctx, q, userID, periodID)
	if err != nil {
		return nil, err
	}
	experience, err := UserExperience(ctx, q, userID, periodID)
	if err != nil {
		return nil, err
	}
	return &models.Balance{
		UserID:     userID,
		PeriodID:   periodID,
		Points:     points,
		Experience: experience,
	}, nil
}

// MultipleUserPoints is the batched variant of UserPoints: one grouped query
// regardless of roster size. Ids without transactions map to 0.
func MultipleUserPoints(ctx context.Context, q Querier, userIDs []int64, periodID int64) (map[int64]int, error) {
	out := make(map[int64]int, len(userIDs))
	for _, id := range userIDs {
		out[id] = 0
	}
	if len(userIDs) == 0 {
		return out, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT student_id,
			COALESCE(SUM(CASE WHEN type = 'AWARD' THEN amount ELSE -amount END), 0)
		FROM points_transactions
		WHERE student_id = ANY($1) AND period_id = $2 AND NOT rolled_back
		GROUP BY student_id`,
		pq.Array(userIDs), periodID)
	if err != nil {
		return nil, fmt.Errorf("sum points batch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		out[id] = total
	}
	return out, rows.Err()
}

// MultipleUserExperience batches UserExperience the same way.
func MultipleUserExperience(ctx context.Context, q Querier, userIDs []int64, periodID int64) (map[int64]int, error) {
	out := make(map[int64]int, len(userIDs))
	for _, id := range userIDs {
		out[id] = 0
	}
	if len(userIDs) == 0 {
		return out, nil
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT student_id, SUM(amount) FROM (
			SELECT student_id, amount FROM experience_transactions
			WHERE student_id = ANY($1) AND period_id = $2 AND NOT rolled_back
			UNION ALL
			SELECT student_id, amount FROM points_transactions
			WHERE student_id = ANY($1) AND period_id = $2 AND type = 'AWARD' AND NOT rolled_back
		) t
		GROUP BY student_id`,
		pq.Array(userIDs), periodID)
	if err != nil {
		return nil, fmt.Errorf("sum experience batch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		out[id] = total
	}
	return out, rows.Err()
}

// PointsHistory lists a student's transactions for a period, newest first.
// Rolled-back rows are included so reversals stay visible.
func PointsHistory(ctx context.Context, q Querier, userID, periodID int64) ([]models.PointsTransaction, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, student_id, tutor_id, period_id, amount, type, reason, rolled_back, created_at
		FROM points_transactions
		WHERE student_id = $1 AND period_id = $2
		ORDER BY created_at DESC, id DESC`,
		userID, periodID)
	if err != nil {
		return nil, fmt.Errorf("points history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.PointsTransaction
	for rows.Next() {
		var t models.PointsTransaction
		var typ string
		if err := rows.Scan(&t.ID, &t.StudentID, &t.TutorID, &t.PeriodID, &t.Amount, &typ, &t.Reason, &t.RolledBack, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = models.TransactionType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetPointsTransaction is used by rollback authorization checks.
func GetPointsTransaction(ctx context.Context, q Querier, id int64) (*models.PointsTransaction, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var t models.PointsTransaction
	var typ string
	err := q.QueryRowContext(ctx, `
		SELECT id, student_id, tutor_id, period_id, amount, type, reason, rolled_back, created_at
		FROM points_transactions WHERE id = $1`, id,
	).Scan(&t.ID, &t.StudentID, &t.TutorID, &t.PeriodID, &t.Amount, &typ, &t.Reason, &t.RolledBack, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "transaction %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get points transaction: %w", err)
	}
	t.Type = models.TransactionType(typ)
	return &t, nil
}
