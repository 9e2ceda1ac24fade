package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/metrics"
)

// cascadeSteps spells out the deletion dependency order as data, leaves
// first. Every statement takes the target user id as $1.
var cascadeSteps = []struct {
	name string
	stmt string
}{
	{"points_transactions", `DELETE FROM points_transactions WHERE student_id = $1 OR tutor_id = $1`},
	{"experience_transactions", `DELETE FROM experience_transactions WHERE student_id = $1`},
	{"item_requests", `DELETE FROM item_requests WHERE student_id = $1 OR processed_by = $1`},
	{"event_participants", `DELETE FROM event_participants WHERE user_id = $1`},
	{"event_participants_of_own_events", `DELETE FROM event_participants
		WHERE event_id IN (SELECT id FROM events WHERE created_by = $1 OR tutor_id = $1)`},
	{"events", `DELETE FROM events WHERE created_by = $1 OR tutor_id = $1`},
	// Registration history is kept, only the dangling reference is dropped.
	{"registration_requests_null", `UPDATE registration_requests SET processed_by = NULL WHERE processed_by = $1`},
	{"student_notes", `DELETE FROM student_notes WHERE student_id = $1 OR author_id = $1`},
	{"student_reports", `DELETE FROM student_reports WHERE student_id = $1 OR author_id = $1`},
	{"wishes", `DELETE FROM wishes WHERE author_id = $1`},
	{"point_earning_cards", `DELETE FROM point_earning_cards WHERE created_by = $1`},
	{"detach_tutored_students", `UPDATE users SET tutor_id = NULL, classroom_id = NULL WHERE tutor_id = $1`},
	{"detach_classroom_members", `UPDATE users SET classroom_id = NULL
		WHERE classroom_id IN (SELECT id FROM classrooms WHERE tutor_id = $1)`},
	{"classrooms", `DELETE FROM classrooms WHERE tutor_id = $1`},
	{"users", `DELETE FROM users WHERE id = $1`},
}

// DeleteUserCascade removes a user and every record referring to it in one
// all-or-nothing transaction. The deadline covers the whole cascade; hitting
// it surfaces as a retryable timeout, distinct from the precondition errors.
func DeleteUserCascade(ctx context.Context, database *sql.DB, targetID, callerID int64, timeout time.Duration) error {
	if targetID == callerID {
		return apperr.New(apperr.KindConflict, "cannot delete your own account")
	}

	// The deadline spans every cascade step, not the per-query default.
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, targetID).Scan(&exists); err != nil {
		return classifyCascadeErr("check user", err)
	}
	if !exists {
		return apperr.Newf(apperr.KindNotFound, "user %d not found", targetID)
	}

	for _, step := range cascadeSteps {
		if _, err := tx.ExecContext(ctx, step.stmt, targetID); err != nil {
			return classifyCascadeErr(step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classifyCascadeErr("commit", err)
	}
	metrics.CascadeDeleteDuration.Observe(time.Since(start).Seconds())
	return nil
}

func classifyCascadeErr(step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, "cascade delete timed out at "+step+", retry", err)
	}
	return fmt.Errorf("cascade delete %s: %w", step, err)
}
