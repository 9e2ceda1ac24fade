package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

func GetClassroomByTutor(ctx context.Context, q Querier, tutorID int64) (*models.Classroom, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var c models.Classroom
	err := q.QueryRowContext(ctx,
		`SELECT id, name, tutor_id FROM classrooms WHERE tutor_id = $1`, tutorID,
	).Scan(&c.ID, &c.Name, &c.TutorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "tutor %d has no classroom", tutorID)
	}
	if err != nil {
		return nil, fmt.Errorf("get classroom: %w", err)
	}
	return &c, nil
}

// AssignTutor sets a student's tutor and classroom together so the two
// columns cannot drift apart. The tutor's classroom is created on first
// assignment. tutorID nil detaches the student from both.
func AssignTutor(ctx context.Context, database *sql.DB, studentID int64, tutorID *int64) error {
	ctx, cancel := ctxutil.WithTimeout(ctx, 2*ctxutil.DefaultDBTimeout)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assign tutor: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	student, err := GetUserByID(ctx, tx, studentID)
	if err != nil {
		return err
	}
	if student.Role != models.Student {
		return apperr.Newf(apperr.KindConflict, "user %d is not a student", studentID)
	}

	if tutorID == nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET tutor_id = NULL, classroom_id = NULL WHERE id = $1`, studentID); err != nil {
			return fmt.Errorf("detach student: %w", err)
		}
		return tx.Commit()
	}

	tutor, err := GetUserByID(ctx, tx, *tutorID)
	if err != nil {
		return err
	}
	if tutor.Role != models.Tutor {
		return apperr.Newf(apperr.KindConflict, "user %d is not a tutor", *tutorID)
	}

	var classroomID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM classrooms WHERE tutor_id = $1`, *tutorID).Scan(&classroomID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO classrooms (name, tutor_id) VALUES ($1, $2) RETURNING id`,
			tutor.Name, *tutorID).Scan(&classroomID)
	}
	if err != nil {
		return fmt.Errorf("classroom for tutor %d: %w", *tutorID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET tutor_id = $1, classroom_id = $2 WHERE id = $3`,
		*tutorID, classroomID, studentID); err != nil {
		return fmt.Errorf("assign student: %w", err)
	}
	return tx.Commit()
}
