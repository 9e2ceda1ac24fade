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

const userColumns = `id, name, email, role, points, experience, tutor_id, classroom_id, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Points, &u.Experience,
		&u.TutorID, &u.ClassroomID, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateUser(ctx context.Context, q Querier, name, email string, role models.Role) (*models.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, apperr.New(apperr.KindValidation, "name and email are required")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	row := q.QueryRowContext(ctx, `
		INSERT INTO users (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		name, email, string(role))
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Newf(apperr.KindConflict, "email %s already registered", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func GetUserByID(ctx context.Context, q Querier, id int64) (*models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	u, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "user %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func ListUsersByRole(ctx context.Context, q Querier, role models.Role) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND is_active ORDER BY LOWER(name)`,
		string(role))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// ListClassroomStudents returns the roster of one classroom.
func ListClassroomStudents(ctx context.Context, q Querier, classroomID int64) ([]models.User, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE classroom_id = $1 AND role = 'STUDENT' ORDER BY LOWER(name)`,
		classroomID)
	if err != nil {
		return nil, fmt.Errorf("list classroom students: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func SetUserRole(ctx context.Context, q Querier, id int64, role models.Role) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return requireRow(res, id)
}

func SetUserActive(ctx context.Context, q Querier, id int64, active bool) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireRow(res, id)
}

// SetCachedCounters is the only writer of the denormalized counters besides
// the period reset. Balances shown to students always come from the ledger.
func SetCachedCounters(ctx context.Context, q Querier, id int64, points, experience int) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	res, err := q.ExecContext(ctx,
		`UPDATE users SET points = $1, experience = $2 WHERE id = $3`, points, experience, id)
	if err != nil {
		return fmt.Errorf("set cached counters: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Newf(apperr.KindNotFound, "user %d not found", id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// 23505 = unique_violation; both drivers expose the code in the message.
	return err != nil && (strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyViolation(err error) bool {
	// 23503 = foreign_key_violation.
	return err != nil && (strings.Contains(err.Error(), "23503") ||
		strings.Contains(err.Error(), "foreign key"))
}
