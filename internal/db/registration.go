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

func SubmitRegistration(ctx context.Context, q Querier, name, email string, role models.Role) (*models.RegistrationRequest, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, apperr.New(apperr.KindValidation, "name and email are required")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	req := models.RegistrationRequest{
		Name: name, Email: email, RequestedRole: role, Status: models.RequestPending,
	}
	err := q.QueryRowContext(ctx, `
		INSERT INTO registration_requests (name, email, requested_role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		name, email, string(role)).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("submit registration: %w", err)
	}
	return &req, nil
}

func ListPendingRegistrations(ctx context.Context, q Querier) ([]models.RegistrationRequest, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, name, email, requested_role, status, processed_by, created_at, processed_at
		FROM registration_requests WHERE status = 'PENDING' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.RegistrationRequest
	for rows.Next() {
		var r models.RegistrationRequest
		var role, status string
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &role, &status,
			&r.ProcessedBy, &r.CreatedAt, &r.ProcessedAt); err != nil {
			return nil, err
		}
		r.RequestedRole = models.Role(role)
		r.Status = models.RequestStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProcessRegistration approves or rejects a pending request. Approval
// creates the user row in the same transaction; transitions are one-way.
func ProcessRegistration(ctx context.Context, database *sql.DB, requestID, adminID int64, approve bool) (*models.User, error) {
	ctx, cancel := ctxutil.WithTimeout(ctx, 2*ctxutil.DefaultDBTimeout)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin process registration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var r models.RegistrationRequest
	var role, status string
	err = tx.QueryRowContext(ctx, `
		SELECT id, name, email, requested_role, status
		FROM registration_requests WHERE id = $1 FOR UPDATE`, requestID,
	).Scan(&r.ID, &r.Name, &r.Email, &role, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "registration request %d not found", requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock registration: %w", err)
	}
	if models.RequestStatus(status) != models.RequestPending {
		return nil, apperr.Newf(apperr.KindConflict, "registration request %d already %s", requestID, status)
	}

	var created *models.User
	newStatus := models.RequestRejected
	if approve {
		newStatus = models.RequestApproved
		created, err = CreateUser(ctx, tx, r.Name, r.Email, models.Role(role))
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE registration_requests
		SET status = $1, processed_by = $2, processed_at = now()
		WHERE id = $3`,
		string(newStatus), adminID, requestID); err != nil {
		return nil, fmt.Errorf("process registration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit process registration: %w", err)
	}
	return created, nil
}
