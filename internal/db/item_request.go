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

// CreateItemRequest files a PENDING redemption. The balance check here is
// advisory only; approval re-validates inside its own transaction because
// the balance may change between filing and approval.
func CreateItemRequest(ctx context.Context, database *sql.DB, studentID, itemID int64) (*models.ItemRequest, error) {
	item, err := GetStoreItem(ctx, database, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, apperr.Newf(apperr.KindConflict, "store item %d is not available", itemID)
	}
	period, err := GetActivePeriod(ctx, database)
	if err != nil {
		return nil, err
	}
	balance, err := UserPoints(ctx, database, studentID, period.ID)
	if err != nil {
		return nil, err
	}
	if balance < item.Cost {
		return nil, apperr.Newf(apperr.KindConflict,
			"insufficient balance: have %d, item costs %d", balance, item.Cost)
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	req := models.ItemRequest{
		StudentID: studentID,
		ItemID:    itemID,
		PeriodID:  period.ID,
		Status:    models.RequestPending,
	}
	err = database.QueryRowContext(ctx, `
		INSERT INTO item_requests (student_id, item_id, period_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		studentID, itemID, period.ID,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create item request: %w", err)
	}
	return &req, nil
}

// ApproveItemRequest is the only producer of REDEEM transactions. The student
// row is locked FOR UPDATE so two concurrent approvals against a balance that
// covers only one of them cannot both pass the re-check: the second waits on
// the lock and then sees the first one's REDEEM row.
func ApproveItemRequest(ctx context.Context, database *sql.DB, requestID, adminID int64) error {
	ctx, cancel := ctxutil.WithTimeout(ctx, 2*ctxutil.DefaultDBTimeout)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	req, err := lockItemRequest(ctx, tx, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return apperr.Newf(apperr.KindConflict, "request %d already %s", requestID, req.Status)
	}

	if _, err := tx.ExecContext(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, req.StudentID); err != nil {
		return fmt.Errorf("lock student: %w", err)
	}

	item, err := GetStoreItem(ctx, tx, req.ItemID)
	if err != nil {
		return err
	}

	period, err := GetActivePeriod(ctx, tx)
	if err != nil {
		return err
	}
	balance, err := UserPoints(ctx, tx, req.StudentID, period.ID)
	if err != nil {
		return err
	}
	if balance < item.Cost {
		return apperr.Newf(apperr.KindConflict,
			"insufficient balance: have %d, item costs %d", balance, item.Cost)
	}

	reason := "store: " + item.Name
	if _, err := RedeemPoints(ctx, tx, AwardInput{
		StudentID: req.StudentID,
		TutorID:   &adminID,
		Amount:    item.Cost,
		Reason:    &reason,
	}, period.ID); err != nil {
		return err
	}

	if item.Stock != nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE store_items SET stock = stock - 1 WHERE id = $1 AND stock > 0`, item.ID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.Newf(apperr.KindConflict, "store item %d is out of stock", item.ID)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE item_requests
		SET status = 'APPROVED', processed_by = $1, processed_at = now()
		WHERE id = $2`,
		adminID, requestID); err != nil {
		return fmt.Errorf("approve request: %w", err)
	}
	return tx.Commit()
}

// RejectItemRequest moves PENDING to REJECTED. Both outcomes are terminal.
func RejectItemRequest(ctx context.Context, database *sql.DB, requestID, adminID int64) error {
	ctx, cancel := ctxutil.WithTimeout(ctx, 2*ctxutil.DefaultDBTimeout)
	defer cancel()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reject: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	req, err := lockItemRequest(ctx, tx, requestID)
	if err != nil {
		return err
	}
	if req.Status != models.RequestPending {
		return apperr.Newf(apperr.KindConflict, "request %d already %s", requestID, req.Status)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE item_requests
		SET status = 'REJECTED', processed_by = $1, processed_at = now()
		WHERE id = $2`,
		adminID, requestID); err != nil {
		return fmt.Errorf("reject request: %w", err)
	}
	return tx.Commit()
}

func lockItemRequest(ctx context.Context, tx *sql.Tx, id int64) (*models.ItemRequest, error) {
	var req models.ItemRequest
	var status string
	err := tx.QueryRowContext(ctx, `
		SELECT id, student_id, item_id, period_id, status, processed_by, created_at, processed_at
		FROM item_requests WHERE id = $1 FOR UPDATE`, id,
	).Scan(&req.ID, &req.StudentID, &req.ItemID, &req.PeriodID, &status,
		&req.ProcessedBy, &req.CreatedAt, &req.ProcessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "item request %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock item request: %w", err)
	}
	req.Status = models.RequestStatus(status)
	return &req, nil
}

func ListPendingItemRequests(ctx context.Context, q Querier) ([]models.ItemRequestWithItem, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT r.id, r.student_id, r.item_id, r.period_id, r.status, r.processed_by,
			r.created_at, r.processed_at, i.name, i.cost, u.name
		FROM item_requests r
		JOIN store_items i ON i.id = r.item_id
		JOIN users u ON u.id = r.student_id
		WHERE r.status = 'PENDING'
		ORDER BY r.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.ItemRequestWithItem
	for rows.Next() {
		var r models.ItemRequestWithItem
		var status string
		if err := rows.Scan(&r.ID, &r.StudentID, &r.ItemID, &r.PeriodID, &status,
			&r.ProcessedBy, &r.CreatedAt, &r.ProcessedAt, &r.ItemName, &r.ItemCost, &r.StudentName); err != nil {
			return nil, err
		}
		r.Status = models.RequestStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}
