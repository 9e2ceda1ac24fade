package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

func CreateStudentNote(ctx context.Context, q Querier, studentID, authorID int64, body string) (*models.StudentNote, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperr.New(apperr.KindValidation, "note body is required")
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	n := models.StudentNote{StudentID: studentID, AuthorID: authorID, Body: body}
	err := q.QueryRowContext(ctx, `
		INSERT INTO student_notes (student_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		studentID, authorID, body).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &n, nil
}

func ListStudentNotes(ctx context.Context, q Querier, studentID int64) ([]models.StudentNote, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, student_id, author_id, body, created_at
		FROM student_notes WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.StudentNote
	for rows.Next() {
		var n models.StudentNote
		if err := rows.Scan(&n.ID, &n.StudentID, &n.AuthorID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
