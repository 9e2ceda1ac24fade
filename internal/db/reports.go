package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/ctxutil"
	"github.com/eduraapp/edura-backend/internal/models"
)

// CreateStudentReport files the weekly review, tagged with the active period
// and the ISO week. One report per (student, author, period, week).
func CreateStudentReport(ctx context.Context, q Querier, studentID, authorID int64, week int, content string) (*models.StudentReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.New(apperr.KindValidation, "report content is required")
	}
	if week < 1 || week > 53 {
		return nil, apperr.Newf(apperr.KindValidation, "week %d out of range", week)
	}
	period, err := GetActivePeriod(ctx, q)
	if err != nil {
		return nil, err
	}
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	r := models.StudentReport{
		StudentID: studentID, AuthorID: authorID, PeriodID: period.ID,
		Week: week, Content: content,
	}
	err = q.QueryRowContext(ctx, `
		INSERT INTO student_reports (student_id, author_id, period_id, week, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		studentID, authorID, period.ID, week, content).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Newf(apperr.KindConflict,
				"report for student %d week %d already filed", studentID, week)
		}
		return nil, fmt.Errorf("create report: %w", err)
	}
	return &r, nil
}

func ListStudentReports(ctx context.Context, q Querier, studentID, periodID int64) ([]models.StudentReport, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, `
		SELECT id, student_id, author_id, period_id, week, content, created_at
		FROM student_reports
		WHERE student_id = $1 AND period_id = $2
		ORDER BY week`, studentID, periodID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.StudentReport
	for rows.Next() {
		var r models.StudentReport
		if err := rows.Scan(&r.ID, &r.StudentID, &r.AuthorID, &r.PeriodID, &r.Week,
			&r.Content, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
