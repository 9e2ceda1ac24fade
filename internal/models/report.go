package models

import "time"

type StudentNote struct {
	ID        int64     `db:"id"`
	StudentID int64     `db:"student_id"`
	AuthorID  int64     `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// StudentReport is the weekly review a tutor writes for a student.
// One report per (student, author, period, week).
type StudentReport struct {
	ID        int64     `db:"id"`
	StudentID int64     `db:"student_id"`
	AuthorID  int64     `db:"author_id"`
	PeriodID  int64     `db:"period_id"`
	Week      int       `db:"week"` // ISO week number
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

type Wish struct {
	ID        int64     `db:"id"`
	AuthorID  int64     `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// PointEarningCard is a predefined award: title plus a fixed point value.
type PointEarningCard struct {
	ID        int64  `db:"id"`
	Title     string `db:"title"`
	Points    int    `db:"points"`
	CreatedBy int64  `db:"created_by"`
	IsActive  bool   `db:"is_active"`
}
