package models

import "time"

type TransactionType string

const (
	Award  TransactionType = "AWARD"
	Redeem TransactionType = "REDEEM"
)

// PointsTransaction amounts are stored positive for both types; REDEEM rows
// subtract during aggregation. Reversal flips RolledBack, rows are never
// deleted outside of full user deletion.
type PointsTransaction struct {
	ID         int64           `db:"id"`
	StudentID  int64           `db:"student_id"`
	TutorID    *int64          `db:"tutor_id"`
	PeriodID   int64           `db:"period_id"`
	Amount     int             `db:"amount"`
	Type       TransactionType `db:"type"`
	Reason     *string         `db:"reason"`
	RolledBack bool            `db:"rolled_back"`
	CreatedAt  time.Time       `db:"created_at"`
}

type ExperienceTransaction struct {
	ID         int64     `db:"id"`
	StudentID  int64     `db:"student_id"`
	PeriodID   int64     `db:"period_id"`
	Amount     int       `db:"amount"`
	Reason     *string   `db:"reason"`
	RolledBack bool      `db:"rolled_back"`
	CreatedAt  time.Time `db:"created_at"`
}

// Balance is a computed period-scoped standing, never persisted.
type Balance struct {
	UserID     int64 `json:"userId"`
	PeriodID   int64 `json:"periodId"`
	Points     int   `json:"points"`
	Experience int   `json:"experience"`
}
