package models

import "time"

type PeriodStatus string

const (
	PeriodActive   PeriodStatus = "ACTIVE"
	PeriodInactive PeriodStatus = "INACTIVE"
)

type Period struct {
	ID        int64        `db:"id"`
	Name      string       `db:"name"`
	StartDate time.Time    `db:"start_date"`
	EndDate   time.Time    `db:"end_date"`
	Status    PeriodStatus `db:"status"`
}
