package models

import "time"

type Event struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	StartsAt  time.Time `db:"starts_at"`
	PeriodID  int64     `db:"period_id"`
	CreatedBy int64     `db:"created_by"`
	TutorID   *int64    `db:"tutor_id"` // set when the event targets one tutor's classroom
}

type EventWithCount struct {
	Event
	Participants int `db:"participants"`
}

type EventParticipant struct {
	EventID  int64     `db:"event_id"`
	UserID   int64     `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}
