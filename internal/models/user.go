package models

import "time"

type Role string

const (
	Student Role = "STUDENT"
	Tutor   Role = "TUTOR"
	Asistan Role = "ASISTAN"
	Admin   Role = "ADMIN"
	Board   Role = "BOARD"
	Athlete Role = "ATHLETE"
)

// RewardRoles are the roles whose cached counters are zeroed on a
// period reset.
var RewardRoles = []Role{Student, Tutor, Asistan}

func (r Role) Valid() bool {
	switch r {
	case Student, Tutor, Asistan, Admin, Board, Athlete:
		return true
	}
	return false
}

type User struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Email       string     `db:"email"`
	Role        Role       `db:"role"`
	Points      int        `db:"points"`     // denormalized cache, not the source of truth
	Experience  int        `db:"experience"` // denormalized cache, not the source of truth
	TutorID     *int64     `db:"tutor_id"`
	ClassroomID *int64     `db:"classroom_id"`
	IsActive    bool       `db:"is_active"`
	CreatedAt   time.Time  `db:"created_at"`
}

type Classroom struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	TutorID int64  `db:"tutor_id"`
}
