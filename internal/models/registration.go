package models

import "time"

// RegistrationRequest survives deletion of the processing admin: the row is
// kept with processed_by nulled.
type RegistrationRequest struct {
	ID            int64         `db:"id"`
	Name          string        `db:"name"`
	Email         string        `db:"email"`
	RequestedRole Role          `db:"requested_role"`
	Status        RequestStatus `db:"status"`
	ProcessedBy   *int64        `db:"processed_by"`
	CreatedAt     time.Time     `db:"created_at"`
	ProcessedAt   *time.Time    `db:"processed_at"`
}
