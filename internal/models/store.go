package models

import "time"

type StoreItem struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Cost     int    `db:"cost"`
	Stock    *int   `db:"stock"` // nil means unlimited
	IsActive bool   `db:"is_active"`
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// ItemRequest transitions are one-way: PENDING -> APPROVED|REJECTED.
type ItemRequest struct {
	ID          int64         `db:"id"`
	StudentID   int64         `db:"student_id"`
	ItemID      int64         `db:"item_id"`
	PeriodID    int64         `db:"period_id"`
	Status      RequestStatus `db:"status"`
	ProcessedBy *int64        `db:"processed_by"`
	CreatedAt   time.Time     `db:"created_at"`
	ProcessedAt *time.Time    `db:"processed_at"`
}

type ItemRequestWithItem struct {
	ItemRequest
	ItemName    string `db:"item_name"`
	ItemCost    int    `db:"item_cost"`
	StudentName string `db:"student_name"`
}
