//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/models"
)

func mustSeedUser(t *testing.T, database *sql.DB, name string, role models.Role) int64 {
	t.Helper()
	email := fmt.Sprintf("%s-%d@test.local", role, rand.Int63())
	u, err := db.CreateUser(context.Background(), database, name, email, role)
	if err != nil {
		t.Fatal(err)
	}
	return u.ID
}

func mustActivePeriod(t *testing.T, database *sql.DB) int64 {
	t.Helper()
	ctx := context.Background()
	today := time.Now().Truncate(24 * time.Hour)
	id, err := db.CreatePeriod(ctx, database, models.Period{
		Name:      "Test Period",
		StartDate: today,
		EndDate:   today.AddDate(0, 3, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ActivatePeriod(ctx, database, id, false); err != nil {
		t.Fatal(err)
	}
	return id
}

func mustAward(t *testing.T, database *sql.DB, studentID int64, amount int) *models.PointsTransaction {
	t.Helper()
	tx, err := db.AwardPoints(context.Background(), database, db.AwardInput{
		StudentID: studentID,
		Amount:    amount,
	})
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func ptrInt64(v int64) *int64    { return &v }
func ptrString(v string) *string { return &v }
