//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/testutil/testdb"
)

func TestUserPoints_NetBalanceExcludesRolledBack(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Ayşe", "STUDENT")
	adminID := mustSeedUser(t, h.DB, "Admin", "ADMIN")
	periodID := mustActivePeriod(t, h.DB)

	// +100 AWARD
	mustAward(t, h.DB, studentID, 100)
	// -30 REDEEM
	if _, err := db.RedeemPoints(ctx, h.DB, db.AwardInput{
		StudentID: studentID, TutorID: ptrInt64(adminID), Amount: 30,
	}, periodID); err != nil {
		t.Fatal(err)
	}
	// +50 AWARD, then rolled back
	rb := mustAward(t, h.DB, studentID, 50)
	if err := db.RollbackPointsTransaction(ctx, h.DB, rb.ID); err != nil {
		t.Fatal(err)
	}

	got, err := db.UserPoints(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if got != 70 {
		t.Fatalf("UserPoints = %d, want 70", got)
	}

	// Reading twice with no writes in between is identical.
	again, err := db.UserPoints(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Fatalf("second read %d != first read %d", again, got)
	}
}

func TestUserExperience_FoldsInAwards(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Mehmet", "STUDENT")
	periodID := mustActivePeriod(t, h.DB)

	mustAward(t, h.DB, studentID, 40) // grants 40 experience implicitly
	if _, err := db.AwardExperience(ctx, h.DB, studentID, 25, ptrString("event")); err != nil {
		t.Fatal(err)
	}
	// REDEEM does not reduce experience.
	if _, err := db.RedeemPoints(ctx, h.DB, db.AwardInput{
		StudentID: studentID, Amount: 10,
	}, periodID); err != nil {
		t.Fatal(err)
	}

	got, err := db.UserExperience(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if got != 65 {
		t.Fatalf("UserExperience = %d, want 65", got)
	}
}

func TestMultipleUserPoints_MatchesSingle(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	periodID := mustActivePeriod(t, h.DB)
	var ids []int64
	for _, amount := range []int{10, 250, 0, 31} {
		id := mustSeedUser(t, h.DB, "Student", "STUDENT")
		ids = append(ids, id)
		if amount > 0 {
			mustAward(t, h.DB, id, amount)
		}
	}

	batch, err := db.MultipleUserPoints(ctx, h.DB, ids, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != len(ids) {
		t.Fatalf("batch has %d entries, want %d", len(batch), len(ids))
	}
	for _, id := range ids {
		single, err := db.UserPoints(ctx, h.DB, id, periodID)
		if err != nil {
			t.Fatal(err)
		}
		if batch[id] != single {
			t.Fatalf("user %d: batch %d != single %d", id, batch[id], single)
		}
	}

	expBatch, err := db.MultipleUserExperience(ctx, h.DB, ids, periodID)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range ids {
		single, err := db.UserExperience(ctx, h.DB, id, periodID)
		if err != nil {
			t.Fatal(err)
		}
		if expBatch[id] != single {
			t.Fatalf("user %d: experience batch %d != single %d", id, expBatch[id], single)
		}
	}
}

func TestAwardPoints_RequiresActivePeriod(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	studentID := mustSeedUser(t, h.DB, "Zeynep", "STUDENT")
	_, err = db.AwardPoints(context.Background(), h.DB, db.AwardInput{
		StudentID: studentID, Amount: 10,
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected no-active-period conflict, got %v", err)
	}
}

func TestRollback_Twice(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Ali", "STUDENT")
	mustActivePeriod(t, h.DB)
	tx := mustAward(t, h.DB, studentID, 20)

	if err := db.RollbackPointsTransaction(ctx, h.DB, tx.ID); err != nil {
		t.Fatal(err)
	}
	err = db.RollbackPointsTransaction(ctx, h.DB, tx.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second rollback should conflict, got %v", err)
	}
	err = db.RollbackPointsTransaction(ctx, h.DB, 999999)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing transaction should be not found, got %v", err)
	}
}

func TestUserPoints_PeriodScoped(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Fatma", "STUDENT")
	firstPeriod := mustActivePeriod(t, h.DB)
	mustAward(t, h.DB, studentID, 100)

	secondPeriod := mustActivePeriod(t, h.DB)
	mustAward(t, h.DB, studentID, 5)

	got, err := db.UserPoints(ctx, h.DB, studentID, secondPeriod)
	if err != nil {
		t.Fatal(err)
	}
	if got != 5 {
		t.Fatalf("second period balance = %d, want 5", got)
	}
	old, err := db.UserPoints(ctx, h.DB, studentID, firstPeriod)
	if err != nil {
		t.Fatal(err)
	}
	if old != 100 {
		t.Fatalf("first period balance = %d, want 100", old)
	}
}

func TestRollbackExperienceTransaction(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Emre", "STUDENT")
	periodID := mustActivePeriod(t, h.DB)

	tx, err := db.AwardExperience(ctx, h.DB, studentID, 30, ptrString("tournament"))
	if err != nil {
		t.Fatal(err)
	}
	if err := db.RollbackExperienceTransaction(ctx, h.DB, tx.ID); err != nil {
		t.Fatal(err)
	}

	got, err := db.UserExperience(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("experience after rollback = %d, want 0", got)
	}

	err = db.RollbackExperienceTransaction(ctx, h.DB, tx.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second rollback should conflict, got %v", err)
	}
	err = db.RollbackExperienceTransaction(ctx, h.DB, 999999)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing transaction should be not found, got %v", err)
	}
}

func TestUserBalance_MatchesAggregates(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Selin", "STUDENT")
	periodID := mustActivePeriod(t, h.DB)
	mustAward(t, h.DB, studentID, 60)
	if _, err := db.AwardExperience(ctx, h.DB, studentID, 15, nil); err != nil {
		t.Fatal(err)
	}

	bal, err := db.UserBalance(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if bal.UserID != studentID || bal.PeriodID != periodID {
		t.Fatalf("balance identifies %d/%d, want %d/%d", bal.UserID, bal.PeriodID, studentID, periodID)
	}
	if bal.Points != 60 || bal.Experience != 75 {
		t.Fatalf("balance = %d points / %d experience, want 60 / 75", bal.Points, bal.Experience)
	}
}

func TestGetPointsTransaction(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Kerem", "STUDENT")
	mustActivePeriod(t, h.DB)
	created := mustAward(t, h.DB, studentID, 12)

	got, err := db.GetPointsTransaction(ctx, h.DB, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.StudentID != studentID || got.Amount != 12 || got.Type != "AWARD" {
		t.Fatalf("unexpected transaction %+v", got)
	}

	_, err = db.GetPointsTransaction(ctx, h.DB, 999999)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing transaction should be not found, got %v", err)
	}
}
