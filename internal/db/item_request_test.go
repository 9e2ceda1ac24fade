//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"sync"
	"testing"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/models"
	"github.com/eduraapp/edura-backend/internal/testutil/testdb"
)

func TestApproveItemRequest_CreatesRedeem(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	adminID := mustSeedUser(t, h.DB, "Admin", models.Admin)
	studentID := mustSeedUser(t, h.DB, "Ali", models.Student)
	periodID := mustActivePeriod(t, h.DB)
	mustAward(t, h.DB, studentID, 100)

	item, err := db.CreateStoreItem(ctx, h.DB, "Kitap", 60, nil)
	if err != nil {
		t.Fatal(err)
	}
	req, err := db.CreateItemRequest(ctx, h.DB, studentID, item.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.ApproveItemRequest(ctx, h.DB, req.ID, adminID); err != nil {
		t.Fatal(err)
	}

	balance, err := db.UserPoints(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 40 {
		t.Fatalf("balance after approval = %d, want 40", balance)
	}

	// The decrease is a ledger row, not a counter mutation.
	history, err := db.PointsHistory(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	var redeems int
	for _, tx := range history {
		if tx.Type == models.Redeem && tx.Amount == 60 {
			redeems++
		}
	}
	if redeems != 1 {
		t.Fatalf("expected exactly one REDEEM row of 60, got %d", redeems)
	}

	// Approval is terminal.
	if err := db.ApproveItemRequest(ctx, h.DB, req.ID, adminID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second approval should conflict, got %v", err)
	}
}

func TestCreateItemRequest_InsufficientBalance(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	studentID := mustSeedUser(t, h.DB, "Ali", models.Student)
	mustActivePeriod(t, h.DB)
	mustAward(t, h.DB, studentID, 10)

	item, err := db.CreateStoreItem(ctx, h.DB, "Kulaklık", 300, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.CreateItemRequest(ctx, h.DB, studentID, item.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected insufficient-balance conflict, got %v", err)
	}
}

func TestApproveItemRequest_RaceOneWins(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	adminID := mustSeedUser(t, h.DB, "Admin", models.Admin)
	studentID := mustSeedUser(t, h.DB, "Ali", models.Student)
	periodID := mustActivePeriod(t, h.DB)
	mustAward(t, h.DB, studentID, 100)

	item, err := db.CreateStoreItem(ctx, h.DB, "Sinema Bileti", 60, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Two pending requests; the balance covers only one of them.
	reqA, err := db.CreateItemRequest(ctx, h.DB, studentID, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	reqB, err := db.CreateItemRequest(ctx, h.DB, studentID, item.ID)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{reqA.ID, reqB.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			errs[i] = db.ApproveItemRequest(ctx, h.DB, id, adminID)
		}(i, id)
	}
	wg.Wait()

	var approved, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			approved++
		case apperr.Is(err, apperr.KindConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if approved != 1 || conflicted != 1 {
		t.Fatalf("approved=%d conflicted=%d, want exactly one of each", approved, conflicted)
	}

	balance, err := db.UserPoints(ctx, h.DB, studentID, periodID)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 40 {
		t.Fatalf("balance = %d, want 40 (one redemption)", balance)
	}
}

func TestItemRequest_OutOfStock(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	adminID := mustSeedUser(t, h.DB, "Admin", models.Admin)
	studentID := mustSeedUser(t, h.DB, "Ali", models.Student)
	mustActivePeriod(t, h.DB)
	mustAward(t, h.DB, studentID, 500)

	one := 1
	item, err := db.CreateStoreItem(ctx, h.DB, "Kupa", 50, &one)
	if err != nil {
		t.Fatal(err)
	}
	first, err := db.CreateItemRequest(ctx, h.DB, studentID, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.CreateItemRequest(ctx, h.DB, studentID, item.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.ApproveItemRequest(ctx, h.DB, first.ID, adminID); err != nil {
		t.Fatal(err)
	}
	if err := db.ApproveItemRequest(ctx, h.DB, second.ID, adminID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected out-of-stock conflict, got %v", err)
	}
}
