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

func TestProcessRegistration_ApproveCreatesUser(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	adminID := mustSeedUser(t, h.DB, "Admin", "ADMIN")
	req, err := db.SubmitRegistration(ctx, h.DB, "Yeni Öğrenci", "yeni@test.local", "STUDENT")
	if err != nil {
		t.Fatal(err)
	}

	created, err := db.ProcessRegistration(ctx, h.DB, req.ID, adminID, true)
	if err != nil {
		t.Fatal(err)
	}
	if created == nil || created.Email != "yeni@test.local" || created.Role != "STUDENT" {
		t.Fatalf("approval should create the user, got %+v", created)
	}

	pending, err := db.ListPendingRegistrations(ctx, h.DB)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pending {
		if p.ID == req.ID {
			t.Fatal("approved request still listed as pending")
		}
	}
}

func TestProcessRegistration_TransitionsAreTerminal(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	adminID := mustSeedUser(t, h.DB, "Admin", "ADMIN")

	rejected, err := db.SubmitRegistration(ctx, h.DB, "Red", "red@test.local", "TUTOR")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.ProcessRegistration(ctx, h.DB, rejected.ID, adminID, false); err != nil {
		t.Fatal(err)
	}

	// Rejection is final, even for a later approval attempt.
	_, err = db.ProcessRegistration(ctx, h.DB, rejected.ID, adminID, true)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("processing a rejected request should conflict, got %v", err)
	}

	approved, err := db.SubmitRegistration(ctx, h.DB, "Onay", "onay@test.local", "STUDENT")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.ProcessRegistration(ctx, h.DB, approved.ID, adminID, true); err != nil {
		t.Fatal(err)
	}
	_, err = db.ProcessRegistration(ctx, h.DB, approved.ID, adminID, false)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("processing an approved request should conflict, got %v", err)
	}

	_, err = db.ProcessRegistration(ctx, h.DB, 999999, adminID, true)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing request should be not found, got %v", err)
	}
}
