//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/eduraapp/edura-backend/internal/apperr"
	"github.com/eduraapp/edura-backend/internal/db"
	"github.com/eduraapp/edura-backend/internal/models"
	"github.com/eduraapp/edura-backend/internal/testutil/testdb"
)

// referencingTables maps tables to the columns that can point at a user.
// The dangling-reference walk after deletion covers the full schema so a
// new relation cannot silently escape the cascade.
var referencingTables = map[string][]string{
	"points_transactions":     {"student_id", "tutor_id"},
	"experience_transactions": {"student_id"},
	"item_requests":           {"student_id", "processed_by"},
	"event_participants":      {"user_id"},
	"events":                  {"created_by", "tutor_id"},
	"registration_requests":   {"processed_by"},
	"student_notes":           {"student_id", "author_id"},
	"student_reports":         {"student_id", "author_id"},
	"wishes":                  {"author_id"},
	"point_earning_cards":     {"created_by"},
	"classrooms":              {"tutor_id"},
	"users":                   {"id", "tutor_id"},
}

func TestDeleteUserCascade_Tutor(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	adminID := mustSeedUser(t, h.DB, "Admin", models.Admin)
	tutorID := mustSeedUser(t, h.DB, "Hoca", models.Tutor)
	studentA := mustSeedUser(t, h.DB, "Ali", models.Student)
	studentB := mustSeedUser(t, h.DB, "Veli", models.Student)
	mustActivePeriod(t, h.DB)

	// Classroom with two students.
	for _, s := range []int64{studentA, studentB} {
		if err := db.AssignTutor(ctx, h.DB, s, ptrInt64(tutorID)); err != nil {
			t.Fatal(err)
		}
	}

	// Spread references to the tutor across the schema.
	if _, err := db.AwardPoints(ctx, h.DB, db.AwardInput{
		StudentID: studentA, TutorID: ptrInt64(tutorID), Amount: 30,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateEvent(ctx, h.DB, "Veli Toplantısı", time.Now().Add(24*time.Hour), tutorID, ptrInt64(tutorID)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateStudentNote(ctx, h.DB, studentA, tutorID, "derste aktif"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateStudentReport(ctx, h.DB, studentA, tutorID, 12, "haftalık gözlem"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateWish(ctx, h.DB, tutorID, "projeksiyon cihazı"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreatePointEarningCard(ctx, h.DB, "Kitap Okuma", 20, tutorID); err != nil {
		t.Fatal(err)
	}
	reg, err := db.SubmitRegistration(ctx, h.DB, "Aday", "aday@test.local", models.Student)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.ProcessRegistration(ctx, h.DB, reg.ID, tutorID, false); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteUserCascade(ctx, h.DB, tutorID, adminID, 0); err != nil {
		t.Fatal(err)
	}

	// Students are detached, not deleted.
	for _, s := range []int64{studentA, studentB} {
		u, err := db.GetUserByID(ctx, h.DB, s)
		if err != nil {
			t.Fatal(err)
		}
		if u.TutorID != nil || u.ClassroomID != nil {
			t.Fatalf("student %d still attached: tutor=%v classroom=%v", s, u.TutorID, u.ClassroomID)
		}
	}

	// The classroom is gone.
	if _, err := db.GetClassroomByTutor(ctx, h.DB, tutorID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("classroom should be deleted, got %v", err)
	}

	// Registration history survives with the reference nulled.
	var processedBy *int64
	if err := h.DB.QueryRow(
		`SELECT processed_by FROM registration_requests WHERE id = $1`, reg.ID).Scan(&processedBy); err != nil {
		t.Fatal(err)
	}
	if processedBy != nil {
		t.Fatalf("registration_requests.processed_by = %v, want NULL", *processedBy)
	}

	// No table anywhere still references the deleted id.
	for table, cols := range referencingTables {
		for _, col := range cols {
			var n int
			if err := h.DB.QueryRow(
				`SELECT COUNT(*) FROM `+table+` WHERE `+col+` = $1`, tutorID).Scan(&n); err != nil {
				t.Fatal(err)
			}
			if n != 0 {
				t.Fatalf("%s.%s still references deleted user (%d rows)", table, col, n)
			}
		}
	}
}

func TestDeleteUserCascade_Preconditions(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	adminID := mustSeedUser(t, h.DB, "Admin", models.Admin)

	if err := db.DeleteUserCascade(ctx, h.DB, adminID, adminID, 0); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("self-delete should conflict, got %v", err)
	}
	if err := db.DeleteUserCascade(ctx, h.DB, 999999, adminID, 0); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("missing user should be not found, got %v", err)
	}
}

func TestAssignTutor_KeepsColumnsConsistent(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	tutorID := mustSeedUser(t, h.DB, "Hoca", models.Tutor)
	studentID := mustSeedUser(t, h.DB, "Ali", models.Student)

	if err := db.AssignTutor(ctx, h.DB, studentID, ptrInt64(tutorID)); err != nil {
		t.Fatal(err)
	}
	u, err := db.GetUserByID(ctx, h.DB, studentID)
	if err != nil {
		t.Fatal(err)
	}
	if u.TutorID == nil || *u.TutorID != tutorID {
		t.Fatalf("tutor_id = %v, want %d", u.TutorID, tutorID)
	}
	c, err := db.GetClassroomByTutor(ctx, h.DB, tutorID)
	if err != nil {
		t.Fatal(err)
	}
	if u.ClassroomID == nil || *u.ClassroomID != c.ID {
		t.Fatalf("classroom_id = %v, want %d", u.ClassroomID, c.ID)
	}

	// Detach clears both columns together.
	if err := db.AssignTutor(ctx, h.DB, studentID, nil); err != nil {
		t.Fatal(err)
	}
	u, err = db.GetUserByID(ctx, h.DB, studentID)
	if err != nil {
		t.Fatal(err)
	}
	if u.TutorID != nil || u.ClassroomID != nil {
		t.Fatalf("detach left columns set: tutor=%v classroom=%v", u.TutorID, u.ClassroomID)
	}
}
