package db

import "testing"

func TestRankEntries(t *testing.T) {
	entries := []LeaderboardEntry{
		{UserID: 1, Name: "Ayşe", Points: 50, Experience: 10},
		{UserID: 2, Name: "Mehmet", Points: 120, Experience: 30},
		{UserID: 3, Name: "Ali", Points: 50, Experience: 10},
		{UserID: 4, Name: "Zeynep", Points: 50, Experience: 99},
	}
	RankEntries(entries)

	if entries[0].UserID != 2 || entries[0].Rank != 1 {
		t.Fatalf("top entry = %+v", entries[0])
	}
	// Higher experience breaks the points tie.
	if entries[1].UserID != 4 || entries[1].Rank != 2 {
		t.Fatalf("second entry = %+v", entries[1])
	}
	// Full ties share a rank and sort by name.
	if entries[2].Rank != 3 || entries[3].Rank != 3 {
		t.Fatalf("tied ranks = %d, %d, want 3, 3", entries[2].Rank, entries[3].Rank)
	}
	if entries[2].Name != "Ali" || entries[3].Name != "Ayşe" {
		t.Fatalf("tie order = %s, %s", entries[2].Name, entries[3].Name)
	}
}

func TestRankEntries_Empty(t *testing.T) {
	RankEntries(nil)
	RankEntries([]LeaderboardEntry{})
}
