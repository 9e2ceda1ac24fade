package db

import (
	"context"
	"sort"

	"github.com/eduraapp/edura-backend/internal/models"
)

type LeaderboardEntry struct {
	UserID     int64
	Name       string
	Points     int
	Experience int
	Rank       int
}

// Leaderboard ranks active students of a period by net points, experience as
// the tiebreak, name as the last resort. Balances come from the batched
// aggregator: two grouped queries however large the roster.
func Leaderboard(ctx context.Context, q Querier, periodID int64) ([]LeaderboardEntry, error) {
	students, err := ListUsersByRole(ctx, q, models.Student)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}

	points, err := MultipleUserPoints(ctx, q, ids, periodID)
	if err != nil {
		return nil, err
	}
	experience, err := MultipleUserExperience(ctx, q, ids, periodID)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(students))
	for _, s := range students {
		entries = append(entries, LeaderboardEntry{
			UserID:     s.ID,
			Name:       s.Name,
			Points:     points[s.ID],
			Experience: experience[s.ID],
		})
	}
	RankEntries(entries)
	return entries, nil
}

// RankEntries orders entries and assigns ranks; ties on points and
// experience share a rank.
func RankEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if entries[i].Experience != entries[j].Experience {
			return entries[i].Experience > entries[j].Experience
		}
		return entries[i].Name < entries[j].Name
	})
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Points != entries[i-1].Points ||
			entries[i].Experience != entries[i-1].Experience {
			rank = i + 1
		}
		entries[i].Rank = rank
	}
}
