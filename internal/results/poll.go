// Package results holds the pure aggregation functions that turn raw
// submissions into an ordered leaderboard. Nothing here touches storage;
// callers read the room, aggregate, and persist the outcome.
package results

import (
	"sort"

	"github.com/samber/lo"

	"github.com/hilthontt/quorum/internal/domain"
)

// ComputePoll aggregates ranked-choice ballots with a Borda count: the first
// of n ranked choices earns n points, the second n-1, down to 1 for the last.
// One row per nomination that received at least one vote; nominations nobody
// ranked are omitted. Ties keep first-encounter order (ballots are visited
// in sorted participant order so the outcome is deterministic).
func ComputePoll(rankings map[string][]string, nominations map[string]domain.Nomination) []domain.Result {
	scores := make(map[string]float64)
	var order []string // nomination IDs in first-encounter order

	voters := lo.Keys(rankings)
	sort.Strings(voters)

	for _, userID := range voters {
		ranking := rankings[userID]
		n := len(ranking)
		for pos, nominationID := range ranking {
			if _, ok := nominations[nominationID]; !ok {
				continue // nomination removed after the ballot was cast
			}
			if _, seen := scores[nominationID]; !seen {
				order = append(order, nominationID)
			}
			scores[nominationID] += float64(n - pos)
		}
	}

	rows := make([]domain.Result, 0, len(order))
	for _, nominationID := range order {
		rows = append(rows, domain.Result{
			ID:    nominationID,
			Name:  nominations[nominationID].Text,
			Score: scores[nominationID],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})

	return rows
}
