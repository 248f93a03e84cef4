package services

import (
	"math"

	"agora/internal/models"
)

// ComputeStats tallies the complete current vote set of one topic. Pure and
// recomputed on every refresh; tallies are never patched with deltas, so a
// missed or re-ordered notification can never make them drift.
func ComputeStats(votes []models.Vote) models.VoteStats {
	var stats models.VoteStats
	for _, v := range votes {
		switch v.Option {
		case models.OptionAgree:
			stats.Agree++
		case models.OptionNeutral:
			stats.Neutral++
		case models.OptionDisagree:
			stats.Disagree++
		}
	}
	// Total is the sum of the buckets, not len(votes): the
	// agree+neutral+disagree == total invariant holds even if a corrupt
	// option ever reaches us.
	stats.Total = stats.Agree + stats.Neutral + stats.Disagree
	stats.AgreePct = percentage(stats.Agree, stats.Total)
	stats.NeutralPct = percentage(stats.Neutral, stats.Total)
	stats.DisagreePct = percentage(stats.Disagree, stats.Total)
	return stats
}

// percentage is round-half-up; 0 when there are no votes at all.
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
