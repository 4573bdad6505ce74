// Package stats derives read-only views from the full record set.
// Every function is pure: no store access, no clock, no hidden state.
package stats

import (
	"sort"

	"edumate/pkg/domain"
)

// DefaultRecentLimit bounds RecentActivity when the caller passes no limit.
const DefaultRecentLimit = 5

// FilterAll is the wildcard accepted by FilterByType.
const FilterAll = "all"

// AggregateStats holds per-type record counts. It is recomputed from
// ListAll on every read and never persisted, so it cannot drift from
// the store.
type AggregateStats struct {
	Total      int `json:"total"`
	Summaries  int `json:"summaries"`
	Questions  int `json:"questions"`
	Proofread  int `json:"proofread"`
	Simplified int `json:"simplified"`
}

// Compute counts records by type. Unknown kinds contribute to Total
// only.
func Compute(records []domain.ContentRecord) AggregateStats {
	s := AggregateStats{Total: len(records)}
	for _, r := range records {
		switch r.Type {
		case domain.OpSummarize:
			s.Summaries++
		case domain.OpQuestions:
			s.Questions++
		case domain.OpProofread:
			s.Proofread++
		case domain.OpSimplify:
			s.Simplified++
		}
	}
	return s
}

// RecentActivity returns up to limit records ordered by Timestamp
// descending. The sort is stable, so records sharing a millisecond
// keep their stored (insertion) order. A non-positive limit means
// DefaultRecentLimit. The input slice is not modified.
func RecentActivity(records []domain.ContentRecord, limit int) []domain.ContentRecord {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	sorted := make([]domain.ContentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// FilterByType keeps records whose type matches kind. The wildcard
// "all" (or an empty kind) returns the input unchanged.
func FilterByType(records []domain.ContentRecord, kind string) []domain.ContentRecord {
	if kind == "" || kind == FilterAll {
		return records
	}
	res := make([]domain.ContentRecord, 0, len(records))
	for _, r := range records {
		if string(r.Type) == kind {
			res = append(res, r)
		}
	}
	return res
}
