// Package rank orders catalog records against a fuzzy query. It is pure:
// callers pass candidates and a clock value, the engine never touches the
// store.
package rank

import (
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"projcat/internal/catalog"
)

const (
	// matched characters forming a contiguous run score extra
	contiguousBonus = 8.0
	// matches starting right after a path separator score extra
	boundaryBonus = 12.0
	// every matched character is worth this much
	matchedCharScore = 4.0
	// shorter paths win on equal matches; penalty per unmatched character
	lengthPenalty = 0.15

	// frecency halves every 30 days
	halfLife = 30 * 24 * time.Hour
	// never-visited records keep a floor so fresh scans stay discoverable
	frecencyBaseline = 0.25
	// weight of the frecency term relative to match quality
	frecencyWeight = 10.0
)

// Scored pairs a record with its computed relevance
type Scored struct {
	Record catalog.ProjectRecord
	Score  float64

	exact bool
}

// Search filters candidates to those fuzzy-matching query and orders them
// by descending relevance. An empty query matches everything and orders by
// frecency alone. Exact full-path and exact-name matches sort ahead of all
// fuzzy matches regardless of frecency.
func Search(query string, candidates []catalog.ProjectRecord, now time.Time) []Scored {
	queryLower := strings.ToLower(query)

	var results []Scored
	for _, rec := range candidates {
		quality, ok := matchQuality(queryLower, strings.ToLower(rec.Path))
		if !ok {
			continue
		}

		s := Scored{
			Record: rec,
			Score:  quality + frecencyWeight*math.Log1p(Frecency(rec, now)),
			exact:  isExact(queryLower, rec),
		}
		results = append(results, s)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.exact != b.exact {
			return a.exact
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Record.LastScanned.Equal(b.Record.LastScanned) {
			return a.Record.LastScanned.After(b.Record.LastScanned)
		}
		return len(a.Record.Path) < len(b.Record.Path)
	})

	return results
}

// Frecency computes visit_count damped by time since last visit, halving
// every 30 days. Every record keeps the constant floor so a long-stale
// visit history never ranks below a never-visited record.
func Frecency(rec catalog.ProjectRecord, now time.Time) float64 {
	if rec.LastVisited == nil || rec.VisitCount == 0 {
		return frecencyBaseline
	}

	elapsed := now.Sub(*rec.LastVisited)
	if elapsed < 0 {
		elapsed = 0
	}

	decay := math.Pow(0.5, elapsed.Hours()/halfLife.Hours())
	return math.Max(float64(rec.VisitCount)*decay, frecencyBaseline)
}

func isExact(queryLower string, rec catalog.ProjectRecord) bool {
	if queryLower == "" {
		return false
	}
	return strings.ToLower(rec.Path) == queryLower ||
		strings.ToLower(rec.Name) == queryLower
}

// matchQuality checks that every query character appears in order within
// path and scores the greedy left-to-right alignment. Contiguous runs and
// segment-boundary anchors are rewarded, long unmatched tails penalized.
func matchQuality(queryLower, pathLower string) (float64, bool) {
	if queryLower == "" {
		return 0, true
	}

	score := 0.0
	qi := 0
	prevMatch := -2
	for pi := 0; pi < len(pathLower) && qi < len(queryLower); pi++ {
		if pathLower[pi] != queryLower[qi] {
			continue
		}

		score += matchedCharScore
		if pi == prevMatch+1 {
			score += contiguousBonus
		}
		if pi == 0 || pathLower[pi-1] == '/' || pathLower[pi-1] == filepath.Separator {
			score += boundaryBonus
		}
		prevMatch = pi
		qi++
	}

	if qi < len(queryLower) {
		return 0, false
	}

	score -= lengthPenalty * float64(len(pathLower)-len(queryLower))
	return score, true
}
