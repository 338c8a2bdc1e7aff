// Package ranking holds the pure list-shaping logic behind the market grid
// and the buyer leaderboard. Both functions are deterministic given their
// inputs; the clock is always injected.
package ranking

import (
	"sort"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// OrderForDisplay partitions markets into active and ended at the given
// wall-clock time (unix milliseconds) and orders them for display:
//
//   - active markets first, ascending by end time, so markets nearing
//     resolution surface at the top
//   - ended markets after, descending by end time, so fresh resolutions
//     come before stale ones
//
// A market ending exactly at now is ended. Ties keep their relative input
// order. The input slice is not modified.
func OrderForDisplay(markets []domain.Market, nowMs int64) []domain.Market {
	active := make([]domain.Market, 0, len(markets))
	ended := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if m.Ended(nowMs) {
			ended = append(ended, m)
		} else {
			active = append(active, m)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].EndTime < active[j].EndTime
	})
	sort.SliceStable(ended, func(i, j int) bool {
		return ended[i].EndTime > ended[j].EndTime
	})

	return append(active, ended...)
}
