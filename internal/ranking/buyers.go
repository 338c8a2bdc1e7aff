package ranking

import (
	"sort"

	"github.com/nereuslabs/nereusd/internal/domain"
)

// AggregateBuyers folds raw position purchases into a per-address leaderboard
// for one market, ranked by cumulative purchase amount descending.
//
// Records for other markets are excluded before aggregation. Records with no
// owner are skipped silently: ownership resolution can legitimately be absent
// for in-flight objects and must not fail the whole leaderboard. Addresses
// are compared as exact strings; callers are responsible for consistent
// formatting upstream.
//
// Ties on BuyAmount keep first-purchase insertion order, which makes the
// output deterministic per input.
func AggregateBuyers(records []domain.PositionPurchase, marketID string) []domain.BuyerAggregate {
	byAddr := make(map[string]int, len(records))
	out := make([]domain.BuyerAggregate, 0, len(records))

	for _, rec := range records {
		if rec.MarketID != marketID || rec.Owner == "" {
			continue
		}
		if i, ok := byAddr[rec.Owner]; ok {
			agg := &out[i]
			agg.BuyAmount += rec.Amount
			agg.TransactionCount++
			if rec.Timestamp.After(agg.LastBuyTime) {
				agg.LastBuyTime = rec.Timestamp
			}
			continue
		}
		byAddr[rec.Owner] = len(out)
		out = append(out, domain.BuyerAggregate{
			Address:          rec.Owner,
			BuyAmount:        rec.Amount,
			LastBuyTime:      rec.Timestamp,
			TransactionCount: 1,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BuyAmount > out[j].BuyAmount
	})
	return out
}
