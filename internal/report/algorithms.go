package report

import (
	"sort"

	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

// Tier is one row of the commission table: from MinVisits visits on,
// the salesperson earns Percentage.
type Tier struct {
	MinVisits  int `json:"minVisits"`
	MaxVisits  int `json:"maxVisits,omitempty"`
	Percentage int `json:"percentage"`
}

// tiers is ordered by MinVisits descending so the first hit wins.
var tiers = []Tier{
	{MinVisits: 15, Percentage: 25},
	{MinVisits: 10, MaxVisits: 14, Percentage: 20},
	{MinVisits: 5, MaxVisits: 9, Percentage: 15},
	{MinVisits: 1, MaxVisits: 4, Percentage: 10},
}

// CommissionPercentage maps a visit count to the commission tier.
func CommissionPercentage(visits int) int {
	for _, t := range tiers {
		if visits >= t.MinVisits {
			return t.Percentage
		}
	}
	return 0
}

// CommissionTiers returns the reference table, lowest tier first.
func CommissionTiers() []Tier {
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		out[len(tiers)-1-i] = t
	}
	return out
}

// SalesStat aggregates one salesperson's visits in a cycle.
type SalesStat struct {
	Name                 string `json:"name"`
	SalesCount           int    `json:"salesCount"`
	ContactedCount       int    `json:"contactedCount"`
	VendidoCount         int    `json:"vendidoCount"`
	RechazadoCount       int    `json:"rechazadoCount"`
	PendienteCount       int    `json:"pendienteCount"`
	CommissionPercentage int    `json:"commissionPercentage"`
}

// ComputeStats counts records per salesperson. Every user in the directory
// gets an entry, in directory order, even without visits; salespeople no
// longer in the directory follow in the order they first appear.
func ComputeStats(records []record.Record, users []user.User) []SalesStat {
	stats := make([]SalesStat, 0, len(users))
	index := make(map[string]int, len(users))

	for _, u := range users {
		if _, seen := index[u.Username]; seen {
			continue
		}
		index[u.Username] = len(stats)
		stats = append(stats, SalesStat{Name: u.Username})
	}

	for i := range records {
		r := &records[i]
		pos, ok := index[r.InCharge]
		if !ok {
			pos = len(stats)
			index[r.InCharge] = pos
			stats = append(stats, SalesStat{Name: r.InCharge})
		}

		s := &stats[pos]
		s.SalesCount++
		if r.Contacted == record.ContactedYes {
			s.ContactedCount++
		}
		switch r.Sold {
		case record.OutcomeSold:
			s.VendidoCount++
		case record.OutcomeRejected:
			s.RechazadoCount++
		case record.OutcomePending:
			s.PendienteCount++
		}
	}

	for i := range stats {
		stats[i].CommissionPercentage = CommissionPercentage(stats[i].SalesCount)
	}
	return stats
}

// TopPerformer returns the salesperson with the most visits. Ties keep the
// order of stats. Nobody leads a cycle without visits.
func TopPerformer(stats []SalesStat) (SalesStat, bool) {
	if len(stats) == 0 {
		return SalesStat{}, false
	}
	sorted := make([]SalesStat, len(stats))
	copy(sorted, stats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SalesCount > sorted[j].SalesCount
	})
	if sorted[0].SalesCount <= 0 {
		return SalesStat{}, false
	}
	return sorted[0], true
}
