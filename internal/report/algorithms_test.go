package report

import (
	"testing"

	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

func TestCommissionPercentageBoundaries(t *testing.T) {
	cases := map[int]int{
		0: 0, 1: 10, 4: 10, 5: 15, 9: 15, 10: 20, 14: 20, 15: 25, 100: 25,
	}
	for n, want := range cases {
		if got := CommissionPercentage(n); got != want {
			t.Errorf("CommissionPercentage(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestCommissionPercentageMonotonic(t *testing.T) {
	prev := CommissionPercentage(0)
	for n := 1; n <= 200; n++ {
		got := CommissionPercentage(n)
		if got < prev {
			t.Fatalf("tier decreased at %d: %d < %d", n, got, prev)
		}
		prev = got
	}
}

func TestCommissionTiersLowestFirst(t *testing.T) {
	got := CommissionTiers()
	if len(got) != 4 || got[0].MinVisits != 1 || got[3].Percentage != 25 {
		t.Fatalf("unexpected tiers %+v", got)
	}
}

func scenarioRecords() []record.Record {
	return []record.Record{
		{ID: 3, Company: "Kiosco C", InCharge: "luis", Sold: record.OutcomePending, Contacted: record.ContactedNo},
		{ID: 2, Company: "Kiosco B", InCharge: "ana", Sold: record.OutcomeRejected, Contacted: record.ContactedYes},
		{ID: 1, Company: "Kiosco A", InCharge: "ana", Sold: record.OutcomeSold, Contacted: record.ContactedNo},
	}
}

func TestComputeStatsScenario(t *testing.T) {
	stats := ComputeStats(scenarioRecords(), nil)
	byName := map[string]SalesStat{}
	for _, s := range stats {
		byName[s.Name] = s
	}

	ana := byName["ana"]
	if ana.SalesCount != 2 || ana.CommissionPercentage != 10 || ana.VendidoCount != 1 || ana.RechazadoCount != 1 || ana.ContactedCount != 1 {
		t.Fatalf("unexpected ana stats %+v", ana)
	}
	luis := byName["luis"]
	if luis.SalesCount != 1 || luis.CommissionPercentage != 10 || luis.PendienteCount != 1 {
		t.Fatalf("unexpected luis stats %+v", luis)
	}
	if stats[0].Name != "luis" {
		t.Fatalf("unknown salespeople should follow first-seen order, got %s first", stats[0].Name)
	}
}

func TestComputeStatsIncludesIdleUsers(t *testing.T) {
	users := []user.User{{Username: "ana"}, {Username: "marta"}, {Username: "luis"}}
	stats := ComputeStats(scenarioRecords(), users)
	if len(stats) != 3 {
		t.Fatalf("expected one entry per user, got %d", len(stats))
	}
	if stats[0].Name != "ana" || stats[1].Name != "marta" || stats[2].Name != "luis" {
		t.Fatalf("expected directory order, got %+v", stats)
	}
	if stats[1].SalesCount != 0 || stats[1].CommissionPercentage != 0 {
		t.Fatalf("idle user should be zeroed, got %+v", stats[1])
	}
}

func TestComputeStatsAppendsFormerUsers(t *testing.T) {
	users := []user.User{{Username: "ana"}}
	stats := ComputeStats(scenarioRecords(), users)
	if len(stats) != 2 || stats[1].Name != "luis" {
		t.Fatalf("expected luis appended after directory users, got %+v", stats)
	}
}

func TestTopPerformer(t *testing.T) {
	if _, ok := TopPerformer(nil); ok {
		t.Fatal("no stats, no leader")
	}
	if _, ok := TopPerformer([]SalesStat{{Name: "ana"}, {Name: "luis"}}); ok {
		t.Fatal("nobody leads without visits")
	}

	stats := []SalesStat{{Name: "ana", SalesCount: 3}, {Name: "luis", SalesCount: 5}, {Name: "marta", SalesCount: 5}}
	top, ok := TopPerformer(stats)
	if !ok || top.Name != "luis" {
		t.Fatalf("expected luis to win the tie by order, got %+v", top)
	}
	if stats[0].Name != "ana" {
		t.Fatal("TopPerformer must not reorder its input")
	}
}

func TestLeaderFor(t *testing.T) {
	stats := ComputeStats(scenarioRecords(), nil)
	banner := LeaderFor(&user.User{Username: "ana"}, stats)
	if banner.Leader == nil || banner.Leader.Name != "ana" || !banner.IsYou {
		t.Fatalf("unexpected banner %+v", banner)
	}
	if LeaderFor(&user.User{Username: "luis"}, stats).IsYou {
		t.Fatal("luis is not the leader")
	}
}
