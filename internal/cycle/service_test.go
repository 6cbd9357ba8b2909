package cycle

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/internal/platform/database/dbtest"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metadata"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/report"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

var (
	owner = &user.User{Username: "boss", Role: user.RoleOwner}
	ana   = &user.User{Username: "ana", Role: user.RoleEmployee}
	luis  = &user.User{Username: "luis", Role: user.RoleEmployee}
)

type fixture struct {
	db      *gorm.DB
	records *record.Service
	cycles  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	db := dbtest.Open(t, record.Migrate, Migrate, metadata.Migrate)
	clock := func() time.Time { return time.Date(2025, time.January, 31, 20, 0, 0, 0, time.UTC) }
	return &fixture{
		db:      db,
		records: record.NewService(db, log, record.WithClock(clock)),
		cycles:  NewService(db, nil, log, WithClock(clock)),
	}
}

func (f *fixture) create(t *testing.T, actor *user.User, company string, sold record.Outcome) *record.Record {
	t.Helper()
	r, err := f.records.Create(context.Background(), actor, record.CreateRequest{
		Company: company, Address: "Centro", Industry: "COMIDA", Sold: string(sold),
	})
	if err != nil {
		t.Fatalf("create %s: %v", company, err)
	}
	return r
}

func ids(records []record.Record) []uint {
	out := make([]uint, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, c := range []string{"Uno", "Dos", "Tres", "Cuatro"} {
		f.create(t, ana, c, record.OutcomePending)
	}

	before, err := record.ListByCycle(ctx, f.db, record.OpenCycle)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}

	res, err := f.cycles.Archive(ctx, owner, "Febrero")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if res.Moved != int64(len(before)) {
		t.Fatalf("moved %d, want %d", res.Moved, len(before))
	}

	open, err := record.ListByCycle(ctx, f.db, record.OpenCycle)
	if err != nil || len(open) != 0 {
		t.Fatalf("open cycle should be empty: %d %v", len(open), err)
	}
	archived, err := record.ListByCycle(ctx, f.db, res.Cycle.ID)
	if err != nil {
		t.Fatalf("list archived: %v", err)
	}
	gotIDs, wantIDs := ids(archived), ids(before)
	if len(gotIDs) != len(wantIDs) {
		t.Fatalf("archived %v, want %v", gotIDs, wantIDs)
	}
	for i := range gotIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("archived %v, want %v", gotIDs, wantIDs)
		}
	}

	last, err := metadata.GetLastArchivedCycleID(f.db)
	if err != nil || last != res.Cycle.ID {
		t.Fatalf("last archived id = %q (%v), want %q", last, err, res.Cycle.ID)
	}
}

func TestArchiveDefaultsNameAndOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.cycles.Archive(ctx, owner, "  ")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if first.Cycle.Name != "Ciclo enero de 2025" || first.Moved != 0 {
		t.Fatalf("unexpected default archive %+v", first)
	}
	second, err := f.cycles.Archive(ctx, owner, "Segundo")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	cycles, err := f.cycles.List(ctx)
	if err != nil || len(cycles) != 2 {
		t.Fatalf("List: %d %v", len(cycles), err)
	}
	if cycles[0].ID != second.Cycle.ID {
		t.Fatalf("expected newest first, got %+v", cycles)
	}
	if name, err := f.cycles.CycleName(ctx, first.Cycle.ID); err != nil || name != "Ciclo enero de 2025" {
		t.Fatalf("CycleName: %q %v", name, err)
	}
	if _, err := f.cycles.Get(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestArchiveRequiresOwner(t *testing.T) {
	f := newFixture(t)
	if _, err := f.cycles.Archive(context.Background(), ana, "x"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestArchiveFailureLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.create(t, ana, "Kiosco A", record.OutcomeSold)

	// Without the metadata table the last step of the transaction fails.
	if err := f.db.Migrator().DropTable(&metadata.Metadata{}); err != nil {
		t.Fatalf("drop metadata: %v", err)
	}
	if _, err := f.cycles.Archive(ctx, owner, "Roto"); err == nil {
		t.Fatal("expected archive to fail")
	}

	cycles, err := f.cycles.List(ctx)
	if err != nil || len(cycles) != 0 {
		t.Fatalf("failed archive left cycles behind: %d %v", len(cycles), err)
	}
	open, err := record.ListByCycle(ctx, f.db, record.OpenCycle)
	if err != nil || len(open) != 1 {
		t.Fatalf("failed archive moved records: %d %v", len(open), err)
	}
}

func TestScenarioKioscosEnero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.create(t, ana, "Kiosco A", record.OutcomeSold)
	f.create(t, ana, "Kiosco B", record.OutcomeRejected)
	f.create(t, luis, "Kiosco C", record.OutcomePending)

	open, err := record.ListByCycle(ctx, f.db, record.OpenCycle)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	stats := report.ComputeStats(open, nil)
	byName := map[string]report.SalesStat{}
	for _, s := range stats {
		byName[s.Name] = s
	}
	if byName["ana"].SalesCount != 2 || byName["ana"].CommissionPercentage != 10 {
		t.Fatalf("ana stats %+v", byName["ana"])
	}
	if byName["luis"].SalesCount != 1 || byName["luis"].CommissionPercentage != 10 {
		t.Fatalf("luis stats %+v", byName["luis"])
	}

	dupOwner, found, err := f.records.CheckDuplicate(ctx, "Kiosco A", "000")
	if err != nil || !found || dupOwner != "ana" {
		t.Fatalf("CheckDuplicate = %q %v %v", dupOwner, found, err)
	}

	res, err := f.cycles.Archive(ctx, owner, "Enero")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	open, err = record.ListByCycle(ctx, f.db, record.OpenCycle)
	if err != nil || len(open) != 0 {
		t.Fatalf("open after archive: %d %v", len(open), err)
	}
	archived, err := record.ListByCycle(ctx, f.db, res.Cycle.ID)
	if err != nil || len(archived) != 3 {
		t.Fatalf("archived: %d %v", len(archived), err)
	}
	companies := map[string]bool{}
	for _, r := range archived {
		companies[r.Company] = true
	}
	for _, c := range []string{"Kiosco A", "Kiosco B", "Kiosco C"} {
		if !companies[c] {
			t.Fatalf("%s missing from archived cycle", c)
		}
	}

	// The archived cycle no longer blocks a new visit to the same company.
	if _, found, _ := f.records.CheckDuplicate(ctx, "Kiosco A", ""); found {
		t.Fatal("archived visits must not count as duplicates")
	}
}
