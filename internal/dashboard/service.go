package dashboard

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/cycle"
	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metadata"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/report"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

const moduleName = "dashboard"

// CycleLister lists archived cycles, newest first.
type CycleLister interface {
	List(ctx context.Context) ([]cycle.Cycle, error)
}

// StatsSource computes stats for a loaded set of records.
type StatsSource interface {
	StatsFor(ctx context.Context, records []record.Record) ([]report.SalesStat, error)
}

// Snapshot is everything a client needs to render one refresh.
type Snapshot struct {
	User        *user.User         `json:"user"`
	Cycles      []cycle.Cycle      `json:"cycles"`
	Index       int                `json:"index"`
	CycleID     string             `json:"cycleId,omitempty"`
	DisplayName string             `json:"displayName"`
	CanPrevious bool               `json:"canPrevious"`
	CanNext     bool               `json:"canNext"`
	Records     []record.Record    `json:"records"`
	Stats       []report.SalesStat `json:"stats"`
	Tiers       []report.Tier      `json:"tiers"`
	// ShowLeaderBanner is set on the open cycle when the viewer leads it.
	ShowLeaderBanner bool `json:"showLeaderBanner"`

	// LastArchivedCycleID is the cycle produced by the most recent archive.
	LastArchivedCycleID string `json:"lastArchivedCycleId,omitempty"`
}

type Service struct {
	db     *gorm.DB
	log    *logrus.Logger
	cycles CycleLister
	stats  StatsSource
}

func NewService(db *gorm.DB, log *logrus.Logger, cycles CycleLister, stats StatsSource) *Service {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Service{db: db, log: log, cycles: cycles, stats: stats}
}

// Load resolves index against the cycle list and loads the view.
func (s *Service) Load(ctx context.Context, actor *user.User, index int) (*Snapshot, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}

	// 1. Cycle list and navigation
	cycles, err := s.cycles.List(ctx)
	if err != nil {
		return nil, err
	}
	nav := NewNavigator(cycles, index)
	lastArchived, err := metadata.GetLastArchivedCycleID(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	// 2. Every record of the cycle; stats use all of them
	all, err := record.ListByCycle(ctx, s.db, nav.CycleID())
	if err != nil {
		return nil, err
	}
	stats, err := s.stats.StatsFor(ctx, all)
	if err != nil {
		return nil, err
	}

	// 3. Visibility and banner
	snap := &Snapshot{
		User:        actor,
		Cycles:      cycles,
		Index:       nav.Index,
		CycleID:     nav.CycleID(),
		DisplayName: nav.DisplayName(),
		CanPrevious: nav.CanPrevious(),
		CanNext:     nav.CanNext(),
		Records:     record.Visible(actor, all),
		Stats:       stats,
		Tiers:       report.CommissionTiers(),

		LastArchivedCycleID: lastArchived,
	}
	if nav.IsOpen() {
		snap.ShowLeaderBanner = report.LeaderFor(actor, stats).IsYou
	}
	if snap.Cycles == nil {
		snap.Cycles = []cycle.Cycle{}
	}
	if snap.Records == nil {
		snap.Records = []record.Record{}
	}
	return snap, nil
}
