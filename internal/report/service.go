package report

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/user"
)

const moduleName = "report"

// UserLister supplies the directory order for stats.
type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

// CycleNamer resolves a cycle id to its display name.
type CycleNamer interface {
	CycleName(ctx context.Context, id string) (string, error)
}

// Leader is the top performer banner of the open cycle.
type Leader struct {
	Leader *SalesStat `json:"leader"`
	IsYou  bool       `json:"isYou"`
}

// Export is the data behind one download.
type Export struct {
	CycleName string
	Records   []record.Record
	Stats     []SalesStat
}

type Service struct {
	db     *gorm.DB
	log    *logrus.Logger
	users  UserLister
	cycles CycleNamer
	now    func() time.Time
}

func NewService(db *gorm.DB, log *logrus.Logger, users UserLister, cycles CycleNamer) *Service {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Service{db: db, log: log, users: users, cycles: cycles, now: time.Now}
}

// StatsFor computes the stats of an already loaded cycle.
func (s *Service) StatsFor(ctx context.Context, records []record.Record) ([]SalesStat, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(records, users), nil
}

// Stats recomputes the per-salesperson stats of cycle (empty = open).
func (s *Service) Stats(ctx context.Context, cycle string) ([]SalesStat, error) {
	records, err := record.ListByCycle(ctx, s.db, cycle)
	if err != nil {
		return nil, err
	}
	return s.StatsFor(ctx, records)
}

// LeaderFor builds the banner from computed stats.
func LeaderFor(actor *user.User, stats []SalesStat) Leader {
	top, ok := TopPerformer(stats)
	if !ok {
		return Leader{}
	}
	return Leader{Leader: &top, IsYou: actor != nil && actor.Username == top.Name}
}

// Leader reports the top performer of the open cycle.
func (s *Service) Leader(ctx context.Context, actor *user.User) (Leader, error) {
	stats, err := s.Stats(ctx, record.OpenCycle)
	if err != nil {
		return Leader{}, err
	}
	return LeaderFor(actor, stats), nil
}

// Export loads everything needed to download cycle. Only owners export.
func (s *Service) Export(ctx context.Context, actor *user.User, cycle string) (*Export, error) {
	if !actor.IsOwner() {
		return nil, apperr.ErrForbidden
	}

	name := ""
	if cycle != "" && cycle != record.OpenCycle {
		n, err := s.cycles.CycleName(ctx, cycle)
		if err != nil {
			return nil, err
		}
		name = n
	}

	records, err := record.ListByCycle(ctx, s.db, cycle)
	if err != nil {
		return nil, err
	}
	stats, err := s.StatsFor(ctx, records)
	if err != nil {
		return nil, err
	}
	return &Export{CycleName: name, Records: records, Stats: stats}, nil
}
