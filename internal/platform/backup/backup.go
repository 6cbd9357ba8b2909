package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/database"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metadata"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metrics"
	"github.com/slingventas/sales-tracker-backend/internal/record"
	"github.com/slingventas/sales-tracker-backend/internal/report"
	"github.com/slingventas/sales-tracker-backend/pkg/lifecycle"
)

const (
	moduleName      = "backup"
	defaultInterval = 30 * time.Minute
	maxRetry        = 3
	retryDelay      = 50 * time.Millisecond
)

// Scheduler writes the open cycle to disk as JSON whenever it changed.
type Scheduler struct {
	db       *gorm.DB
	dir      string
	interval time.Duration
	log      *logrus.Logger
	now      func() time.Time

	mu sync.Mutex
}

// NewScheduler builds a scheduler. An empty dir disables it.
func NewScheduler(db *gorm.DB, dir string, interval time.Duration, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logging.GetLogger()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{db: db, dir: dir, interval: interval, log: log, now: time.Now}
}

func (s *Scheduler) Enabled() bool {
	return s != nil && strings.TrimSpace(s.dir) != ""
}

// Run snapshots every interval until h shuts down.
func (s *Scheduler) Run(h *lifecycle.Handle) {
	if !s.Enabled() {
		<-h.Done()
		return
	}
	s.log.WithFields(logrus.Fields{"dir": s.dir, "interval": s.interval}).Info("backup: scheduler started")

	for {
		if err := h.Sleep(s.interval); err != nil {
			return
		}
		if _, err := s.Snapshot(h.Ctx()); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			logging.LogError(s.log, moduleName, "Run", "periodic snapshot", nil, err)
		}
	}
}

// Snapshot writes the open cycle when its fingerprint moved since the last
// backup. It returns the written path, or "" when nothing changed.
func (s *Scheduler) Snapshot(ctx context.Context) (path string, err error) {
	if !s.Enabled() {
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		switch {
		case err != nil:
			metrics.BackupsWritten.WithLabelValues("failed").Inc()
		case path == "":
			metrics.BackupsWritten.WithLabelValues("skipped").Inc()
		default:
			metrics.BackupsWritten.WithLabelValues("written").Inc()
		}
	}()

	// 1. Compare with the last backup
	fingerprint, err := record.Fingerprint(ctx, s.db)
	if err != nil {
		return "", err
	}
	last, err := metadata.GetLastBackupFingerprint(s.db)
	if err != nil {
		return "", fmt.Errorf("read last backup fingerprint: %w", err)
	}
	if fingerprint == last {
		return "", nil
	}

	// 2. Serialise the open cycle
	records, err := record.ListByCycle(ctx, s.db, record.OpenCycle)
	if err != nil {
		return "", err
	}
	data, err := report.ConvertToJSON(records)
	if err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	// 3. Write the file, then remember what it contains
	path = filepath.Join(s.dir, s.fileName())
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	for i := 0; i < maxRetry; i++ {
		err = metadata.SetLastBackupFingerprint(s.db, fingerprint)
		if err == nil || !database.IsRetryableError(err) {
			break
		}
		time.Sleep(retryDelay)
	}
	if err != nil {
		return "", fmt.Errorf("store backup fingerprint: %w", err)
	}

	s.log.WithFields(logrus.Fields{"path": path, "records": len(records)}).Info("backup: snapshot written")
	return path, nil
}

// fileName is Backup_Sling_Actual_<yyyymmdd-hhmmss>.json.
func (s *Scheduler) fileName() string {
	base := strings.TrimSuffix(report.JSONFileName(""), ".json")
	return fmt.Sprintf("%s_%s.json", base, s.now().Format("20060102-150405"))
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp backup: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename backup: %w", err)
	}
	return nil
}
