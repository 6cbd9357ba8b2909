package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
	"github.com/slingventas/sales-tracker-backend/internal/platform/logging"
	"github.com/slingventas/sales-tracker-backend/internal/platform/metrics"
	"github.com/slingventas/sales-tracker-backend/internal/user"
	"github.com/slingventas/sales-tracker-backend/pkg/whatsapp"
)

const (
	moduleName = "record"
	tableName  = "sales_records"
)

var (
	ErrRecordNotFound = fmt.Errorf("record: %w", apperr.ErrNotFound)
	ErrNotYours       = fmt.Errorf("only the owner or the salesperson who logged the visit can change it: %w", apperr.ErrForbidden)
	ErrArchived       = fmt.Errorf("archived visits are read-only: %w", apperr.ErrForbidden)
)

// Notifier is told about every committed change.
type Notifier interface {
	Notify(ctx context.Context, table, action string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, string) {}

// Service is the visit store.
type Service struct {
	db       *gorm.DB
	log      *logrus.Logger
	notifier Notifier
	links    whatsapp.Builder
	loc      *time.Location
	now      func() time.Time
}

// Option customises a Service.
type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLocation sets the timezone used to stamp visit dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLinkBuilder(b whatsapp.Builder) Option {
	return func(s *Service) { s.links = b }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *gorm.DB, log *logrus.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.GetLogger()
	}
	s := &Service{
		db:       db,
		log:      log,
		notifier: nopNotifier{},
		links:    whatsapp.New("", ""),
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormatDate renders t as d/m/yyyy.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

func canModify(actor *user.User, r *Record) bool {
	return actor.IsOwner() || (actor != nil && r.InCharge == actor.Username)
}

// CheckDuplicate looks for an open visit with the same company or contact.
// The answer is advisory: nothing stops a concurrent insert afterwards.
func (s *Service) CheckDuplicate(ctx context.Context, company, contact string) (string, bool, error) {
	open, err := ListByCycle(ctx, s.db, OpenCycle)
	if err != nil {
		return "", false, err
	}
	owner, found := FindDuplicate(open, company, contact)
	return owner, found, nil
}

// Create logs a visit in the open cycle on behalf of actor.
func (s *Service) Create(ctx context.Context, actor *user.User, req CreateRequest) (*Record, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}

	// 1. Validate
	r := &Record{
		Address:     strings.TrimSpace(req.Address),
		Company:     strings.TrimSpace(req.Company),
		Industry:    NormalizeIndustry(req.Industry),
		ContactInfo: strings.TrimSpace(req.ContactInfo),
		Sold:        OutcomePending,
		Contacted:   ContactedNo,
	}
	if err := requireFields(r); err != nil {
		return nil, err
	}
	if req.Sold != "" {
		o, ok := ParseOutcome(req.Sold)
		if !ok {
			return nil, apperr.Invalid("sold", "sold must be Si, No or Pendiente")
		}
		r.Sold = o
	}
	if req.Contacted != "" {
		c, ok := ParseContacted(req.Contacted)
		if !ok {
			return nil, apperr.Invalid("contacted", "contacted must be Si or No")
		}
		r.Contacted = c
	}

	// 2. Duplicate soft block
	owner, found, err := s.CheckDuplicate(ctx, r.Company, r.ContactInfo)
	if err != nil {
		return nil, err
	}
	if found {
		metrics.VisitDuplicates.Inc()
		return nil, &DuplicateError{Owner: owner}
	}

	// 3. Stamp and insert
	r.Date = FormatDate(s.now().In(s.loc))
	r.InCharge = actor.Username
	r.CycleID = nil
	if err := insertRecord(ctx, s.db, r); err != nil {
		return nil, err
	}

	metrics.VisitsCreated.Inc()
	s.notifier.Notify(ctx, tableName, "INSERT")
	return r, nil
}

func requireFields(r *Record) error {
	switch {
	case r.Company == "":
		return apperr.Invalid("company", "company is required")
	case r.Address == "":
		return apperr.Invalid("address", "address is required")
	case r.Industry == "":
		return apperr.Invalid("industry", "industry is required")
	}
	return nil
}

// List returns the visits of f.Cycle that actor may see, newest first.
// Employees only ever see their own visits.
func (s *Service) List(ctx context.Context, actor *user.User, f Filter) ([]Record, error) {
	if actor == nil {
		return nil, apperr.ErrUnauthorized
	}

	var status Outcome
	if f.Status != "" && f.Status != "all" {
		o, ok := ParseOutcome(f.Status)
		if !ok {
			return nil, apperr.Invalid("status", "unknown status filter")
		}
		status = o
	}

	var (
		records []Record
		err     error
	)
	if actor.IsOwner() {
		records, err = ListByCycle(ctx, s.db, f.Cycle)
	} else {
		records, err = listByOwner(ctx, s.db, f.Cycle, actor.Username)
	}
	if err != nil {
		return nil, err
	}

	if status == "" && strings.TrimSpace(f.Query) == "" {
		return records, nil
	}
	filtered := records[:0]
	for i := range records {
		if Matches(&records[i], f.Query, status) {
			filtered = append(filtered, records[i])
		}
	}
	return filtered, nil
}

// Visible applies the employee visibility rule to an already loaded set.
func Visible(actor *user.User, records []Record) []Record {
	if actor.IsOwner() {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if actor != nil && r.InCharge == actor.Username {
			out = append(out, r)
		}
	}
	return out
}

// loadModifiable fetches id and checks actor may change it.
func (s *Service) loadModifiable(ctx context.Context, actor *user.User, id uint) (*Record, error) {
	r, err := findRecord(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRecordNotFound
	}
	if !canModify(actor, r) {
		return nil, ErrNotYours
	}
	return r, nil
}

// Update edits the mutable fields of a visit. Date, salesperson and cycle
// never change.
func (s *Service) Update(ctx context.Context, actor *user.User, id uint, req UpdateRequest) (*Record, error) {
	r, err := s.loadModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOpen() {
		return nil, ErrArchived
	}

	fields := map[string]any{}
	if req.Company != nil {
		r.Company = strings.TrimSpace(*req.Company)
		fields["company"] = r.Company
	}
	if req.Address != nil {
		r.Address = strings.TrimSpace(*req.Address)
		fields["address"] = r.Address
	}
	if req.Industry != nil {
		r.Industry = NormalizeIndustry(*req.Industry)
		fields["industry"] = r.Industry
	}
	if req.ContactInfo != nil {
		r.ContactInfo = strings.TrimSpace(*req.ContactInfo)
		fields["contact_info"] = r.ContactInfo
	}
	if req.Sold != nil {
		o, ok := ParseOutcome(*req.Sold)
		if !ok {
			return nil, apperr.Invalid("sold", "sold must be Si, No or Pendiente")
		}
		r.Sold = o
		fields["sold"] = o
	}
	if req.Contacted != nil {
		c, ok := ParseContacted(*req.Contacted)
		if !ok {
			return nil, apperr.Invalid("contacted", "contacted must be Si or No")
		}
		r.Contacted = c
		fields["contacted"] = c
	}
	if err := requireFields(r); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return r, nil
	}

	if err := updateRecordFields(ctx, s.db, id, fields); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, tableName, "UPDATE")
	return s.reload(ctx, id)
}

// ToggleContacted flips the contacted flag of a visit.
func (s *Service) ToggleContacted(ctx context.Context, actor *user.User, id uint) (*Record, error) {
	r, err := s.loadModifiable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOpen() {
		return nil, ErrArchived
	}
	if err := updateRecordFields(ctx, s.db, id, map[string]any{"contacted": r.Contacted.Toggle()}); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, tableName, "UPDATE")
	return s.reload(ctx, id)
}

// Delete removes a visit of the open cycle.
func (s *Service) Delete(ctx context.Context, actor *user.User, id uint) error {
	r, err := s.loadModifiable(ctx, actor, id)
	if err != nil {
		return err
	}
	if !r.IsOpen() {
		return ErrArchived
	}
	n, err := deleteRecord(ctx, s.db, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	s.notifier.Notify(ctx, tableName, "DELETE")
	return nil
}

// ClearOpen deletes every visit of the open cycle. Archival replaced it;
// it stays for cleaning up test data.
func (s *Service) ClearOpen(ctx context.Context, actor *user.User) (int64, error) {
	if !actor.IsOwner() {
		return 0, apperr.ErrForbidden
	}
	n, err := deleteOpen(ctx, s.db)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"actor": actor.Username, "deleted": n}).Warn("record: open cycle cleared")
	s.notifier.Notify(ctx, tableName, "DELETE")
	return n, nil
}

// WhatsAppLink builds the messaging link for the contact of a visit.
func (s *Service) WhatsAppLink(ctx context.Context, actor *user.User, id uint) (whatsapp.Link, error) {
	r, err := s.loadModifiable(ctx, actor, id)
	if err != nil {
		return whatsapp.Link{}, err
	}
	link, err := s.links.BuildLink(r.ContactInfo)
	if errors.Is(err, whatsapp.ErrInvalidNumber) {
		return whatsapp.Link{}, apperr.Invalid("contactInfo", "contact is not a valid phone number")
	}
	return link, err
}

func (s *Service) reload(ctx context.Context, id uint) (*Record, error) {
	r, err := findRecord(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRecordNotFound
	}
	return r, nil
}

// Import appends records to the open cycle as they are, keeping their
// originator and date. It restores a JSON export or backup, so the
// duplicate check does not apply.
func (s *Service) Import(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	today := FormatDate(s.now().In(s.loc))
	batch := make([]Record, 0, len(records))
	for i, in := range records {
		r := Record{
			Date:        strings.TrimSpace(in.Date),
			InCharge:    strings.TrimSpace(in.InCharge),
			Address:     strings.TrimSpace(in.Address),
			Company:     strings.TrimSpace(in.Company),
			Industry:    NormalizeIndustry(in.Industry),
			Sold:        in.Sold,
			ContactInfo: strings.TrimSpace(in.ContactInfo),
			Contacted:   in.Contacted,
		}
		if err := requireFields(&r); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		if r.InCharge == "" {
			return 0, fmt.Errorf("record %d: %w", i+1, apperr.Invalid("inCharge", "inCharge is required"))
		}
		if r.Date == "" {
			r.Date = today
		}
		if o, ok := ParseOutcome(string(r.Sold)); ok {
			r.Sold = o
		} else {
			r.Sold = OutcomePending
		}
		if c, ok := ParseContacted(string(r.Contacted)); ok {
			r.Contacted = c
		} else {
			r.Contacted = ContactedNo
		}
		batch = append(batch, r)
	}

	if err := insertBatch(ctx, s.db, batch); err != nil {
		return 0, err
	}
	s.log.WithField("count", len(batch)).Info("record: visits imported")
	s.notifier.Notify(ctx, tableName, "INSERT")
	return len(batch), nil
}
