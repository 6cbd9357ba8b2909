package record

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/slingventas/sales-tracker-backend/internal/platform/apperr"
)

// DuplicateError is the soft block returned when an open visit already
// names the same company or contact.
type DuplicateError struct {
	Owner string
}

func (e *DuplicateError) Error() string {
	return "already registered by " + e.Owner
}

func (e *DuplicateError) Is(target error) bool {
	return target == apperr.ErrConflict
}

// FindDuplicate returns the salesperson of the first record in open whose
// company or contact equals the candidate under Unicode case folding.
// Blank candidate fields never match.
func FindDuplicate(open []Record, company, contact string) (string, bool) {
	fold := cases.Fold()
	wantCompany := fold.String(strings.TrimSpace(company))
	wantContact := fold.String(strings.TrimSpace(contact))
	if wantCompany == "" && wantContact == "" {
		return "", false
	}

	for i := range open {
		r := &open[i]
		if wantCompany != "" && fold.String(strings.TrimSpace(r.Company)) == wantCompany {
			return r.InCharge, true
		}
		if wantContact != "" && fold.String(strings.TrimSpace(r.ContactInfo)) == wantContact {
			return r.InCharge, true
		}
	}
	return "", false
}

// Matches reports whether r passes the search term and outcome filter used
// by the records table. term is matched as a case-folded substring of
// company, address, industry, salesperson and contact.
func Matches(r *Record, term string, status Outcome) bool {
	if status != "" && r.Sold != status {
		return false
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}

	fold := cases.Fold()
	needle := fold.String(term)
	for _, field := range []string{r.Company, r.Address, r.Industry, r.InCharge, r.ContactInfo} {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

// NormalizeIndustry upper-cases values that match a suggestion and keeps
// free text as typed.
func NormalizeIndustry(s string) string {
	s = strings.TrimSpace(s)
	for _, suggestion := range Industries {
		if strings.EqualFold(s, suggestion) {
			return suggestion
		}
	}
	return s
}
