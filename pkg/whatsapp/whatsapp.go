// Package whatsapp turns free-text contact information into a messaging
// deep link.
package whatsapp

import (
	"errors"
	"strings"

	"github.com/ttacon/libphonenumber"
)

const (
	baseURL = "https://api.whatsapp.com/send?phone="

	// DefaultPrefix is the Argentine country code followed by the mobile digit.
	DefaultPrefix = "549"
	DefaultRegion = "AR"

	minDigits = 5
)

var ErrInvalidNumber = errors.New("whatsapp: contact does not look like a phone number")

// Link is the result of BuildLink.
type Link struct {
	Number string `json:"number"`
	URL    string `json:"url"`
	// Valid reports whether the number parses as a valid phone number.
	// It is informational; an invalid number still gets a link.
	Valid bool `json:"valid"`
}

// Builder applies the prefix heuristic for one country.
type Builder struct {
	// Prefix is the full country+mobile prefix, e.g. "549".
	Prefix string
	// Region is the ISO region used for validation, e.g. "AR".
	Region string
}

// New returns a Builder, falling back to the Argentine defaults.
func New(prefix, region string) Builder {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if region == "" {
		region = DefaultRegion
	}
	return Builder{Prefix: prefix, Region: region}
}

// BuildLink normalises contact with the default Argentine prefix.
func BuildLink(contact string) (Link, error) {
	return New("", "").BuildLink(contact)
}

// BuildLink strips non-digits and leading zeros, then makes sure the number
// starts with the configured prefix. A number carrying only the country code
// gets the mobile digit inserted after it.
func (b Builder) BuildLink(contact string) (Link, error) {
	digits := onlyDigits(contact)
	if len(digits) < minDigits {
		return Link{}, ErrInvalidNumber
	}

	number := strings.TrimLeft(digits, "0")
	if number == "" {
		return Link{}, ErrInvalidNumber
	}

	country := countryCode(b.Prefix)
	switch {
	case strings.HasPrefix(number, b.Prefix):
	case country != "" && strings.HasPrefix(number, country):
		number = b.Prefix + strings.TrimPrefix(number, country)
	default:
		number = b.Prefix + number
	}

	return Link{
		Number: number,
		URL:    baseURL + number,
		Valid:  b.isValid(number),
	}, nil
}

func (b Builder) isValid(number string) bool {
	p, err := libphonenumber.Parse("+"+number, b.Region)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(p)
}

// countryCode drops the trailing mobile digit from the prefix ("549" -> "54").
func countryCode(prefix string) string {
	if len(prefix) < 2 {
		return ""
	}
	return prefix[:len(prefix)-1]
}

func onlyDigits(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
