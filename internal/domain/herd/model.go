package herd

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Animal is one head in the herd master. The table predates this system
// and keeps its legacy serial primary key; everything else in the schema
// is UUID-keyed.
type Animal struct {
	ID            int64            `json:"id" db:"id"`
	Series        string           `json:"series" db:"series"`
	Registration  string           `json:"registration" db:"registration"`
	Sex           string           `json:"sex" db:"sex"`
	Breed         string           `json:"breed" db:"breed"`
	AgeBracket    string           `json:"ageBracket" db:"age_bracket"`
	Weight        *decimal.Decimal `json:"weight,omitempty" db:"weight"`
	Notes         string           `json:"notes" db:"notes"`
	ArrivalDate   *time.Time       `json:"arrivalDate,omitempty" db:"arrival_date"`
	DiagnosisDate *time.Time       `json:"diagnosisDate,omitempty" db:"diagnosis_date"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`
}

// Key identifies an animal by its earring: a series token plus the
// registration number within that series.
type Key struct {
	Series       string
	Registration string
}

// Attributes carries the mergeable fields of an upsert. Zero values mean
// "leave the stored value alone": an upsert never blanks out data that a
// previous document already filled in.
type Attributes struct {
	Sex           string
	Breed         string
	AgeBracket    string
	Notes         string
	Weight        *decimal.Decimal
	ArrivalDate   *time.Time
	DiagnosisDate *time.Time
}

var earringPattern = regexp.MustCompile(`^([A-Za-z]+)[-\s]*([0-9]+)$`)

// ParseEarringTag splits a raw earring tag ("RPT123", "RPT-123", "RPT 123")
// into series and registration. Tags with no series prefix fall back to
// defaultSeries; tags that fit no pattern at all become a registration
// under the default series. Parsing never fails: paperwork tags are messy
// and a bad tag must not block document entry.
func ParseEarringTag(raw, defaultSeries string) Key {
	tag := strings.ToUpper(strings.TrimSpace(raw))
	if m := earringPattern.FindStringSubmatch(tag); m != nil {
		return Key{Series: m[1], Registration: m[2]}
	}
	return Key{Series: strings.ToUpper(defaultSeries), Registration: tag}
}

// Tag renders the key back into its canonical "SERIES-123" form.
func (k Key) Tag() string {
	if k.Series == "" {
		return k.Registration
	}
	return k.Series + "-" + k.Registration
}
