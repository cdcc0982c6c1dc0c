package query

import (
	"fmt"
	"time"
)

// isoLayout is the date layout ReliefWeb expects in range filters.
const isoLayout = "2006-01-02T15:04:05+00:00"

// dateLayout is the plain calendar date accepted from callers. Month and day
// may be given with or without a leading zero.
const dateLayout = "2006-1-2"

// Params holds the loosely typed search parameters a caller (or the LLM tool layer) supplies.
// Nil pointers mean "not set" and contribute no filter condition.
type Params struct {
	Keyword            string  `json:"keyword"`
	DateFrom           *string `json:"date_from,omitempty"`
	DateTo             *string `json:"date_to,omitempty"`
	DisasterID         *string `json:"disaster_id,omitempty"`
	Country            *string `json:"country,omitempty"`
	Status             *string `json:"status,omitempty"`
	DisasterType       *string `json:"disaster_type,omitempty"`
	Format             *string `json:"format_name,omitempty"`
	Sort               *string `json:"sort,omitempty"`
	Limit              int     `json:"limit,omitempty"`
	Offset             int     `json:"offset,omitempty"`
	IncludeDescription bool    `json:"include_description,omitempty"`
}

// Validate checks pagination bounds. Limit 0 means "endpoint default".
func (p *Params) Validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", p.Limit)
	}
	if p.Offset < 0 {
		return fmt.Errorf("offset must be non-negative, got %d", p.Offset)
	}
	return nil
}

// hasDateRange reports whether both range bounds are present.
// A single bound is dropped on purpose.
func (p *Params) hasDateRange() bool {
	return p.DateFrom != nil && p.DateTo != nil
}

// ConvertToISO8601 turns a YYYY-MM-DD (or YYYY-M-D) date into midnight UTC in ReliefWeb's format.
// Anything that does not parse is returned unchanged, so an already converted
// value passes through untouched.
func ConvertToISO8601(s string) string {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(isoLayout)
}

// String returns a pointer to s. Handy for building Params literals.
func String(s string) *string { return &s }
