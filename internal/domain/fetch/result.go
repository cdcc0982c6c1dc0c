package fetch

import (
	"strings"

	"github.com/kailas-cloud/reliefqa/internal/domain/document"
)

// NoDataPrefix starts every NoData diagnostic.
const NoDataPrefix = "No data was returned for query: "

// Result is the outcome of a search fetch: either records or a NoData diagnostic.
// It never carries a Go error; callers branch on IsNoData.
type Result struct {
	records    []document.Record
	diagnostic string
	noData     bool
}

// OK wraps a successful fetch. A nil slice is normalized to empty.
func OK(records []document.Record) Result {
	if records == nil {
		records = []document.Record{}
	}
	return Result{records: records}
}

// NoData builds the failure variant with the given diagnostic text.
func NoData(diagnostic string) Result {
	return Result{diagnostic: diagnostic, noData: true}
}

// NoDataForQuery builds the failure variant for a rendered query. Single
// quotes in the rendering become double quotes.
func NoDataForQuery(renderedQuery string) Result {
	return NoData(NoDataPrefix + strings.ReplaceAll(renderedQuery, "'", `"`))
}

// IsNoData reports whether the fetch failed.
func (r Result) IsNoData() bool { return r.noData }

// Records returns the fetched records (nil for NoData).
func (r Result) Records() []document.Record { return r.records }

// Diagnostic returns the human-readable failure text ("" for OK).
func (r Result) Diagnostic() string { return r.diagnostic }

// Empty reports whether the fetch produced nothing usable.
func (r Result) Empty() bool { return r.noData || len(r.records) == 0 }
