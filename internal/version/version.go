// Package version holds build metadata injected via ldflags.
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent identifies reliefqa to ReliefWeb and the report pages it reads,
// e.g. "reliefqa/1.4.0 (commit 3f2a9c1)".
func UserAgent() string {
	return fmt.Sprintf("reliefqa/%s (commit %s)", Version, Commit)
}
