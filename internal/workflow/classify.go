package workflow

import (
	"strings"

	"github.com/deixis/buildcheck/internal/report"
)

// Severity markers, matched case-insensitively anywhere in a line.
const (
	InfoMarker    = "info:"
	WarningMarker = "warning:"
	ErrorMarker   = "error:"
	DebugMarker   = "debug:"
)

// Classify sorts the lines of output into severity buckets. Lines are
// split on "\n" only and kept verbatim. Each marker is checked
// independently, so a line can land in several buckets; lines without a
// marker are dropped.
func Classify(output string) report.Buckets {
	var b report.Buckets
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, InfoMarker) {
			b.Info = append(b.Info, line)
		}
		if strings.Contains(lower, WarningMarker) {
			b.Warnings = append(b.Warnings, line)
		}
		if strings.Contains(lower, ErrorMarker) {
			b.Errors = append(b.Errors, line)
		}
		if strings.Contains(lower, DebugMarker) {
			b.Debug = append(b.Debug, line)
		}
	}
	return b
}
