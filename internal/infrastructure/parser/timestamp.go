package parser

import (
	"strings"
	"time"
)

// NormalizeTimestamp converts the forum's two timestamp shorthands into a
// canonical absolute timestamp string.
//
// Listings emit either a bare time-of-day ("13:05:32", meaning today) or a
// two-digit-year date ("25/07/18", a day without a time-of-day). The first
// form is prefixed with now formatted as yy/mm/dd; the second gets a "20"
// century prefix and a midnight time appended. Any other shape, the empty
// string included, passes through unchanged.
func NormalizeTimestamp(raw string, now time.Time) string {
	switch {
	case raw == "":
		return raw
	case strings.Contains(raw, ":"):
		return now.Format("06/01/02") + " " + raw
	case strings.Count(raw, "/") == 2:
		// The forum prints two-digit years; the fixed century prefix will
		// misparse dates after 2099.
		return "20" + raw + " 00:00:00"
	default:
		return raw
	}
}
