package quote

import (
	"strconv"
	"strings"
)

// DefaultLabourHours is used when a duration field carries no parseable
// hours figure.
const DefaultLabourHours = 2

// ParseDurationField splits a service's duration/category compound field,
// e.g. "2 hours - Interim Service", into labour hours and the free-text
// category after the delimiter. The free-text category is independent of the
// dashboard category derived by Categorize. Unparseable hours fall back to
// DefaultLabourHours.
func ParseDurationField(field string) (hours float64, freeText string) {
	durationPart := field
	if before, after, found := strings.Cut(field, " - "); found {
		durationPart = before
		freeText = strings.TrimSpace(after)
	}

	hours = DefaultLabourHours
	fields := strings.Fields(durationPart)
	if len(fields) > 0 {
		if parsed, err := strconv.ParseFloat(fields[0], 64); err == nil && parsed > 0 {
			hours = parsed
		}
	}
	return hours, freeText
}
