package plugins

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/metatool-io/metatool/internal/plugin"
)

// Date validates that a value parses as a date under any common layout.
type Date struct{}

// Supports reports true for the date and published_date datatypes.
func (v *Date) Supports(datatype string, _ plugin.Options) bool {
	switch strings.ToLower(datatype) {
	case "date", "published_date":
		return true
	default:
		return false
	}
}

// Validate parses permissively; only a completely unparseable value fails.
func (v *Date) Validate(_ context.Context, _, value string, _ plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	if _, err := dateparse.ParseAny(strings.TrimSpace(value)); err != nil {
		r.AddError("unable to parse the supplied date")
		return r
	}

	r.AddInfo("date was successfully parsed")

	return r
}

// DatesSimilar compares dates across ambiguous layouts: each side is parsed
// under the month-first, day-first and year-first readings, and the
// comparison succeeds iff any reading of one side equals any reading of the
// other.
type DatesSimilar struct{}

// Supports reports true for the date crossref datatypes.
func (c *DatesSimilar) Supports(crossref string, _ plugin.Options) bool {
	switch strings.ToLower(crossref) {
	case "date", "published_date":
		return true
	default:
		return false
	}
}

// Compare never errors: a side with no valid reading simply cannot match.
func (c *DatesSimilar) Compare(_, original, comparison string, _ plugin.Options) *plugin.ComparisonResult {
	r := plugin.NewComparisonResult()

	for _, od := range readings(original) {
		for _, cd := range readings(comparison) {
			if od.Equal(cd) {
				r.Success = true
				return r
			}
		}
	}

	return r
}

// ambiguousNumeric matches all-numeric dates whose leading token could be a
// two-digit year as easily as a month or a day.
var ambiguousNumeric = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})[/.-](\d{1,2})$`)

// readings returns every distinct parse of the value under the ambiguous
// layout preferences: month-first, day-first and, for all-two-digit numeric
// forms, the year-first interpretations. A four-digit leading year is
// unambiguous and already handled by the general parser.
func readings(value string) []time.Time {
	value = strings.TrimSpace(value)

	var parsed []time.Time

	add := func(t time.Time) {
		for _, p := range parsed {
			if p.Equal(t) {
				return
			}
		}

		parsed = append(parsed, t)
	}

	for _, monthFirst := range []bool{true, false} {
		if t, err := dateparse.ParseAny(value, dateparse.PreferMonthFirst(monthFirst)); err == nil {
			add(t)
		}
	}

	// dateparse carries no year-first preference, so the year-first
	// readings come from explicit layouts over a separator-normalized copy.
	if m := ambiguousNumeric.FindStringSubmatch(value); m != nil {
		normalized := m[1] + "-" + m[2] + "-" + m[3]

		for _, layout := range []string{"06-1-2", "06-2-1"} {
			if t, err := time.Parse(layout, normalized); err == nil {
				add(t)
			}
		}
	}

	return parsed
}
