package plugins

import (
	"context"
	"strconv"
	"strings"

	"github.com/metatool-io/metatool/internal/plugin"
)

// Integer validates that a value parses as an integer.
type Integer struct{}

// Supports reports true for the integer datatype.
func (v *Integer) Supports(datatype string, _ plugin.Options) bool {
	return strings.ToLower(datatype) == "integer"
}

// Validate parses the value in base 10.
func (v *Integer) Validate(_ context.Context, _, value string, _ plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
		r.AddError("field content is not an integer")
		return r
	}

	r.AddInfo("field content is an integer")

	return r
}

// IntegersEqual compares numeric crossref values by integer equality, so
// "007" and "7" match.
type IntegersEqual struct{}

// Supports reports true for the numeric crossref datatypes.
func (c *IntegersEqual) Supports(crossref string, _ plugin.Options) bool {
	switch strings.ToLower(crossref) {
	case "volume", "issue", "number", "start_page", "end_page", "page_count":
		return true
	default:
		return false
	}
}

// Compare converts both sides to integers; a side that does not parse yields
// success == false rather than an error.
func (c *IntegersEqual) Compare(_, original, comparison string, _ plugin.Options) *plugin.ComparisonResult {
	r := plugin.NewComparisonResult()

	left, err := strconv.Atoi(strings.TrimSpace(original))
	if err != nil {
		return r
	}

	right, err := strconv.Atoi(strings.TrimSpace(comparison))
	if err != nil {
		return r
	}

	r.Success = left == right

	return r
}
