// Package plugins provides metatool's concrete plugin roster: format and
// realism validators, cross-reference comparators and document generators,
// plus the default registry wiring them together.
package plugins

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/metatool-io/metatool/internal/plugin"
)

var (
	issnHyphenated = regexp.MustCompile(`^\d{4}-\d{3}[0-9X]$`)
	issnBare       = regexp.MustCompile(`^\d{7}[0-9X]$`)
)

// ISSN validates serial numbers: layout, hyphenation and the mod-11 check
// digit.
type ISSN struct{}

// Supports reports true for the issn datatype.
func (v *ISSN) Supports(datatype string, _ plugin.Options) bool {
	return strings.ToLower(datatype) == "issn"
}

// Validate checks the layout first; a bare 8-digit form earns a warning and
// a hyphenated correction, anything else fails outright. Digits that lay out
// correctly are then checked against the computed check digit.
func (v *ISSN) Validate(_ context.Context, _, value string, _ plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	if !issnHyphenated.MatchString(value) {
		if !issnBare.MatchString(value) {
			r.AddError("issn does not pass format check; should be in the form nnnn-nnnn")
			return r
		}

		r.AddWarn("issn consists of 8 valid digits, but is not hyphenated; recommended form for issns is nnnn-nnnn")
		r.AddCorrection(value[:4] + "-" + value[4:])
	}

	if issnChecksum(value) != value[len(value)-1:] {
		r.AddError("issn checksum digit does not match the calculated checksum")
		return r
	}

	r.AddInfo("issn checksum digit matches the calculated checksum")

	return r
}

// issnChecksum computes the ISSN check character over the first 7 digits.
func issnChecksum(issn string) string {
	digits := strings.ReplaceAll(issn, "-", "")

	total := 0
	for i := 0; i < 7; i++ {
		d, _ := strconv.Atoi(digits[i : i+1])
		total += d * (8 - i)
	}

	remainder := total % 11
	if remainder == 0 {
		return "0"
	}

	check := 11 - remainder
	if check == 10 {
		return "X"
	}

	return strconv.Itoa(check)
}

var (
	isbn10Pattern = regexp.MustCompile(`^\d{9}[0-9X]$`)
	isbn13Pattern = regexp.MustCompile(`^\d{12}[0-9X]$`)
)

// ISBN validates book numbers in both the 10 and 13 digit forms, tolerating
// hyphens, spaces and an "ISBN:" prefix.
type ISBN struct{}

// Supports reports true for the isbn, isbn10 and isbn13 datatypes.
func (v *ISBN) Supports(datatype string, _ plugin.Options) bool {
	switch strings.ToLower(datatype) {
	case "isbn", "isbn10", "isbn13":
		return true
	default:
		return false
	}
}

// Validate normalizes the common prefix forms away, then applies the
// checksum matching the digit count.
func (v *ISBN) Validate(_ context.Context, _, value string, _ plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	norm := strings.ToLower(strings.NewReplacer(" ", "", "-", "").Replace(value))
	norm = strings.TrimPrefix(norm, "isbn")
	norm = strings.TrimPrefix(norm, ":")
	norm = strings.ToUpper(norm)

	var checksum string

	switch {
	case isbn10Pattern.MatchString(norm):
		checksum = isbn10Checksum(norm)
	case isbn13Pattern.MatchString(norm):
		checksum = isbn13Checksum(norm)
	default:
		r.AddError("isbn does not pass format check; should be a 10 or 13 digit number (with optional hyphenation), possibly prefixed with 'ISBN:'")
		return r
	}

	if checksum != norm[len(norm)-1:] {
		r.AddError("isbn checksum does not match calculated checksum")
		return r
	}

	r.AddInfo("isbn checksum matches the calculated checksum")

	return r
}

// isbn10Checksum computes the ISBN-10 check character over the first 9
// digits.
func isbn10Checksum(isbn string) string {
	total := 0
	for i := 0; i < 9; i++ {
		d, _ := strconv.Atoi(isbn[i : i+1])
		total += (10 - i) * d
	}

	remainder := total % 11
	if remainder == 0 {
		return "0"
	}

	check := 11 - remainder
	if check == 10 {
		return "X"
	}

	return strconv.Itoa(check)
}

// isbn13Checksum computes the ISBN-13 check digit over the first 12 digits.
func isbn13Checksum(isbn string) string {
	total := 0

	for i := 0; i < 12; i++ {
		d, _ := strconv.Atoi(isbn[i : i+1])
		if i%2 == 1 {
			d *= 3
		}

		total += d
	}

	return strconv.Itoa((10 - total%10) % 10)
}
