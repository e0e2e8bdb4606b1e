package plugins

import (
	"context"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/metatool-io/metatool/internal/plugin"
)

// TitleAbstract sanity-checks free-text fields: a title or abstract that is
// only a character or two long is almost certainly not the real thing.
type TitleAbstract struct{}

// Supports reports true for the title, description and abstract datatypes.
func (v *TitleAbstract) Supports(datatype string, _ plugin.Options) bool {
	switch strings.ToLower(datatype) {
	case "title", "description", "abstract":
		return true
	default:
		return false
	}
}

// Validate raises length warnings only; free text has no hard format.
func (v *TitleAbstract) Validate(_ context.Context, datatype, value string, _ plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	length := len([]rune(value))
	lower := strings.ToLower(datatype)

	if lower == "title" {
		switch {
		case length <= 1:
			r.AddWarn("title field is one character or less long - might not really be the title")
		case length <= 3:
			r.AddWarn("title is very short - might not really be the title")
		}

		return r
	}

	switch {
	case length <= 1:
		r.AddWarn("description/abstract field is one character or less long - very unlikely to be valid")
	case length <= 10:
		r.AddWarn("description/abstract is very short - it may not be the actual description/abstract, or may be inadequate")
	}

	return r
}

// Equivalent compares values that must match exactly: catalogue names,
// imprints and other literal crossrefs.
type Equivalent struct{}

// Supports reports true for the exact-match crossref datatypes.
func (c *Equivalent) Supports(crossref string, _ plugin.Options) bool {
	switch strings.ToLower(crossref) {
	case "journal", "journal_name", "journal_title", "publisher_name", "issn", "isbn", "edition", "uri":
		return true
	default:
		return false
	}
}

// Compare requires byte-exact equality.
func (c *Equivalent) Compare(_, original, comparison string, _ plugin.Options) *plugin.ComparisonResult {
	r := plugin.NewComparisonResult()
	r.Success = original == comparison

	return r
}

// LevenshteinDistance fuzzily compares long text such as titles and
// abstracts. The similarity ratio uses the classic weighting where a
// substitution costs two edits, so ratio = (len(a)+len(b)-distance) /
// (len(a)+len(b)).
type LevenshteinDistance struct{}

// Supports reports true for the free-text crossref datatypes.
func (c *LevenshteinDistance) Supports(crossref string, _ plugin.Options) bool {
	switch strings.ToLower(crossref) {
	case "title", "abstract", "description", "author":
		return true
	default:
		return false
	}
}

// Compare succeeds iff the ratio strictly exceeds the configured threshold.
// An inexact match carries the authority's spelling as a correction.
func (c *LevenshteinDistance) Compare(_, original, comparison string, opts plugin.Options) *plugin.ComparisonResult {
	r := plugin.NewComparisonResult()

	ratio := levenshtein.RatioForStrings([]rune(original), []rune(comparison), levenshtein.DefaultOptions)
	r.Success = ratio > opts.LevenshteinRatioThreshold

	if ratio != 1.0 {
		r.AddCorrection(comparison)
	}

	return r
}
