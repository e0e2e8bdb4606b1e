package plugins

import (
	"context"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/metatool-io/metatool/internal/plugin"
)

// ISO639 validates language codes against the ISO-639 tables and emits the
// sibling form (2-letter vs 3-letter) and the English name as alternatives.
type ISO639 struct{}

// Supports reports true for the iso-639-1, iso-639-2 and language datatypes.
func (v *ISO639) Supports(datatype string, _ plugin.Options) bool {
	switch strings.ToLower(datatype) {
	case "iso-639-1", "iso-639-2", "language":
		return true
	default:
		return false
	}
}

// Validate parses the tag and checks the code length expected by the
// datatype. Unknown codes fail; known codes gain their equivalent forms.
func (v *ISO639) Validate(_ context.Context, datatype, value string, _ plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	code := strings.ToLower(strings.TrimSpace(value))
	lower := strings.ToLower(datatype)

	if lower == "iso-639-1" && len(code) != 2 {
		r.AddError("iso-639-1 language codes are exactly two letters")
		return r
	}

	if lower == "iso-639-2" && len(code) != 3 {
		r.AddError("iso-639-2 language codes are exactly three letters")
		return r
	}

	tag, err := language.Parse(code)
	if err != nil {
		r.AddError("language code is not a recognized iso-639 code")
		return r
	}

	base, _ := tag.Base()

	r.AddInfo("language code is a recognized iso-639 code")

	if two := base.String(); len(two) == 2 && two != code {
		r.AddAlternative(two)
	}

	if three := base.ISO3(); three != "" && three != code {
		r.AddAlternative(three)
	}

	if name := display.English.Languages().Name(tag); name != "" {
		r.AddAlternative(name)
	}

	return r
}

// LanguageEquivalent compares language tags by normalizing both sides to
// their 3-letter ISO-639 form. When neither side is a recognized code the
// comparison falls back to case-folded string equality.
type LanguageEquivalent struct{}

// Supports reports true for the language crossref datatype.
func (c *LanguageEquivalent) Supports(crossref string, _ plugin.Options) bool {
	return strings.ToLower(crossref) == "language"
}

// Compare normalizes and compares.
func (c *LanguageEquivalent) Compare(_, original, comparison string, _ plugin.Options) *plugin.ComparisonResult {
	r := plugin.NewComparisonResult()

	left := normalizeLanguage(original)
	right := normalizeLanguage(comparison)

	if left != "" && right != "" {
		r.Success = left == right
		return r
	}

	r.Success = strings.EqualFold(strings.TrimSpace(original), strings.TrimSpace(comparison))

	return r
}

// normalizeLanguage maps a tag to its 3-letter base code, or "" when the tag
// is not recognized.
func normalizeLanguage(value string) string {
	tag, err := language.Parse(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		return ""
	}

	base, _ := tag.Base()

	return base.ISO3()
}
