// Package plugin defines the contracts shared by every metatool plugin:
// validators, comparators and the records they produce, plus the DataWrapper
// handle through which authority adapters expose their records to the
// cross-reference pass.
package plugin

import (
	"context"
	"time"
)

// Default tuning values applied when an Options field is left at its zero
// value. See DefaultOptions.
const (
	DefaultLevenshteinRatioThreshold = 0.90
	DefaultHTTPTimeout               = 3 * time.Second
	DefaultUserAgent                 = "metatool/1.0 (https://github.com/metatool-io/metatool)"
)

// Options carries the tuning knobs passed through every validation and
// comparison call. It is a plain record rather than a free-form map so that
// plugins cannot invent undocumented settings.
type Options struct {
	// LevenshteinRatioThreshold is the similarity ratio a fuzzy text
	// comparison must strictly exceed to count as a match.
	LevenshteinRatioThreshold float64

	// HTTPTimeout is the hard per-call deadline for authority lookups.
	HTTPTimeout time.Duration

	// UserAgent identifies metatool to authority endpoints.
	UserAgent string

	// Offline disables authority-contacting realism checks entirely.
	// Format validation still runs.
	Offline bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		LevenshteinRatioThreshold: DefaultLevenshteinRatioThreshold,
		HTTPTimeout:               DefaultHTTPTimeout,
		UserAgent:                 DefaultUserAgent,
	}
}

// Normalize fills zero-valued tuning fields with their defaults.
func (o Options) Normalize() Options {
	if o.LevenshteinRatioThreshold == 0 {
		o.LevenshteinRatioThreshold = DefaultLevenshteinRatioThreshold
	}

	if o.HTTPTimeout == 0 {
		o.HTTPTimeout = DefaultHTTPTimeout
	}

	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}

	return o
}

// DataWrapper is an opaque handle to a record held by an external authority
// (CrossRef, Entrez, the handle system, ...). The engine never inspects the
// authority's native schema; adapters project it onto semantic datatypes.
//
// Implementations must be pointer types: the cross-reference pass
// de-duplicates harvested wrappers by identity.
type DataWrapper interface {
	// SourceName returns a stable identifier for the authority, e.g.
	// "crossref" or "entrez". It becomes the data_source of every
	// comparison made against this record.
	SourceName() string

	// Get returns the authority's values for the given semantic datatype,
	// de-duplicated and in a stable order. Unsupported or absent datatypes
	// yield an empty slice.
	Get(datatype string) []string
}

// ValidationResult is the outcome of one validator judging one value.
// Message slices are initialized empty so the JSON projection emits [] rather
// than null for untouched streams.
type ValidationResult struct {
	// Provenance is the registry name of the producing validator. It is
	// stamped by the dispatcher; anything a plugin writes here is
	// overwritten.
	Provenance string `json:"provenance"`

	Info        []string `json:"info"`
	Warn        []string `json:"warn"`
	Error       []string `json:"error"`
	Correction  []string `json:"correction"`
	Alternative []string `json:"alternative"`

	// Data optionally carries an authority record resolved while
	// validating, enabling the downstream cross-reference pass.
	Data DataWrapper `json:"-"`
}

// NewValidationResult returns a result with empty message streams.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Info:        []string{},
		Warn:        []string{},
		Error:       []string{},
		Correction:  []string{},
		Alternative: []string{},
	}
}

// AddInfo appends a confirmation or derived-fact message.
func (r *ValidationResult) AddInfo(msg string) { r.Info = append(r.Info, msg) }

// AddWarn appends a non-fatal concern.
func (r *ValidationResult) AddWarn(msg string) { r.Warn = append(r.Warn, msg) }

// AddError appends a validation failure.
func (r *ValidationResult) AddError(msg string) { r.Error = append(r.Error, msg) }

// AddCorrection appends a suggested literal replacement for the value.
func (r *ValidationResult) AddCorrection(s string) { r.Correction = append(r.Correction, s) }

// AddAlternative appends an equivalent form of the value.
func (r *ValidationResult) AddAlternative(s string) { r.Alternative = append(r.Alternative, s) }

// HasErrors reports whether the value failed validation.
func (r *ValidationResult) HasErrors() bool { return len(r.Error) > 0 }

// HasWarnings reports whether any warning was raised.
func (r *ValidationResult) HasWarnings() bool { return len(r.Warn) > 0 }

// ComparisonResult is the outcome of one comparator judging an input value
// against one authority value.
type ComparisonResult struct {
	// Success is true iff the comparator deemed the two values equivalent
	// under its rule.
	Success bool `json:"success"`

	// Comparator is the registry name of the producing comparator,
	// stamped by the engine.
	Comparator string `json:"comparator"`

	// DataSource names the authority whose record supplied ComparedWith,
	// stamped by the engine from the source DataWrapper.
	DataSource string `json:"data_source"`

	// ComparedWith is the literal authority-side value.
	ComparedWith string `json:"compared_with"`

	// Correction suggests replacements, typically the authority's
	// spelling when a fuzzy comparator matched inexactly.
	Correction []string `json:"correction"`
}

// NewComparisonResult returns a result with an empty correction stream.
func NewComparisonResult() *ComparisonResult {
	return &ComparisonResult{Correction: []string{}}
}

// AddCorrection appends a suggested replacement.
func (r *ComparisonResult) AddCorrection(s string) { r.Correction = append(r.Correction, s) }

// Validator judges a single (datatype, value) pair. Implementations may
// contact external authorities; such lookups must be best-effort and must
// surface transport failures as warnings, never as panics.
type Validator interface {
	// Supports reports whether this validator applies to the datatype.
	Supports(datatype string, opts Options) bool

	// Validate judges the value. The context bounds any authority calls.
	Validate(ctx context.Context, datatype, value string, opts Options) *ValidationResult
}

// Comparator judges the equivalence of an input value and an authority value
// under a crossref datatype. Comparators are pure: they never block and never
// panic; unparseable inputs yield Success == false.
type Comparator interface {
	// Supports reports whether this comparator applies to the crossref
	// datatype.
	Supports(crossref string, opts Options) bool

	// Compare judges original (input side) against comparison (authority
	// side).
	Compare(crossref, original, comparison string, opts Options) *ComparisonResult
}
