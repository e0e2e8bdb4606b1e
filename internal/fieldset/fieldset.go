// Package fieldset provides the central in-memory structure populated by
// generators and enriched by the validation engine: an insertion-ordered set
// of named fields, each carrying its input values, per-value validation
// results, cross-reference results and authority-supplied additionals.
package fieldset

import (
	"io"

	"github.com/metatool-io/metatool/internal/plugin"
)

// Additional records one authority value that was observed in an external
// record but matched by no input value of the field.
type Additional struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Field holds everything known about one named field of an input document.
type Field struct {
	// Name is the free-form field name declared by the generator,
	// displayed verbatim.
	Name string

	// Datatype selects the validators that apply to this field's values.
	Datatype string

	// Crossref selects the comparators used when cross-referencing this
	// field against authority records. It may generalize the datatype
	// (e.g. "publication_identifier" covers doi, pmid and handle) and is
	// empty for fields that are never cross-referenced.
	Crossref string

	// Values are the input values, unique, in insertion order.
	Values []string

	// Validation maps each value to the results of every validator that
	// ran for it. An empty slice means the dispatcher ran and found no
	// applicable validator.
	Validation map[string][]*plugin.ValidationResult

	// Comparison maps each value to its successful cross-reference
	// matches. A nil map means cross-reference was never attempted; an
	// empty slice under a value means attempted but unmatched.
	Comparison map[string][]*plugin.ComparisonResult

	// Additional lists authority values absent from the input, in the
	// order they were observed. Nil when none were found.
	Additional []Additional
}

// AddValue appends a value, preserving insertion order and set semantics.
func (f *Field) AddValue(value string) {
	for _, v := range f.Values {
		if v == value {
			return
		}
	}

	f.Values = append(f.Values, value)
}

// Status classifies a field after validation. See the Status* constants.
type Status string

// Field statuses, from best to worst.
const (
	StatusPassed      Status = "passed"
	StatusWarnings    Status = "passed_with_warnings"
	StatusFailed      Status = "failed"
	StatusUnvalidated Status = "unvalidated"
)

// Status reports the aggregate validation outcome across all values of the
// field: failed if any result carries an error, unvalidated if no validator
// ran for any value, passed-with-warnings if warnings but no errors.
func (f *Field) Status() Status {
	validated := false
	warned := false

	for _, results := range f.Validation {
		for _, r := range results {
			validated = true

			if r.HasErrors() {
				return StatusFailed
			}

			if r.HasWarnings() {
				warned = true
			}
		}
	}

	if !validated {
		return StatusUnvalidated
	}

	if warned {
		return StatusWarnings
	}

	return StatusPassed
}

// FieldSet is an insertion-ordered collection of fields keyed by unique name.
// A generator constructs it empty and populates it; the engine enriches it in
// two passes; serializers then consume it read-only.
type FieldSet struct {
	fields []*Field
	index  map[string]*Field
}

// New returns an empty FieldSet.
func New() *FieldSet {
	return &FieldSet{index: make(map[string]*Field)}
}

// Field declares a field with its datatype and crossref datatype and appends
// the given values. Calling it again for the same name updates the datatypes
// and merges the values; the field keeps its original position.
func (fs *FieldSet) Field(name, datatype, crossref string, values ...string) {
	f := fs.ensure(name)
	f.Datatype = datatype
	f.Crossref = crossref

	for _, v := range values {
		f.AddValue(v)
	}
}

// Add appends values to a field, creating it if necessary.
func (fs *FieldSet) Add(name string, values ...string) {
	f := fs.ensure(name)
	for _, v := range values {
		f.AddValue(v)
	}
}

// SetDatatype sets the validator-facing datatype of a field.
func (fs *FieldSet) SetDatatype(name, datatype string) {
	fs.ensure(name).Datatype = datatype
}

// SetCrossref sets the comparator-facing datatype of a field.
func (fs *FieldSet) SetCrossref(name, crossref string) {
	fs.ensure(name).Crossref = crossref
}

// Fields returns the fields in insertion order. The slice is shared; callers
// must not reorder it.
func (fs *FieldSet) Fields() []*Field {
	return fs.fields
}

// Lookup returns the named field, if present.
func (fs *FieldSet) Lookup(name string) (*Field, bool) {
	f, ok := fs.index[name]
	return f, ok
}

// Len returns the number of fields.
func (fs *FieldSet) Len() int {
	return len(fs.fields)
}

func (fs *FieldSet) ensure(name string) *Field {
	if f, ok := fs.index[name]; ok {
		return f
	}

	f := &Field{
		Name:       name,
		Validation: make(map[string][]*plugin.ValidationResult),
	}
	fs.fields = append(fs.fields, f)
	fs.index[name] = f

	return f
}

// Generator parses an input document into one or more FieldSets. It is the
// seam between arbitrary input formats and the engine: for each field it
// declares the name, the validator-facing datatype, the comparator-facing
// crossref datatype and the values.
type Generator interface {
	// Supports reports whether this generator handles the model type.
	Supports(modeltype string, opts plugin.Options) bool

	// Generate parses the stream. A document with sub-records may yield
	// multiple FieldSets.
	Generate(modeltype string, r io.Reader, opts plugin.Options) ([]*FieldSet, error)
}
