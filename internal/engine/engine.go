// Package engine implements the validation and cross-reference passes over a
// FieldSet: per-value validator dispatch, harvest of authority records from
// the collected results, and pairwise comparison of input values against
// authority values.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/metatool-io/metatool/internal/fieldset"
	"github.com/metatool-io/metatool/internal/plugin"
	"github.com/metatool-io/metatool/internal/registry"
)

// ErrNoGenerator is returned when no registered generator supports the
// requested model type.
var ErrNoGenerator = errors.New("no generator supports the model type")

// Engine drives plugins from an immutable registry. It holds no mutable
// state of its own, so a single Engine may serve concurrent requests;
// ordering within one FieldSet is fixed by registration and insertion order.
type Engine struct {
	reg    *registry.Registry
	logger *slog.Logger
}

// New creates an engine over the given registry. A nil logger defaults to
// slog's package-level logger.
func New(reg *registry.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{reg: reg, logger: logger}
}

// ValidateModel parses the document with the first generator that supports
// the model type, then validates and cross-references every resulting
// FieldSet.
func (e *Engine) ValidateModel(ctx context.Context, modeltype string, r io.Reader, opts plugin.Options) ([]*fieldset.FieldSet, error) {
	opts = opts.Normalize()

	for _, ng := range e.reg.Generators() {
		if !ng.Generator.Supports(modeltype, opts) {
			continue
		}

		fieldsets, err := ng.Generator.Generate(modeltype, r, opts)
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", ng.Name, err)
		}

		for _, fs := range fieldsets {
			e.ValidateFieldSet(ctx, fs, opts)
		}

		return fieldsets, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNoGenerator, modeltype)
}

// ValidateField runs every validator that supports the datatype, in
// registration order, and stamps each result with its plugin's name. The
// returned slice is empty (not nil) when no validator applies.
func (e *Engine) ValidateField(ctx context.Context, datatype, value string, opts plugin.Options) []*plugin.ValidationResult {
	results := []*plugin.ValidationResult{}

	for _, nv := range e.reg.Validators() {
		if !nv.Validator.Supports(datatype, opts) {
			continue
		}

		result := e.safeValidate(ctx, nv, datatype, value, opts)
		if result == nil {
			result = plugin.NewValidationResult()
		}

		result.Provenance = nv.Name
		results = append(results, result)
	}

	return results
}

// ValidateFieldSet enriches the FieldSet in place: Phase A fills the
// per-value validation results, Phase B harvests every DataWrapper those
// results carry, Phase C fills the per-value comparison results and the
// authority-only additionals. The FieldSet must not be mutated afterwards.
func (e *Engine) ValidateFieldSet(ctx context.Context, fs *fieldset.FieldSet, opts plugin.Options) {
	opts = opts.Normalize()

	// Phase A: individual validation.
	for _, f := range fs.Fields() {
		for _, v := range f.Values {
			f.Validation[v] = e.ValidateField(ctx, f.Datatype, v, opts)
		}
	}

	// Phase B: harvest authority records from the results.
	wrappers := harvest(fs)
	if len(wrappers) == 0 {
		return
	}

	// Phase C: cross-reference every field against every record.
	for _, f := range fs.Fields() {
		e.crossReference(f, wrappers, opts)
	}
}

// harvest collects every DataWrapper attached to any validation result, in
// field / value / result order, de-duplicated by identity.
func harvest(fs *fieldset.FieldSet) []plugin.DataWrapper {
	var wrappers []plugin.DataWrapper

	seen := make(map[plugin.DataWrapper]struct{})

	for _, f := range fs.Fields() {
		for _, v := range f.Values {
			for _, r := range f.Validation[v] {
				if r.Data == nil {
					continue
				}

				if _, dup := seen[r.Data]; dup {
					continue
				}

				seen[r.Data] = struct{}{}
				wrappers = append(wrappers, r.Data)
			}
		}
	}

	return wrappers
}

// crossReference compares the field's values against each wrapper's values
// for the field's crossref datatype. The comparison register is installed
// only when at least one (wrapper, comparator) pairing was attempted, so an
// absent Comparison map means "never attempted" while an empty entry means
// "attempted and unmatched".
func (e *Engine) crossReference(f *fieldset.Field, wrappers []plugin.DataWrapper, opts plugin.Options) {
	if f.Crossref == "" {
		return
	}

	comparators := e.supportingComparators(f.Crossref, opts)
	if len(comparators) == 0 {
		return
	}

	register := make(map[string][]*plugin.ComparisonResult)

	var additionals []fieldset.Additional

	for _, w := range wrappers {
		cmpValues := w.Get(f.Crossref)
		if len(cmpValues) == 0 {
			continue
		}

		remaining := e.listCompare(f, w, cmpValues, comparators, register, opts)
		for _, a := range remaining {
			additionals = append(additionals, fieldset.Additional{Value: a, Source: w.SourceName()})
		}
	}

	if len(register) > 0 {
		f.Comparison = register
	}

	if len(additionals) > 0 {
		f.Additional = additionals
	}
}

// listCompare runs every selected comparator over the cartesian product of
// input values and authority values, appending successes to the register and
// returning the authority values no input value matched.
func (e *Engine) listCompare(
	f *fieldset.Field,
	w plugin.DataWrapper,
	cmpValues []string,
	comparators []registry.NamedComparator,
	register map[string][]*plugin.ComparisonResult,
	opts plugin.Options,
) []string {
	additional := make([]string, len(cmpValues))
	copy(additional, cmpValues)

	for _, o := range f.Values {
		for _, c := range cmpValues {
			for _, nc := range comparators {
				result := e.safeCompare(nc, f.Crossref, o, c, opts)
				if result == nil {
					continue
				}

				result.ComparedWith = c
				result.Comparator = nc.Name
				result.DataSource = w.SourceName()

				if result.Success {
					register[o] = append(register[o], result)
					additional = remove(additional, c)
				}
			}
		}

		// Explicit attempted-but-unmatched marker.
		if _, ok := register[o]; !ok {
			register[o] = []*plugin.ComparisonResult{}
		}
	}

	return additional
}

// supportingComparators selects the comparators for a crossref datatype in
// registration order.
func (e *Engine) supportingComparators(crossref string, opts plugin.Options) []registry.NamedComparator {
	var selected []registry.NamedComparator

	for _, nc := range e.reg.Comparators() {
		if nc.Comparator.Supports(crossref, opts) {
			selected = append(selected, nc)
		}
	}

	return selected
}

// safeValidate isolates the dispatcher from a panicking validator: the panic
// is logged and converted into a generic error result so dispatch continues
// with the remaining plugins.
func (e *Engine) safeValidate(ctx context.Context, nv registry.NamedValidator, datatype, value string, opts plugin.Options) (result *plugin.ValidationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("validator panicked",
				slog.String("validator", nv.Name),
				slog.String("datatype", datatype),
				slog.Any("panic", rec),
			)

			result = plugin.NewValidationResult()
			result.AddError("validator failed internally")
		}
	}()

	return nv.Validator.Validate(ctx, datatype, value, opts)
}

// safeCompare isolates the engine from a panicking comparator. A panic is
// logged and yields an unsuccessful result.
func (e *Engine) safeCompare(nc registry.NamedComparator, crossref, original, comparison string, opts plugin.Options) (result *plugin.ComparisonResult) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error("comparator panicked",
				slog.String("comparator", nc.Name),
				slog.String("crossref", crossref),
				slog.Any("panic", rec),
			)

			result = plugin.NewComparisonResult()
		}
	}()

	return nc.Comparator.Compare(crossref, original, comparison, opts)
}

func remove(values []string, value string) []string {
	for i, v := range values {
		if v == value {
			return append(values[:i], values[i+1:]...)
		}
	}

	return values
}
