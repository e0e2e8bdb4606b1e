// Package registry holds the process-wide roster of plugins, grouped by
// contract and indexed by stable name. A registry is built once at startup
// and never mutated afterwards, so it is safe to share across requests.
//
// Plugin names follow the <group>.<TypeName> convention (for example
// "bibliographics.ISSN"); they are stamped onto every result as provenance
// so users can attribute messages to the plugin that produced them.
package registry

import (
	"github.com/metatool-io/metatool/internal/fieldset"
	"github.com/metatool-io/metatool/internal/plugin"
)

type (
	// NamedValidator pairs a validator with its registry name.
	NamedValidator struct {
		Name      string
		Validator plugin.Validator
	}

	// NamedComparator pairs a comparator with its registry name.
	NamedComparator struct {
		Name       string
		Comparator plugin.Comparator
	}

	// NamedGenerator pairs a generator with its registry name.
	NamedGenerator struct {
		Name      string
		Generator fieldset.Generator
	}

	// Registry keeps the three plugin rosters in registration order.
	// Iteration order is the registration order, which fixes the ordering
	// of every result list the engine produces.
	Registry struct {
		validators  []NamedValidator
		comparators []NamedComparator
		generators  []NamedGenerator
	}
)

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// RegisterValidator adds a validator under the given name. Registering a
// duplicate name replaces the earlier instance but keeps its position.
func (r *Registry) RegisterValidator(name string, v plugin.Validator) {
	for i := range r.validators {
		if r.validators[i].Name == name {
			r.validators[i].Validator = v
			return
		}
	}

	r.validators = append(r.validators, NamedValidator{Name: name, Validator: v})
}

// RegisterComparator adds a comparator under the given name, with the same
// duplicate handling as RegisterValidator.
func (r *Registry) RegisterComparator(name string, c plugin.Comparator) {
	for i := range r.comparators {
		if r.comparators[i].Name == name {
			r.comparators[i].Comparator = c
			return
		}
	}

	r.comparators = append(r.comparators, NamedComparator{Name: name, Comparator: c})
}

// RegisterGenerator adds a generator under the given name, with the same
// duplicate handling as RegisterValidator.
func (r *Registry) RegisterGenerator(name string, g fieldset.Generator) {
	for i := range r.generators {
		if r.generators[i].Name == name {
			r.generators[i].Generator = g
			return
		}
	}

	r.generators = append(r.generators, NamedGenerator{Name: name, Generator: g})
}

// Validators returns the validators in registration order.
func (r *Registry) Validators() []NamedValidator {
	return r.validators
}

// Comparators returns the comparators in registration order.
func (r *Registry) Comparators() []NamedComparator {
	return r.comparators
}

// Generators returns the generators in registration order.
func (r *Registry) Generators() []NamedGenerator {
	return r.generators
}
