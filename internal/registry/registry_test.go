package registry

import (
	"context"
	"testing"

	"github.com/metatool-io/metatool/internal/plugin"
)

type stubValidator struct{ id int }

func (s *stubValidator) Supports(string, plugin.Options) bool { return true }

func (s *stubValidator) Validate(context.Context, string, string, plugin.Options) *plugin.ValidationResult {
	return plugin.NewValidationResult()
}

type stubComparator struct{}

func (s *stubComparator) Supports(string, plugin.Options) bool { return true }

func (s *stubComparator) Compare(string, string, string, plugin.Options) *plugin.ComparisonResult {
	return plugin.NewComparisonResult()
}

func TestRegistrationOrderPreserved(t *testing.T) {
	reg := New()
	reg.RegisterValidator("c", &stubValidator{})
	reg.RegisterValidator("a", &stubValidator{})
	reg.RegisterValidator("b", &stubValidator{})

	want := []string{"c", "a", "b"}
	got := reg.Validators()

	if len(got) != len(want) {
		t.Fatalf("got %d validators, want %d", len(got), len(want))
	}

	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("Validators()[%d].Name = %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestDuplicateNameReplacesInstanceKeepsPosition(t *testing.T) {
	reg := New()
	reg.RegisterValidator("a", &stubValidator{id: 1})
	reg.RegisterValidator("b", &stubValidator{id: 2})
	reg.RegisterValidator("a", &stubValidator{id: 3})

	got := reg.Validators()
	if len(got) != 2 {
		t.Fatalf("got %d validators, want 2", len(got))
	}

	if got[0].Name != "a" {
		t.Errorf("replaced validator moved: first entry is %q", got[0].Name)
	}

	sv, ok := got[0].Validator.(*stubValidator)
	if !ok || sv.id != 3 {
		t.Errorf("duplicate registration did not replace the instance")
	}
}

func TestComparatorsIndependentOfValidators(t *testing.T) {
	reg := New()
	reg.RegisterValidator("v", &stubValidator{})
	reg.RegisterComparator("c", &stubComparator{})

	if len(reg.Validators()) != 1 || len(reg.Comparators()) != 1 {
		t.Errorf("rosters leaked into each other: %d validators, %d comparators",
			len(reg.Validators()), len(reg.Comparators()))
	}

	if len(reg.Generators()) != 0 {
		t.Errorf("unexpected generators: %d", len(reg.Generators()))
	}
}
