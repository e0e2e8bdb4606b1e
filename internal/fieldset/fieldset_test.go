package fieldset

import (
	"testing"

	"github.com/metatool-io/metatool/internal/plugin"
)

func TestFieldAddValueDeduplicates(t *testing.T) {
	f := &Field{}
	f.AddValue("a")
	f.AddValue("b")
	f.AddValue("a")
	f.AddValue("c")
	f.AddValue("b")

	want := []string{"a", "b", "c"}
	if len(f.Values) != len(want) {
		t.Fatalf("got %d values, want %d", len(f.Values), len(want))
	}

	for i, v := range want {
		if f.Values[i] != v {
			t.Errorf("Values[%d] = %q, want %q", i, f.Values[i], v)
		}
	}
}

func TestFieldSetInsertionOrder(t *testing.T) {
	fs := New()
	fs.Field("title", "title", "title", "A Study")
	fs.Field("issn", "issn", "issn", "1234-5679")
	fs.Field("volume", "integer", "volume", "7")

	names := make([]string, 0, fs.Len())
	for _, f := range fs.Fields() {
		names = append(names, f.Name)
	}

	want := []string{"title", "issn", "volume"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("field %d = %q, want %q", i, names[i], n)
		}
	}
}

func TestFieldSetRedeclareKeepsPosition(t *testing.T) {
	fs := New()
	fs.Field("a", "integer", "", "1")
	fs.Field("b", "integer", "", "2")
	fs.Field("a", "number", "issue", "3")

	if fs.Len() != 2 {
		t.Fatalf("got %d fields, want 2", fs.Len())
	}

	first := fs.Fields()[0]
	if first.Name != "a" {
		t.Errorf("first field = %q, want \"a\"", first.Name)
	}

	if first.Datatype != "number" || first.Crossref != "issue" {
		t.Errorf("redeclare did not update datatypes: %q/%q", first.Datatype, first.Crossref)
	}

	if len(first.Values) != 2 || first.Values[0] != "1" || first.Values[1] != "3" {
		t.Errorf("redeclare did not merge values: %v", first.Values)
	}
}

func TestFieldSetLookup(t *testing.T) {
	fs := New()
	fs.Add("title", "A Study")

	if _, ok := fs.Lookup("title"); !ok {
		t.Error("Lookup(\"title\") not found")
	}

	if _, ok := fs.Lookup("missing"); ok {
		t.Error("Lookup(\"missing\") unexpectedly found")
	}
}

func TestFieldStatus(t *testing.T) {
	withMessages := func(errs, warns []string) map[string][]*plugin.ValidationResult {
		r := plugin.NewValidationResult()
		r.Error = append(r.Error, errs...)
		r.Warn = append(r.Warn, warns...)

		return map[string][]*plugin.ValidationResult{"v": {r}}
	}

	tests := []struct {
		name       string
		validation map[string][]*plugin.ValidationResult
		want       Status
	}{
		{
			name:       "no results at all",
			validation: map[string][]*plugin.ValidationResult{},
			want:       StatusUnvalidated,
		},
		{
			name:       "dispatcher ran but no validator applied",
			validation: map[string][]*plugin.ValidationResult{"v": {}},
			want:       StatusUnvalidated,
		},
		{
			name:       "clean result",
			validation: withMessages(nil, nil),
			want:       StatusPassed,
		},
		{
			name:       "warnings only",
			validation: withMessages(nil, []string{"short"}),
			want:       StatusWarnings,
		},
		{
			name:       "errors trump warnings",
			validation: withMessages([]string{"bad"}, []string{"short"}),
			want:       StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Field{Name: "f", Values: []string{"v"}, Validation: tt.validation}
			if got := f.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}
