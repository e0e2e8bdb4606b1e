package plugins

import (
	"context"
	"slices"
	"testing"

	"github.com/metatool-io/metatool/internal/plugin"
)

func TestISO639Validate(t *testing.T) {
	v := &ISO639{}

	t.Run("two letter code gains its siblings", func(t *testing.T) {
		r := v.Validate(context.Background(), "iso-639-1", "en", plugin.DefaultOptions())

		if r.HasErrors() {
			t.Fatalf("unexpected errors: %v", r.Error)
		}

		if !slices.Contains(r.Alternative, "eng") {
			t.Errorf("expected the three letter form among alternatives: %v", r.Alternative)
		}

		if !slices.Contains(r.Alternative, "English") {
			t.Errorf("expected the English name among alternatives: %v", r.Alternative)
		}
	})

	t.Run("three letter code under iso-639-1 fails the length check", func(t *testing.T) {
		r := v.Validate(context.Background(), "iso-639-1", "eng", plugin.DefaultOptions())

		if !r.HasErrors() {
			t.Error("expected a length error")
		}
	})

	t.Run("two letter code under iso-639-2 fails the length check", func(t *testing.T) {
		r := v.Validate(context.Background(), "iso-639-2", "en", plugin.DefaultOptions())

		if !r.HasErrors() {
			t.Error("expected a length error")
		}
	})

	t.Run("three letter code under iso-639-2 passes", func(t *testing.T) {
		r := v.Validate(context.Background(), "iso-639-2", "deu", plugin.DefaultOptions())

		if r.HasErrors() {
			t.Fatalf("unexpected errors: %v", r.Error)
		}

		if !slices.Contains(r.Alternative, "de") {
			t.Errorf("expected the two letter form among alternatives: %v", r.Alternative)
		}
	})

	t.Run("unrecognized code fails", func(t *testing.T) {
		r := v.Validate(context.Background(), "language", "notalanguage", plugin.DefaultOptions())

		if !r.HasErrors() {
			t.Error("expected an unrecognized-code error")
		}
	})
}

func TestLanguageEquivalentCompare(t *testing.T) {
	tests := []struct {
		name       string
		original   string
		comparison string
		want       bool
	}{
		{"identical codes", "en", "en", true},
		{"two letter vs three letter", "en", "eng", true},
		{"case folded", "EN", "en", true},
		{"german forms", "de", "deu", true},
		{"different languages", "en", "de", false},
		{"unrecognized but equal strings", "q1x", "Q1X", true},
		{"unrecognized and different", "q1x", "q2x", false},
	}

	c := &LanguageEquivalent{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Compare("language", tt.original, tt.comparison, plugin.DefaultOptions())

			if r.Success != tt.want {
				t.Errorf("Compare(%q, %q) = %v, want %v", tt.original, tt.comparison, r.Success, tt.want)
			}
		})
	}
}
