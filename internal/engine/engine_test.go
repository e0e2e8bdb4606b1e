package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatool-io/metatool/internal/fieldset"
	"github.com/metatool-io/metatool/internal/plugin"
	"github.com/metatool-io/metatool/internal/registry"
)

type fakeValidator struct {
	datatypes map[string]bool
	info      string
	wrapper   plugin.DataWrapper
	panics    bool
}

func (v *fakeValidator) Supports(datatype string, _ plugin.Options) bool {
	return v.datatypes[datatype]
}

func (v *fakeValidator) Validate(_ context.Context, _, _ string, _ plugin.Options) *plugin.ValidationResult {
	if v.panics {
		panic("boom")
	}

	r := plugin.NewValidationResult()
	r.Provenance = "should-be-overwritten"

	if v.info != "" {
		r.AddInfo(v.info)
	}

	r.Data = v.wrapper

	return r
}

type fakeComparator struct {
	crossrefs map[string]bool
	panics    bool
}

func (c *fakeComparator) Supports(crossref string, _ plugin.Options) bool {
	return c.crossrefs[crossref]
}

func (c *fakeComparator) Compare(_, original, comparison string, _ plugin.Options) *plugin.ComparisonResult {
	if c.panics {
		panic("boom")
	}

	r := plugin.NewComparisonResult()
	r.Success = original == comparison

	return r
}

type fakeWrapper struct {
	source string
	data   map[string][]string
}

func (w *fakeWrapper) SourceName() string { return w.source }

func (w *fakeWrapper) Get(datatype string) []string {
	if values, ok := w.data[datatype]; ok {
		return values
	}

	return []string{}
}

type fakeGenerator struct {
	modeltype string
	fs        *fieldset.FieldSet
	err       error
}

func (g *fakeGenerator) Supports(modeltype string, _ plugin.Options) bool {
	return modeltype == g.modeltype
}

func (g *fakeGenerator) Generate(_ string, _ io.Reader, _ plugin.Options) ([]*fieldset.FieldSet, error) {
	if g.err != nil {
		return nil, g.err
	}

	return []*fieldset.FieldSet{g.fs}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateFieldStampsProvenanceInRegistrationOrder(t *testing.T) {
	reg := registry.New()
	reg.RegisterValidator("b.Second", &fakeValidator{datatypes: map[string]bool{"issn": true}})
	reg.RegisterValidator("a.First", &fakeValidator{datatypes: map[string]bool{"issn": true}})
	reg.RegisterValidator("c.Other", &fakeValidator{datatypes: map[string]bool{"doi": true}})

	e := New(reg, quietLogger())

	results := e.ValidateField(context.Background(), "issn", "1234-5679", plugin.DefaultOptions())

	require.Len(t, results, 2)
	assert.Equal(t, "b.Second", results[0].Provenance)
	assert.Equal(t, "a.First", results[1].Provenance)
}

func TestValidateFieldNoApplicableValidator(t *testing.T) {
	reg := registry.New()
	reg.RegisterValidator("a.First", &fakeValidator{datatypes: map[string]bool{"issn": true}})

	e := New(reg, quietLogger())

	results := e.ValidateField(context.Background(), "unmapped", "x", plugin.DefaultOptions())

	require.NotNil(t, results, "no-validator case must yield an empty slice, not nil")
	assert.Empty(t, results)
}

func TestValidateFieldRecoversPanickingValidator(t *testing.T) {
	reg := registry.New()
	reg.RegisterValidator("a.Panics", &fakeValidator{datatypes: map[string]bool{"issn": true}, panics: true})
	reg.RegisterValidator("b.Survives", &fakeValidator{datatypes: map[string]bool{"issn": true}, info: "fine"})

	e := New(reg, quietLogger())

	results := e.ValidateField(context.Background(), "issn", "1234-5679", plugin.DefaultOptions())

	require.Len(t, results, 2, "dispatch must continue past a panicking validator")
	assert.Equal(t, "a.Panics", results[0].Provenance)
	assert.True(t, results[0].HasErrors(), "a panic must surface as a generic error result")
	assert.Equal(t, []string{"fine"}, results[1].Info)
}

func TestValidateFieldSetCrossReference(t *testing.T) {
	wrapper := &fakeWrapper{
		source: "crossref",
		data: map[string][]string{
			"publication_identifier": {"10.1000/xyz", "10.9999/other"},
			"volume":                 {"7"},
		},
	}

	reg := registry.New()
	reg.RegisterValidator("identifiers.DOI", &fakeValidator{
		datatypes: map[string]bool{"doi": true},
		info:      "resolved",
		wrapper:   wrapper,
	})
	reg.RegisterValidator("number.Integer", &fakeValidator{datatypes: map[string]bool{"integer": true}})
	reg.RegisterComparator("test.Equal", &fakeComparator{crossrefs: map[string]bool{
		"publication_identifier": true,
		"volume":                 true,
	}})

	e := New(reg, quietLogger())

	fs := fieldset.New()
	fs.Field("doi", "doi", "publication_identifier", "10.1000/xyz")
	fs.Field("volume", "integer", "volume", "8")

	e.ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	doi, _ := fs.Lookup("doi")
	require.NotNil(t, doi.Comparison, "cross-reference was attempted, register must be installed")

	matches := doi.Comparison["10.1000/xyz"]
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Success)
	assert.Equal(t, "test.Equal", matches[0].Comparator)
	assert.Equal(t, "crossref", matches[0].DataSource)
	assert.Equal(t, "10.1000/xyz", matches[0].ComparedWith)

	require.Len(t, doi.Additional, 1, "the unmatched authority value becomes an additional")
	assert.Equal(t, "10.9999/other", doi.Additional[0].Value)
	assert.Equal(t, "crossref", doi.Additional[0].Source)

	volume, _ := fs.Lookup("volume")
	require.NotNil(t, volume.Comparison)

	unmatched, present := volume.Comparison["8"]
	require.True(t, present, "attempted value must carry an explicit marker")
	assert.Empty(t, unmatched, "attempted-but-unmatched is an empty slice")
	assert.NotNil(t, unmatched)
}

func TestValidateFieldSetNoWrappersSkipsCrossReference(t *testing.T) {
	reg := registry.New()
	reg.RegisterValidator("number.Integer", &fakeValidator{datatypes: map[string]bool{"integer": true}})
	reg.RegisterComparator("test.Equal", &fakeComparator{crossrefs: map[string]bool{"volume": true}})

	e := New(reg, quietLogger())

	fs := fieldset.New()
	fs.Field("volume", "integer", "volume", "8")

	e.ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	volume, _ := fs.Lookup("volume")
	assert.Nil(t, volume.Comparison, "no authority record was harvested, so nothing was attempted")
	assert.Nil(t, volume.Additional)
}

func TestValidateFieldSetFieldWithoutCrossrefUntouched(t *testing.T) {
	wrapper := &fakeWrapper{source: "crossref", data: map[string][]string{"volume": {"7"}}}

	reg := registry.New()
	reg.RegisterValidator("identifiers.DOI", &fakeValidator{
		datatypes: map[string]bool{"doi": true},
		wrapper:   wrapper,
	})
	reg.RegisterComparator("test.Equal", &fakeComparator{crossrefs: map[string]bool{"volume": true}})

	e := New(reg, quietLogger())

	fs := fieldset.New()
	fs.Field("doi", "doi", "", "10.1000/xyz")
	fs.Field("note", "freeform", "", "whatever")

	e.ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	for _, f := range fs.Fields() {
		assert.Nil(t, f.Comparison, "field %q has no crossref datatype", f.Name)
	}
}

func TestValidateFieldSetWrapperWithoutValuesLeavesRegisterAbsent(t *testing.T) {
	wrapper := &fakeWrapper{source: "crossref", data: map[string][]string{}}

	reg := registry.New()
	reg.RegisterValidator("identifiers.DOI", &fakeValidator{
		datatypes: map[string]bool{"doi": true},
		wrapper:   wrapper,
	})
	reg.RegisterComparator("test.Equal", &fakeComparator{crossrefs: map[string]bool{"publication_identifier": true}})

	e := New(reg, quietLogger())

	fs := fieldset.New()
	fs.Field("doi", "doi", "publication_identifier", "10.1000/xyz")

	e.ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	doi, _ := fs.Lookup("doi")
	assert.Nil(t, doi.Comparison, "an authority with no values for the datatype attempts nothing")
}

func TestHarvestDeduplicatesByIdentity(t *testing.T) {
	wrapper := &fakeWrapper{source: "crossref", data: map[string][]string{"volume": {"7"}}}

	reg := registry.New()
	reg.RegisterValidator("a.First", &fakeValidator{datatypes: map[string]bool{"doi": true}, wrapper: wrapper})
	reg.RegisterValidator("b.Second", &fakeValidator{datatypes: map[string]bool{"doi": true}, wrapper: wrapper})
	reg.RegisterComparator("test.Equal", &fakeComparator{crossrefs: map[string]bool{"volume": true}})

	e := New(reg, quietLogger())

	fs := fieldset.New()
	fs.Field("doi", "doi", "", "10.1000/xyz")
	fs.Field("volume", "integer", "volume", "9")

	e.ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	volume, _ := fs.Lookup("volume")
	require.Len(t, volume.Additional, 1,
		"the same wrapper attached to two results must be harvested once")
}

func TestValidateFieldSetRecoversPanickingComparator(t *testing.T) {
	wrapper := &fakeWrapper{source: "crossref", data: map[string][]string{"volume": {"7"}}}

	reg := registry.New()
	reg.RegisterValidator("identifiers.DOI", &fakeValidator{
		datatypes: map[string]bool{"doi": true},
		wrapper:   wrapper,
	})
	reg.RegisterComparator("test.Panics", &fakeComparator{crossrefs: map[string]bool{"volume": true}, panics: true})

	e := New(reg, quietLogger())

	fs := fieldset.New()
	fs.Field("doi", "doi", "", "10.1000/xyz")
	fs.Field("volume", "integer", "volume", "7")

	e.ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	volume, _ := fs.Lookup("volume")
	require.NotNil(t, volume.Comparison)
	assert.Empty(t, volume.Comparison["7"], "a panicking comparator yields no match")
	assert.Len(t, volume.Additional, 1)
}

func TestValidateModel(t *testing.T) {
	fs := fieldset.New()
	fs.Field("volume", "integer", "", "7")

	reg := registry.New()
	reg.RegisterValidator("number.Integer", &fakeValidator{datatypes: map[string]bool{"integer": true}, info: "ok"})
	reg.RegisterGenerator("test.Gen", &fakeGenerator{modeltype: "test_model", fs: fs})

	e := New(reg, quietLogger())

	t.Run("unknown model type", func(t *testing.T) {
		_, err := e.ValidateModel(context.Background(), "nope", strings.NewReader(""), plugin.DefaultOptions())
		assert.ErrorIs(t, err, ErrNoGenerator)
	})

	t.Run("generator failure is wrapped", func(t *testing.T) {
		failing := registry.New()
		failing.RegisterGenerator("test.Gen", &fakeGenerator{modeltype: "test_model", err: errors.New("bad xml")})

		_, err := New(failing, quietLogger()).ValidateModel(
			context.Background(), "test_model", strings.NewReader(""), plugin.DefaultOptions())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "test.Gen")
	})

	t.Run("happy path validates the generated fieldsets", func(t *testing.T) {
		sets, err := e.ValidateModel(context.Background(), "test_model", strings.NewReader(""), plugin.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, sets, 1)

		volume, _ := sets[0].Lookup("volume")
		require.Len(t, volume.Validation["7"], 1)
		assert.Equal(t, "number.Integer", volume.Validation["7"][0].Provenance)
	})
}

func TestValidateFieldSetDeterministicSerialization(t *testing.T) {
	build := func() *fieldset.FieldSet {
		fs := fieldset.New()
		fs.Field("doi", "doi", "publication_identifier", "10.1000/xyz")
		fs.Field("volume", "integer", "volume", "7", "8")

		return fs
	}

	wrapper := &fakeWrapper{
		source: "crossref",
		data: map[string][]string{
			"publication_identifier": {"10.1000/xyz"},
			"volume":                 {"7", "9"},
		},
	}

	reg := registry.New()
	reg.RegisterValidator("identifiers.DOI", &fakeValidator{
		datatypes: map[string]bool{"doi": true},
		info:      "resolved",
		wrapper:   wrapper,
	})
	reg.RegisterValidator("number.Integer", &fakeValidator{datatypes: map[string]bool{"integer": true}})
	reg.RegisterComparator("test.Equal", &fakeComparator{crossrefs: map[string]bool{
		"publication_identifier": true,
		"volume":                 true,
	}})

	e := New(reg, quietLogger())

	first := build()
	e.ValidateFieldSet(context.Background(), first, plugin.DefaultOptions())

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		next := build()
		e.ValidateFieldSet(context.Background(), next, plugin.DefaultOptions())

		nextJSON, err := json.Marshal(next)
		require.NoError(t, err)

		assert.Equal(t, string(firstJSON), string(nextJSON),
			"identical inputs must serialize byte-identically")
	}
}
