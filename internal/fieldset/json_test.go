package fieldset

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatool-io/metatool/internal/plugin"
)

func buildFieldSet() *FieldSet {
	fs := New()
	fs.Field("cfTitle", "title", "title", "A Study of Things")
	fs.Field("cfFedId/doi", "doi", "publication_identifier", "10.1000/xyz")

	title, _ := fs.Lookup("cfTitle")
	tr := plugin.NewValidationResult()
	tr.Provenance = "text.TitleAbstract"
	title.Validation["A Study of Things"] = []*plugin.ValidationResult{tr}

	doi, _ := fs.Lookup("cfFedId/doi")
	dr := plugin.NewValidationResult()
	dr.Provenance = "identifiers.DOI"
	dr.AddInfo("doi resolved in the crossref database")
	doi.Validation["10.1000/xyz"] = []*plugin.ValidationResult{dr}

	match := plugin.NewComparisonResult()
	match.Success = true
	match.Comparator = "identifiers.DOIEquivalent"
	match.DataSource = "crossref"
	match.ComparedWith = "https://doi.org/10.1000/xyz"

	doi.Comparison = map[string][]*plugin.ComparisonResult{
		"10.1000/xyz": {match},
	}
	doi.Additional = []Additional{
		{Value: "extra-value", Source: "crossref"},
		{Value: "extra-value", Source: "entrez"},
		{Value: "other", Source: "crossref"},
	}

	return fs
}

func TestMarshalKeyOrderFollowsInsertion(t *testing.T) {
	fs := buildFieldSet()

	b, err := json.Marshal(fs)
	require.NoError(t, err)

	s := string(b)
	assert.Less(t, strings.Index(s, `"cfTitle"`), strings.Index(s, `"cfFedId/doi"`),
		"field keys must appear in insertion order")
}

func TestMarshalComparisonAbsentWhenNotAttempted(t *testing.T) {
	fs := New()
	fs.Field("cfVol", "integer", "volume", "7")

	vol, _ := fs.Lookup("cfVol")
	vol.Validation["7"] = []*plugin.ValidationResult{}

	b, err := json.Marshal(fs)
	require.NoError(t, err)

	var decoded map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &decoded))

	_, present := decoded["cfVol"]["comparison"]
	assert.False(t, present, "comparison key must be absent when cross-reference never ran")

	_, present = decoded["cfVol"]["additional"]
	assert.False(t, present, "additional key must be absent when nothing was observed")
}

func TestMarshalComparisonEmptyWhenUnmatched(t *testing.T) {
	fs := New()
	fs.Field("cfVol", "integer", "volume", "7")

	vol, _ := fs.Lookup("cfVol")
	vol.Validation["7"] = []*plugin.ValidationResult{}
	vol.Comparison = map[string][]*plugin.ComparisonResult{"7": {}}

	b, err := json.Marshal(fs)
	require.NoError(t, err)

	var decoded map[string]struct {
		Comparison map[string][]json.RawMessage `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))

	results, present := decoded["cfVol"].Comparison["7"]
	require.True(t, present, "attempted value must carry a comparison key")
	assert.Empty(t, results, "unmatched value must serialize as []")
	assert.NotNil(t, results, "unmatched value must serialize as [], not null")
}

func TestMarshalAdditionalGroupsByValue(t *testing.T) {
	fs := buildFieldSet()

	b, err := json.Marshal(fs)
	require.NoError(t, err)

	var decoded map[string]struct {
		Additional map[string][]Additional `json:"additional"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))

	additional := decoded["cfFedId/doi"].Additional
	require.Len(t, additional, 2)
	require.Len(t, additional["extra-value"], 2)
	assert.Equal(t, "crossref", additional["extra-value"][0].Source)
	assert.Equal(t, "entrez", additional["extra-value"][1].Source)
	require.Len(t, additional["other"], 1)
}

func TestMarshalEmptyMessageStreams(t *testing.T) {
	fs := New()
	fs.Field("cfTitle", "title", "title", "A Study")

	title, _ := fs.Lookup("cfTitle")
	title.Validation["A Study"] = []*plugin.ValidationResult{plugin.NewValidationResult()}

	b, err := json.Marshal(fs)
	require.NoError(t, err)

	assert.Contains(t, string(b), `"info":[]`, "untouched streams must serialize as []")
	assert.NotContains(t, string(b), `"info":null`)
}

func TestMarshalDeterministic(t *testing.T) {
	fs := buildFieldSet()

	first, err := json.Marshal(fs)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := json.Marshal(fs)
		require.NoError(t, err)

		if !bytes.Equal(first, again) {
			t.Fatalf("serialization is not byte-identical across runs:\n%s\n%s", first, again)
		}
	}
}
