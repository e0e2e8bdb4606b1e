package plugins

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatool-io/metatool/internal/authority"
	"github.com/metatool-io/metatool/internal/engine"
	"github.com/metatool-io/metatool/internal/fieldset"
	"github.com/metatool-io/metatool/internal/plugin"
)

// scriptedDoer replays one canned HTTP exchange for pipeline tests.
type scriptedDoer struct {
	status int
	body   string
	err    error
}

func (d *scriptedDoer) Do(*http.Request) (*http.Response, error) {
	if d.err != nil {
		return nil, d.err
	}

	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func newPipeline(doer authority.Doer) *engine.Engine {
	client := authority.NewClient(doer, plugin.DefaultOptions())

	return engine.New(Default(client), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPipelineDOICrossReference(t *testing.T) {
	doer := &scriptedDoer{
		status: http.StatusOK,
		body: `{"message": {
			"DOI": "10.1000/xyz",
			"URL": "https://doi.org/10.1000/xyz",
			"title": ["A Study of Things"]
		}}`,
	}

	fs := fieldset.New()
	fs.Field("cfFedId/doi", "doi", "publication_identifier", "10.1000/xyz")

	newPipeline(doer).ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	f, _ := fs.Lookup("cfFedId/doi")

	results := f.Validation["10.1000/xyz"]
	require.Len(t, results, 1)
	assert.Equal(t, "identifiers.DOI", results[0].Provenance)
	assert.False(t, results[0].HasErrors())
	require.NotNil(t, results[0].Data)

	// Both the bare DOI and its URL form projected by the authority record
	// compare as equivalent, so nothing is left over as an additional.
	require.NotNil(t, f.Comparison)

	matches := f.Comparison["10.1000/xyz"]
	require.Len(t, matches, 2)

	for _, m := range matches {
		assert.True(t, m.Success)
		assert.Equal(t, "identifiers.DOIEquivalent", m.Comparator)
		assert.Equal(t, "crossref", m.DataSource)
	}

	assert.Equal(t, "10.1000/xyz", matches[0].ComparedWith)
	assert.Equal(t, "https://doi.org/10.1000/xyz", matches[1].ComparedWith)

	assert.Empty(t, f.Additional)
	assert.Equal(t, fieldset.StatusPassed, f.Status())
}

func TestPipelineAuthorityTimeoutDegradesToWarning(t *testing.T) {
	doer := &scriptedDoer{err: fmt.Errorf("round trip: %w", context.DeadlineExceeded)}

	fs := fieldset.New()
	fs.Field("cfFedId/doi", "doi", "publication_identifier", "10.1000/xyz")

	newPipeline(doer).ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	f, _ := fs.Lookup("cfFedId/doi")

	results := f.Validation["10.1000/xyz"]
	require.Len(t, results, 1)
	assert.False(t, results[0].HasErrors(), "a timeout is never an existence denial")
	assert.True(t, results[0].HasWarnings())
	assert.Nil(t, results[0].Data)

	assert.Nil(t, f.Comparison, "no record was harvested, so nothing was attempted")
	assert.Equal(t, fieldset.StatusWarnings, f.Status())
}

func TestPipelineDeniedDOIFailsField(t *testing.T) {
	doer := &scriptedDoer{status: http.StatusNotFound, body: "Resource not found."}

	fs := fieldset.New()
	fs.Field("cfFedId/doi", "doi", "publication_identifier", "10.1000/nope")

	newPipeline(doer).ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	f, _ := fs.Lookup("cfFedId/doi")

	results := f.Validation["10.1000/nope"]
	require.Len(t, results, 1)
	assert.True(t, results[0].HasErrors(), "a 4xx is an explicit denial")
	assert.Equal(t, fieldset.StatusFailed, f.Status())
}

func TestPipelineTitleMismatchBecomesAdditional(t *testing.T) {
	doer := &scriptedDoer{
		status: http.StatusOK,
		body: `{"message": {
			"DOI": "10.1000/xyz",
			"title": ["The Ising model on a dynamically triangulated disk"]
		}}`,
	}

	fs := fieldset.New()
	fs.Field("cfFedId/doi", "doi", "", "10.1000/xyz")
	fs.Field("cfTitle", "title", "title", "The Ising Model")

	newPipeline(doer).ValidateFieldSet(context.Background(), fs, plugin.DefaultOptions())

	title, _ := fs.Lookup("cfTitle")
	require.NotNil(t, title.Comparison)

	unmatched, present := title.Comparison["The Ising Model"]
	require.True(t, present)
	assert.Empty(t, unmatched, "below the similarity threshold nothing matches")

	require.Len(t, title.Additional, 1)
	assert.Equal(t, "The Ising model on a dynamically triangulated disk", title.Additional[0].Value)
	assert.Equal(t, "crossref", title.Additional[0].Source)
}
