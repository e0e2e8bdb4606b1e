package authority

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metatool-io/metatool/internal/plugin"
)

const sampleHandleBody = `{
  "responseCode": 1,
  "handle": "2134/567",
  "values": [
    {"index": 1, "type": "URL", "data": {"format": "string", "value": "https://repository.example.org/item/567"}},
    {"index": 100, "type": "HS_ADMIN", "data": {"format": "admin", "value": {"handle": "0.NA/2134"}}}
  ]
}`

func newHandleResolver(doer Doer) *HandleResolver {
	return NewHandleResolver(NewClient(doer, plugin.DefaultOptions()))
}

func TestHandleResolve(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: sampleHandleBody}

	wrapper, resp, err := newHandleResolver(doer).Resolve(context.Background(), "2134/567")
	require.NoError(t, err)
	require.NotNil(t, wrapper)
	assert.True(t, resp.OK())
	assert.Contains(t, doer.lastReq.URL.String(), "hdl.handle.net/api/handles/2134/567")
}

func TestHandleResolveNotFound(t *testing.T) {
	t.Run("http 404", func(t *testing.T) {
		doer := &fakeDoer{status: http.StatusNotFound, body: `{"responseCode": 100}`}

		wrapper, resp, err := newHandleResolver(doer).Resolve(context.Background(), "2134/999")
		require.NoError(t, err)
		assert.Nil(t, wrapper)
		assert.True(t, resp.ClientError())
	})

	t.Run("responseCode 100 inside 200 body", func(t *testing.T) {
		doer := &fakeDoer{status: http.StatusOK, body: `{"responseCode": 100, "handle": "2134/999"}`}

		wrapper, resp, err := newHandleResolver(doer).Resolve(context.Background(), "2134/999")
		require.NoError(t, err)
		assert.Nil(t, wrapper, "the handle api reports not-found inside an OK body")
		assert.True(t, resp.OK())
	})
}

func TestHandleWrapperProjections(t *testing.T) {
	doer := &fakeDoer{status: http.StatusOK, body: sampleHandleBody}

	wrapper, _, err := newHandleResolver(doer).Resolve(context.Background(), "2134/567")
	require.NoError(t, err)

	assert.Equal(t, "handle", wrapper.SourceName())

	assert.Equal(t,
		[]string{"2134/567", "https://hdl.handle.net/2134/567"},
		wrapper.Get("publication_identifier"))

	assert.Equal(t,
		[]string{"https://repository.example.org/item/567"},
		wrapper.Get("url"),
		"only string-valued URL entries are projected")

	assert.Empty(t, wrapper.Get("title"))
}
