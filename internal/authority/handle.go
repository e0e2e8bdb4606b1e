package authority

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// handleAPI is the handle system's REST resolution endpoint.
const handleAPI = "https://hdl.handle.net/api/handles/"

// Handle system response codes (per the HS REST API).
const (
	handleFound    = 1
	handleNotFound = 100
)

// HandleResolver resolves handles against the global handle registry.
type HandleResolver struct {
	client *Client
}

// NewHandleResolver returns a resolver over the shared client.
func NewHandleResolver(client *Client) *HandleResolver {
	return &HandleResolver{client: client}
}

// Resolve looks a handle up. The handle API reports "not found" both as an
// HTTP 404 and as responseCode 100 in a 200 body; either way the wrapper is
// nil and the response carries the status for classification.
func (hr *HandleResolver) Resolve(ctx context.Context, handle string) (*HandleWrapper, *Response, error) {
	resp, err := hr.client.Get(ctx, handleAPI+handle, "application/json")
	if err != nil {
		return nil, nil, err
	}

	if !resp.OK() {
		return nil, resp, nil
	}

	var record handleRecord
	if err := json.Unmarshal(resp.Body, &record); err != nil {
		return nil, resp, fmt.Errorf("parse handle response: %w", err)
	}

	if record.ResponseCode != handleFound {
		return nil, resp, nil
	}

	return &HandleWrapper{record: record}, resp, nil
}

type handleRecord struct {
	ResponseCode int           `json:"responseCode"`
	Handle       string        `json:"handle"`
	Values       []handleValue `json:"values"`
}

type handleValue struct {
	Type string          `json:"type"`
	Data handleValueData `json:"data"`
}

type handleValueData struct {
	Value json.RawMessage `json:"value"`
}

// HandleWrapper projects a handle record onto engine datatypes.
type HandleWrapper struct {
	record handleRecord
}

// SourceName identifies the handle system as the authority.
func (w *HandleWrapper) SourceName() string { return "handle" }

// Get projects the record onto a semantic datatype.
func (w *HandleWrapper) Get(datatype string) []string {
	switch strings.ToLower(datatype) {
	case "publication_identifier", "handle":
		got := nonEmpty(w.record.Handle)
		if w.record.Handle != "" {
			got = append(got, "https://hdl.handle.net/"+w.record.Handle)
		}

		return dedupe(got)
	case "uri", "url":
		return w.typedValues("URL")
	default:
		return []string{}
	}
}

// typedValues extracts the string values of a given handle value type.
func (w *HandleWrapper) typedValues(valueType string) []string {
	var got []string

	for _, v := range w.record.Values {
		if !strings.EqualFold(v.Type, valueType) {
			continue
		}

		var s string
		if err := json.Unmarshal(v.Data.Value, &s); err != nil {
			continue
		}

		got = append(got, s)
	}

	return dedupe(got)
}
