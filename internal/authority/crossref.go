package authority

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// crossRefAPI is the CrossRef REST works endpoint.
const crossRefAPI = "https://api.crossref.org/works/"

// CrossRef looks DOIs up in the CrossRef works API.
type CrossRef struct {
	client *Client
}

// NewCrossRef returns a CrossRef resolver over the shared client.
func NewCrossRef(client *Client) *CrossRef {
	return &CrossRef{client: client}
}

// Resolve fetches the work record for a DOI. On a 2xx with a parseable body
// it returns a wrapper; otherwise it returns the raw response so the caller
// can classify the status. The error return carries transport failures only.
func (cr *CrossRef) Resolve(ctx context.Context, doi string) (*CrossRefWrapper, *Response, error) {
	resp, err := cr.client.Get(ctx, crossRefAPI+url.PathEscape(doi), "application/json")
	if err != nil {
		return nil, nil, err
	}

	if !resp.OK() {
		return nil, resp, nil
	}

	var envelope struct {
		Message crossRefWork `json:"message"`
	}

	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, resp, fmt.Errorf("parse crossref response: %w", err)
	}

	return &CrossRefWrapper{work: envelope.Message}, resp, nil
}

// crossRefWork is the subset of a CrossRef work message the wrapper
// projects.
type crossRefWork struct {
	DOI            string          `json:"DOI"`
	URL            string          `json:"URL"`
	Title          []string        `json:"title"`
	ContainerTitle []string        `json:"container-title"`
	ISSN           []string        `json:"ISSN"`
	Volume         string          `json:"volume"`
	Issue          string          `json:"issue"`
	Page           string          `json:"page"`
	Publisher      string          `json:"publisher"`
	Author         []crossRefName  `json:"author"`
	Issued         crossRefPartial `json:"issued"`
}

type crossRefName struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossRefPartial struct {
	DateParts [][]int `json:"date-parts"`
}

// CrossRefWrapper projects a CrossRef work record onto engine datatypes.
type CrossRefWrapper struct {
	work crossRefWork
}

// SourceName identifies CrossRef as the authority.
func (w *CrossRefWrapper) SourceName() string { return "crossref" }

// Get projects the record onto a semantic datatype. The native CrossRef
// schema never leaks past this method.
func (w *CrossRefWrapper) Get(datatype string) []string {
	switch strings.ToLower(datatype) {
	case "publication_identifier", "doi":
		return w.identifiers()
	case "title":
		return dedupe(w.work.Title)
	case "journal", "journal_name", "journal_title":
		return dedupe(w.work.ContainerTitle)
	case "issn":
		return dedupe(w.work.ISSN)
	case "volume":
		return nonEmpty(w.work.Volume)
	case "issue":
		return nonEmpty(w.work.Issue)
	case "publisher", "publisher_name":
		return nonEmpty(w.work.Publisher)
	case "author":
		return w.authors()
	case "date", "published_date":
		return w.issued()
	case "start_page":
		start, _ := w.pagePair()
		return nonEmpty(start)
	case "end_page":
		_, end := w.pagePair()
		return nonEmpty(end)
	case "page_range":
		return nonEmpty(w.work.Page)
	case "page_count":
		return nonEmpty(w.pageCount())
	default:
		return []string{}
	}
}

func (w *CrossRefWrapper) identifiers() []string {
	got := nonEmpty(w.work.DOI)

	if w.work.DOI != "" {
		got = append(got, "https://doi.org/"+w.work.DOI)
	}

	if w.work.URL != "" {
		got = append(got, w.work.URL)
	}

	return dedupe(got)
}

func (w *CrossRefWrapper) authors() []string {
	got := make([]string, 0, len(w.work.Author))

	for _, a := range w.work.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name != "" {
			got = append(got, name)
		}
	}

	return dedupe(got)
}

// issued renders each issued date at its native granularity: "2006",
// "2006-01" or "2006-01-02".
func (w *CrossRefWrapper) issued() []string {
	got := make([]string, 0, len(w.work.Issued.DateParts))

	for _, parts := range w.work.Issued.DateParts {
		switch len(parts) {
		case 1:
			got = append(got, fmt.Sprintf("%04d", parts[0]))
		case 2:
			got = append(got, fmt.Sprintf("%04d-%02d", parts[0], parts[1]))
		case 3:
			got = append(got, fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2]))
		}
	}

	return dedupe(got)
}

// pagePair splits a hyphenated page range into its start and end pages.
func (w *CrossRefWrapper) pagePair() (string, string) {
	bits := strings.SplitN(w.work.Page, "-", 2)
	if len(bits) != 2 {
		return w.work.Page, ""
	}

	return strings.TrimSpace(bits[0]), strings.TrimSpace(bits[1])
}

// pageCount derives end - start from the page range, when both parse.
func (w *CrossRefWrapper) pageCount() string {
	startStr, endStr := w.pagePair()

	start, err := strconv.Atoi(startStr)
	if err != nil {
		return ""
	}

	end, err := strconv.Atoi(endStr)
	if err != nil {
		return ""
	}

	return strconv.Itoa(end - start)
}

// dedupe preserves first-seen order.
func dedupe(values []string) []string {
	got := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))

	for _, v := range values {
		if v == "" {
			continue
		}

		if _, dup := seen[v]; dup {
			continue
		}

		seen[v] = struct{}{}
		got = append(got, v)
	}

	return got
}

func nonEmpty(v string) []string {
	if v == "" {
		return []string{}
	}

	return []string{v}
}
