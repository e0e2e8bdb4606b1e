package authority

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// entrezAPI is the NCBI Entrez esummary endpoint for PubMed.
const entrezAPI = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"

// Entrez looks PubMed identifiers up via the Entrez esummary API.
type Entrez struct {
	client *Client
}

// NewEntrez returns an Entrez resolver over the shared client.
func NewEntrez(client *Client) *Entrez {
	return &Entrez{client: client}
}

// Resolve fetches the esummary record for a PMID. Entrez reports unknown
// identifiers inside a 200 body, so a nil wrapper with an OK response means
// the PMID does not exist.
func (en *Entrez) Resolve(ctx context.Context, pmid string) (*EntrezWrapper, *Response, error) {
	query := url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"json"},
		"version": {"2.0"},
	}

	resp, err := en.client.Get(ctx, entrezAPI+"?"+query.Encode(), "application/json")
	if err != nil {
		return nil, nil, err
	}

	if !resp.OK() {
		return nil, resp, nil
	}

	var envelope struct {
		Result map[string]json.RawMessage `json:"result"`
	}

	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, resp, fmt.Errorf("parse entrez response: %w", err)
	}

	raw, ok := envelope.Result[pmid]
	if !ok {
		return nil, resp, nil
	}

	var doc entrezDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, resp, fmt.Errorf("parse entrez document: %w", err)
	}

	if doc.Error != "" {
		return nil, resp, nil
	}

	doc.PMID = pmid

	return &EntrezWrapper{doc: doc}, resp, nil
}

// entrezDoc is the subset of an esummary document the wrapper projects.
type entrezDoc struct {
	PMID            string         `json:"-"`
	Error           string         `json:"error"`
	Title           string         `json:"title"`
	FullJournalName string         `json:"fulljournalname"`
	Source          string         `json:"source"`
	Volume          string         `json:"volume"`
	Issue           string         `json:"issue"`
	Pages           string         `json:"pages"`
	PubDate         string         `json:"pubdate"`
	ISSN            string         `json:"issn"`
	ESSN            string         `json:"essn"`
	ArticleIDs      []entrezItemID `json:"articleids"`
	Authors         []entrezAuthor `json:"authors"`
}

type entrezItemID struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}

type entrezAuthor struct {
	Name string `json:"name"`
}

// EntrezWrapper projects a PubMed esummary document onto engine datatypes.
type EntrezWrapper struct {
	doc entrezDoc
}

// SourceName identifies PubMed Entrez as the authority.
func (w *EntrezWrapper) SourceName() string { return "entrez" }

// Get projects the document onto a semantic datatype.
func (w *EntrezWrapper) Get(datatype string) []string {
	switch strings.ToLower(datatype) {
	case "publication_identifier":
		return w.identifiers()
	case "pmid", "pubmed":
		return nonEmpty(w.doc.PMID)
	case "doi":
		return nonEmpty(w.articleID("doi"))
	case "title":
		return nonEmpty(w.doc.Title)
	case "journal", "journal_name", "journal_title":
		return dedupe([]string{w.doc.FullJournalName, w.doc.Source})
	case "issn":
		return dedupe([]string{w.doc.ISSN, w.doc.ESSN})
	case "volume":
		return nonEmpty(w.doc.Volume)
	case "issue":
		return nonEmpty(w.doc.Issue)
	case "author":
		return w.authors()
	case "date", "published_date":
		return nonEmpty(w.doc.PubDate)
	case "page_range":
		return nonEmpty(w.doc.Pages)
	case "start_page":
		start, _ := splitPages(w.doc.Pages)
		return nonEmpty(start)
	case "end_page":
		_, end := splitPages(w.doc.Pages)
		return nonEmpty(end)
	default:
		return []string{}
	}
}

func (w *EntrezWrapper) identifiers() []string {
	got := nonEmpty(w.doc.PMID)

	if doi := w.articleID("doi"); doi != "" {
		got = append(got, doi, "https://doi.org/"+doi)
	}

	return dedupe(got)
}

func (w *EntrezWrapper) articleID(idtype string) string {
	for _, id := range w.doc.ArticleIDs {
		if strings.EqualFold(id.IDType, idtype) {
			return id.Value
		}
	}

	return ""
}

func (w *EntrezWrapper) authors() []string {
	got := make([]string, 0, len(w.doc.Authors))

	for _, a := range w.doc.Authors {
		if a.Name != "" {
			got = append(got, a.Name)
		}
	}

	return dedupe(got)
}

func splitPages(pages string) (string, string) {
	bits := strings.SplitN(pages, "-", 2)
	if len(bits) != 2 {
		return pages, ""
	}

	return strings.TrimSpace(bits[0]), strings.TrimSpace(bits[1])
}
