package plugins

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/metatool-io/metatool/internal/fieldset"
	"github.com/metatool-io/metatool/internal/plugin"
)

// CERIF class scheme identifiers used by UKRISS outputs profiles.
const (
	schemeISO6391        = "iso:639-1"
	schemeEmbargoPeriods = "rcuk:oa-policy-embargo-periods-scheme-uuid"
	schemeGrantReference = "ukriss:grant-reference-scheme-uuid"
	schemeIdentifiers    = "ukriss:identifier-types-scheme-uuid"

	classGrant  = "grant-uuid"
	classHandle = "handle-uuid"
	classISBN   = "isbn-uuid"
	classISSN   = "issn-uuid"
	classPubMed = "pubmed-uuid"
	classDOI    = "doi-uuid"
)

// CERIFOutputs parses CERIF 1.6 research-outputs documents (the
// ukriss_outputs model type) into FieldSets. Title and abstract language
// attributes become their own FieldSets so language checks do not pollute
// the publication record's statuses.
type CERIFOutputs struct{}

// Supports reports true for the ukriss_outputs model type.
func (g *CERIFOutputs) Supports(modeltype string, _ plugin.Options) bool {
	return modeltype == "ukriss_outputs"
}

// Generate decodes the document and maps the publication record's elements,
// classes and federated identifiers onto fields.
func (g *CERIFOutputs) Generate(_ string, r io.Reader, _ plugin.Options) ([]*fieldset.FieldSet, error) {
	var doc cerifDocument

	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse cerif document: %w", err)
	}

	pub := doc.ResPubl

	var fieldsets []*fieldset.FieldSet

	fs := fieldset.New()

	addIfPresent(fs, "cfResPublDate", "date", "published_date", pub.Date)
	addIfPresent(fs, "cfVol", "integer", "volume", pub.Vol)
	addIfPresent(fs, "cfEdition", "edition", "edition", pub.Edition)
	addIfPresent(fs, "cfIssue", "number", "issue", pub.Issue)
	addIfPresent(fs, "cfStartPage", "integer", "start_page", pub.StartPage)
	addIfPresent(fs, "cfEndPage", "integer", "end_page", pub.EndPage)
	addIfPresent(fs, "cfTotalPages", "integer", "page_count", pub.TotalPages)
	addIfPresent(fs, "cfURI", "uri", "uri", pub.URI)

	if pub.Title != nil {
		fs.Field("cfTitle", "title", "title", strings.TrimSpace(pub.Title.Value))

		if pub.Title.Lang != "" {
			titleLang := fieldset.New()
			titleLang.Field("cfTitle/cfLangCode", "iso-639-1", "language", pub.Title.Lang)
			fieldsets = append(fieldsets, titleLang)
		}
	}

	if pub.Abstract != nil {
		fs.Field("cfAbstr", "abstract", "abstract", strings.TrimSpace(pub.Abstract.Value))

		if pub.Abstract.Lang != "" {
			absLang := fieldset.New()
			absLang.Field("cfAbstract/cfLangCode", "iso-639-1", "language", pub.Abstract.Lang)
			fieldsets = append(fieldsets, absLang)
		}
	}

	for _, class := range pub.Classes {
		switch class.SchemeID {
		case schemeISO6391:
			fs.Field("cfResPubl_Class/cfClassSchemeId/iso:639-1", "iso-639-1", "language", class.ClassID)
		case schemeEmbargoPeriods:
			fs.Field("cfResPubl_Class/"+schemeEmbargoPeriods, "embargo", "embargo", class.ClassID)
		}
	}

	for _, proj := range pub.Projects {
		if proj.SchemeID == schemeGrantReference && proj.ClassID == classGrant && proj.ProjID != "" {
			fs.Field("cfProj_ResPubl/cfClassSchemeId/grant", "grant_number", "grant_number", proj.ProjID)
		}
	}

	for _, fed := range pub.FedIDs {
		if fed.Class.SchemeID != schemeIdentifiers {
			continue
		}

		switch fed.Class.ClassID {
		case classHandle:
			fs.Field("cfFedId/handle", "handle", "publication_identifier", fed.ID)
		case classISBN:
			fs.Field("cfFedId/isbn", "isbn", "isbn", fed.ID)
		case classISSN:
			fs.Field("cfFedId/issn", "issn", "issn", fed.ID)
		case classPubMed:
			fs.Field("cfFedId/pubmed", "pmid", "publication_identifier", fed.ID)
		case classDOI:
			fs.Field("cfFedId/doi", "doi", "publication_identifier", fed.ID)
		}
	}

	fieldsets = append(fieldsets, fs)

	return fieldsets, nil
}

func addIfPresent(fs *fieldset.FieldSet, name, datatype, crossref, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	fs.Field(name, datatype, crossref, value)
}

// CERIF 1.6 document model, reduced to the elements the generator maps.

type cerifDocument struct {
	XMLName xml.Name
	ResPubl cerifResPubl `xml:"cfResPubl"`
}

type cerifResPubl struct {
	Date       string          `xml:"cfResPublDate"`
	Vol        string          `xml:"cfVol"`
	Edition    string          `xml:"cfEdition"`
	Issue      string          `xml:"cfIssue"`
	StartPage  string          `xml:"cfStartPage"`
	EndPage    string          `xml:"cfEndPage"`
	TotalPages string          `xml:"cfTotalPages"`
	URI        string          `xml:"cfURI"`
	Title      *cerifLangValue `xml:"cfTitle"`
	Abstract   *cerifLangValue `xml:"cfAbstr"`
	Classes    []cerifClass    `xml:"cfResPubl_Class"`
	Projects   []cerifProject  `xml:"cfProj_ResPubl"`
	FedIDs     []cerifFedID    `xml:"cfFedId"`
}

type cerifLangValue struct {
	Value string `xml:",chardata"`
	Lang  string `xml:"cfLangCode,attr"`
}

type cerifClass struct {
	SchemeID string `xml:"cfClassSchemeId"`
	ClassID  string `xml:"cfClassId"`
}

type cerifProject struct {
	SchemeID string `xml:"cfClassSchemeId"`
	ClassID  string `xml:"cfClassId"`
	ProjID   string `xml:"cfProjId"`
}

type cerifFedID struct {
	ID    string     `xml:"cfFedId"`
	Class cerifClass `xml:"cfFedId_Class"`
}
