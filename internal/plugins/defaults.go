package plugins

import (
	"github.com/metatool-io/metatool/internal/authority"
	"github.com/metatool-io/metatool/internal/registry"
)

// Default builds the standard plugin registry over the given authority
// client. Registration order is fixed here; it determines the order of every
// result list the engine produces, so entries are grouped by family and kept
// alphabetical within it.
func Default(client *authority.Client) *registry.Registry {
	reg := registry.New()

	reg.RegisterValidator("bibliographics.ISBN", &ISBN{})
	reg.RegisterValidator("bibliographics.ISSN", &ISSN{})
	reg.RegisterValidator("dates.Date", &Date{})
	reg.RegisterValidator("identifiers.DOI", NewDOI(authority.NewCrossRef(client)))
	reg.RegisterValidator("identifiers.Handle", NewHandle(authority.NewHandleResolver(client)))
	reg.RegisterValidator("identifiers.PMID", NewPMID(authority.NewEntrez(client)))
	reg.RegisterValidator("identifiers.URI", &URI{})
	reg.RegisterValidator("language.ISO639", &ISO639{})
	reg.RegisterValidator("number.Integer", &Integer{})
	reg.RegisterValidator("people.ORCID", NewORCID(client))
	reg.RegisterValidator("text.TitleAbstract", &TitleAbstract{})

	reg.RegisterComparator("dates.DatesSimilar", &DatesSimilar{})
	reg.RegisterComparator("identifiers.DOIEquivalent", &DOIEquivalent{})
	reg.RegisterComparator("language.LanguageEquivalent", &LanguageEquivalent{})
	reg.RegisterComparator("number.IntegersEqual", &IntegersEqual{})
	reg.RegisterComparator("text.Equivalent", &Equivalent{})
	reg.RegisterComparator("text.LevenshteinDistance", &LevenshteinDistance{})

	reg.RegisterGenerator("cerif.Outputs", &CERIFOutputs{})

	return reg
}
