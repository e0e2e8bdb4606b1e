package plugins

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/metatool-io/metatool/internal/authority"
	"github.com/metatool-io/metatool/internal/plugin"
)

// doiPattern captures the 10.x/... tail of a DOI, with or without the usual
// URL or "doi:" prefixes.
var doiPattern = regexp.MustCompile(`^(?i:(?:https?://)?(?:dx\.)?doi\.org/|doi:|info:doi/)?(10\.\d{4,9}/\S+)$`)

// normalizeDOI extracts the bare 10.x/... tail, or "" when the value does
// not look like a DOI at all.
func normalizeDOI(value string) string {
	m := doiPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return ""
	}

	return m[1]
}

// DOI validates DOIs: format first, then a best-effort existence check
// against the CrossRef works API. A successful lookup attaches a CrossRef
// DataWrapper for the cross-reference pass.
type DOI struct {
	crossref *authority.CrossRef
}

// NewDOI returns a DOI validator resolving against CrossRef.
func NewDOI(crossref *authority.CrossRef) *DOI {
	return &DOI{crossref: crossref}
}

// Supports reports true for the doi datatype.
func (v *DOI) Supports(datatype string, _ plugin.Options) bool {
	return strings.ToLower(datatype) == "doi"
}

// Validate checks the format and, unless running offline, resolves the DOI.
// Authority trouble degrades to a warning; only an explicit 4xx denial is an
// error.
func (v *DOI) Validate(ctx context.Context, _, value string, opts plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	doi := normalizeDOI(value)
	if doi == "" {
		r.AddError("doi does not pass format check; should be of the form 10.<registrant>/<suffix>, optionally prefixed with doi: or a doi.org URL")
		return r
	}

	if doi != value {
		r.AddAlternative(doi)
	}

	r.AddAlternative("https://doi.org/" + doi)

	if opts.Offline || v.crossref == nil {
		return r
	}

	wrapper, resp, err := v.crossref.Resolve(ctx, doi)

	switch {
	case errors.Is(err, authority.ErrTimeout):
		r.AddWarn("request to the crossref api timed out; could not confirm the doi exists")
	case err != nil:
		r.AddWarn("could not reach the crossref api: " + err.Error())
	case wrapper != nil:
		r.AddInfo("doi resolved in the crossref database")
		r.Data = wrapper
	case resp.ClientError():
		r.AddError("doi could not be found in the crossref database")
	case resp.ServerError():
		r.AddWarn("the crossref api reported a server error; could not confirm the doi exists")
	default:
		r.AddWarn("unexpected response from the crossref api; could not confirm the doi exists")
	}

	return r
}

// DOIEquivalent compares publication identifiers by stripping the optional
// URL or "doi:" prefixes and byte-comparing what remains. Values that carry
// no DOI prefix (PMIDs, bare handles) therefore compare by plain equality.
type DOIEquivalent struct{}

// Supports reports true for the publication_identifier and doi crossref
// datatypes.
func (c *DOIEquivalent) Supports(crossref string, _ plugin.Options) bool {
	switch strings.ToLower(crossref) {
	case "publication_identifier", "doi":
		return true
	default:
		return false
	}
}

// Compare strips prefixes from both sides and requires byte-exact equality
// of the tails.
func (c *DOIEquivalent) Compare(_, original, comparison string, _ plugin.Options) *plugin.ComparisonResult {
	r := plugin.NewComparisonResult()

	left := normalizeDOI(original)
	if left == "" {
		left = strings.TrimSpace(original)
	}

	right := normalizeDOI(comparison)
	if right == "" {
		right = strings.TrimSpace(comparison)
	}

	r.Success = left != "" && left == right

	return r
}

// pmidPattern matches bare PubMed identifiers.
var pmidPattern = regexp.MustCompile(`^\d{1,8}$`)

// PMID validates PubMed identifiers and confirms them against the Entrez
// esummary API, attaching an Entrez DataWrapper on success.
type PMID struct {
	entrez *authority.Entrez
}

// NewPMID returns a PMID validator resolving against Entrez.
func NewPMID(entrez *authority.Entrez) *PMID {
	return &PMID{entrez: entrez}
}

// Supports reports true for the pmid and pubmed datatypes.
func (v *PMID) Supports(datatype string, _ plugin.Options) bool {
	switch strings.ToLower(datatype) {
	case "pmid", "pubmed":
		return true
	default:
		return false
	}
}

// Validate tolerates a "PMID:" prefix with a warning and correction, then
// confirms existence via Entrez. Entrez reports unknown identifiers inside a
// 200 body, which counts as an explicit denial.
func (v *PMID) Validate(ctx context.Context, _, value string, opts plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	pmid := strings.TrimSpace(value)
	if rest, found := strings.CutPrefix(strings.ToUpper(pmid), "PMID:"); found {
		pmid = strings.TrimSpace(rest)

		r.AddWarn("pmid carries a PMID: prefix; the bare number is the preferred form")
		r.AddCorrection(pmid)
	}

	if !pmidPattern.MatchString(pmid) {
		r.AddError("pmid does not pass format check; should be a number of up to 8 digits")
		return r
	}

	if opts.Offline || v.entrez == nil {
		return r
	}

	wrapper, resp, err := v.entrez.Resolve(ctx, pmid)

	switch {
	case errors.Is(err, authority.ErrTimeout):
		r.AddWarn("request to the entrez api timed out; could not confirm the pmid exists")
	case err != nil:
		r.AddWarn("could not reach the entrez api: " + err.Error())
	case wrapper != nil:
		r.AddInfo("pmid resolved in the pubmed database")
		r.Data = wrapper
	case resp.ServerError():
		r.AddWarn("the entrez api reported a server error; could not confirm the pmid exists")
	default:
		r.AddError("pmid could not be found in the pubmed database")
	}

	return r
}

// handlePattern matches handle identifiers: a dotted numeric prefix and a
// non-empty suffix.
var handlePattern = regexp.MustCompile(`^\d+(\.\d+)*/\S+$`)

// Handle validates handle-system identifiers and resolves them against the
// global handle registry.
type Handle struct {
	resolver *authority.HandleResolver
}

// NewHandle returns a handle validator resolving against hdl.handle.net.
func NewHandle(resolver *authority.HandleResolver) *Handle {
	return &Handle{resolver: resolver}
}

// Supports reports true for the handle datatype.
func (v *Handle) Supports(datatype string, _ plugin.Options) bool {
	return strings.ToLower(datatype) == "handle"
}

// Validate strips an optional hdl.handle.net URL form, checks the
// prefix/suffix layout, then resolves.
func (v *Handle) Validate(ctx context.Context, _, value string, opts plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	handle := strings.TrimSpace(value)
	for _, prefix := range []string{"https://hdl.handle.net/", "http://hdl.handle.net/", "hdl:"} {
		if rest, found := strings.CutPrefix(handle, prefix); found {
			handle = rest

			r.AddAlternative(handle)

			break
		}
	}

	if !handlePattern.MatchString(handle) {
		r.AddError("handle does not pass format check; should be of the form <naming-authority>/<local-name>")
		return r
	}

	if opts.Offline || v.resolver == nil {
		return r
	}

	wrapper, resp, err := v.resolver.Resolve(ctx, handle)

	switch {
	case errors.Is(err, authority.ErrTimeout):
		r.AddWarn("request to the handle resolver timed out; could not confirm the handle exists")
	case err != nil:
		r.AddWarn("could not reach the handle resolver: " + err.Error())
	case wrapper != nil:
		r.AddInfo("handle resolved in the handle registry")
		r.Data = wrapper
	case resp.ServerError():
		r.AddWarn("the handle resolver reported a server error; could not confirm the handle exists")
	default:
		r.AddError("handle could not be found in the handle registry")
	}

	return r
}

// URI validates that a value is an absolute URI with a scheme and host.
type URI struct{}

// Supports reports true for the uri and url datatypes.
func (v *URI) Supports(datatype string, _ plugin.Options) bool {
	switch strings.ToLower(datatype) {
	case "uri", "url":
		return true
	default:
		return false
	}
}

// Validate parses the value and requires both a scheme and a host.
func (v *URI) Validate(_ context.Context, _, value string, _ plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		r.AddError("uri could not be parsed: " + err.Error())
		return r
	}

	if u.Scheme == "" || u.Host == "" {
		r.AddError("uri is not absolute; it should carry a scheme and a host")
		return r
	}

	r.AddInfo("uri is a well-formed absolute uri")

	return r
}
