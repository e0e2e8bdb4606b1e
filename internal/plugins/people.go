package plugins

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/metatool-io/metatool/internal/authority"
	"github.com/metatool-io/metatool/internal/plugin"
)

// orcidAPI is the public ORCID record endpoint.
const orcidAPI = "https://pub.orcid.org/v3.0/"

var (
	orcidHyphenated = regexp.MustCompile(`(\d{4}-\d{4}-\d{4}-\d{3}[0-9X])`)
	orcidBare       = regexp.MustCompile(`(\d{15}[0-9X])`)
)

// ORCID validates researcher identifiers: layout, hyphenation, the canonical
// URL prefix and the mod-11-2 check digit, plus a best-effort existence
// check against the public ORCID registry.
type ORCID struct {
	client *authority.Client
}

// NewORCID returns an ORCID validator. A nil client disables the realism
// check.
func NewORCID(client *authority.Client) *ORCID {
	return &ORCID{client: client}
}

// Supports reports true for the orcid datatype.
func (v *ORCID) Supports(datatype string, _ plugin.Options) bool {
	return strings.ToLower(datatype) == "orcid"
}

// Validate runs the format rules and, when they leave a usable identifier,
// resolves it in the registry.
func (v *ORCID) Validate(ctx context.Context, _, value string, opts plugin.Options) *plugin.ValidationResult {
	r := plugin.NewValidationResult()

	oid := v.validateFormat(value, r)
	if oid == "" || opts.Offline || v.client == nil {
		return r
	}

	resp, err := v.client.Get(ctx, orcidAPI+oid, "application/json")

	switch {
	case errors.Is(err, authority.ErrTimeout):
		r.AddWarn("request to the orcid registry timed out; could not confirm the orcid exists")
	case err != nil:
		r.AddWarn("could not reach the orcid registry: " + err.Error())
	case resp.OK():
		r.AddInfo("orcid resolved in the orcid registry")
	case resp.ServerError():
		r.AddWarn("the orcid registry reported a server error; could not confirm the orcid exists")
	default:
		r.AddError("orcid could not be found in the orcid registry")
	}

	return r
}

// validateFormat applies the layout, checksum and prefix rules, returning
// the bare hyphenated identifier or "" when nothing usable was found.
func (v *ORCID) validateFormat(value string, r *plugin.ValidationResult) string {
	correctionRequired := false

	var oid string

	if m := orcidHyphenated.FindStringSubmatch(value); m != nil {
		oid = m[1]
	} else if m := orcidBare.FindStringSubmatch(value); m != nil {
		r.AddWarn("orcid lacks hyphenation; preferred format for orcid is nnnn-nnnn-nnnn-nnnn")

		oid = hyphenateORCID(m[1])
		correctionRequired = true
	} else {
		r.AddError("orcid could not be validated - format is incorrect")
		return ""
	}

	if orcidChecksum(oid) != oid[len(oid)-1:] {
		r.AddError("the calculated checksum did not match the provided checksum")
		return ""
	}

	// Identifiers are conventionally expressed as https://orcid.org/ URLs;
	// the bare number and legacy prefixes still resolve but deserve a nudge.
	switch {
	case strings.HasPrefix(value, "https://orcid.org/"):
	case strings.HasPrefix(value, "http://orcid.org/"):
		r.AddWarn("orcid starts with http://orcid.org/, which works, but the canonical prefix is https://orcid.org/")

		correctionRequired = true
	case strings.HasPrefix(value, "orcid.org/"), strings.HasPrefix(value, "www.orcid.org/"), strings.HasPrefix(value, "http://www.orcid.org/"), strings.HasPrefix(value, "https://www.orcid.org/"):
		r.AddWarn("orcid carries a non-canonical prefix; it should start with https://orcid.org/")

		correctionRequired = true
	default:
		r.AddError("orcid does not begin with the required prefix: https://orcid.org/")

		correctionRequired = true
	}

	// The ORCID API permits trailing path segments; anything beyond the
	// check character is suspicious in a metadata record.
	if !strings.HasSuffix(value, oid[len(oid)-1:]) {
		r.AddError("there appears to be content beyond the end of the identifier")

		correctionRequired = true
	}

	if correctionRequired {
		r.AddCorrection("https://orcid.org/" + oid)
	}

	return oid
}

// orcidChecksum computes the ISO 7064 mod-11-2 check character over the
// first 15 digits.
func orcidChecksum(oid string) string {
	digits := strings.ReplaceAll(strings.ReplaceAll(oid, "-", ""), " ", "")

	total := 0

	for i := 0; i < 15 && i < len(digits); i++ {
		d, _ := strconv.Atoi(digits[i : i+1])
		total = (total + d) * 2
	}

	remainder := total % 11
	check := (12 - remainder) % 11

	if check == 10 {
		return "X"
	}

	return strconv.Itoa(check)
}

func hyphenateORCID(s string) string {
	return s[:4] + "-" + s[4:8] + "-" + s[8:12] + "-" + s[12:]
}
