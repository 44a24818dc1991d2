package mapping

import (
	"regexp"

	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
)

// Rule is one (attribute, pattern) pair of the auto-map table.
type Rule struct {
	Name      string
	Attribute model.EntityField
	Pattern   *regexp.Regexp
}

// sep matches the separators seen between words in field names and tooltips.
const sep = `[\s_\-.]*`

// token wraps p so it only matches as a whole word; digits and punctuation
// count as boundaries so "addr_line1" still yields the token "addr".
func token(p string) *regexp.Regexp {
	return regexp.MustCompile(`(^|[^a-z])(` + p + `)([^a-z]|$)`)
}

// DefaultRules is evaluated top to bottom and the first match wins. Attributes
// appear in priority order name, street_address, city, state, zip_code; within
// an attribute specific patterns come before the catch-all substring.
var DefaultRules = []Rule{
	{Name: "qualified-name", Attribute: model.FieldName,
		Pattern: token(`(full|legal|company|business|organization|organisation|entity|taxpayer|payee|org)` + sep + `name`)},
	{Name: "bare-name", Attribute: model.FieldName,
		Pattern: token(`name`)},
	{Name: "name-substring", Attribute: model.FieldName,
		Pattern: regexp.MustCompile(`name`)},

	{Name: "street-address", Attribute: model.FieldStreetAddress,
		Pattern: token(`(street|mailing|physical|business|home)` + sep + `addr(ess)?`)},
	{Name: "address-line", Attribute: model.FieldStreetAddress,
		Pattern: token(`addr(ess)?` + sep + `(line)?` + sep + `1?`)},
	{Name: "street", Attribute: model.FieldStreetAddress,
		Pattern: token(`street`)},
	{Name: "address-substring", Attribute: model.FieldStreetAddress,
		Pattern: regexp.MustCompile(`address`)},

	{Name: "city", Attribute: model.FieldCity,
		Pattern: token(`city`)},
	{Name: "town", Attribute: model.FieldCity,
		Pattern: token(`(town|municipality)`)},
	{Name: "city-substring", Attribute: model.FieldCity,
		Pattern: regexp.MustCompile(`city`)},

	{Name: "state", Attribute: model.FieldState,
		Pattern: token(`state`)},
	{Name: "province", Attribute: model.FieldState,
		Pattern: token(`(province|region)`)},
	{Name: "state-substring", Attribute: model.FieldState,
		Pattern: regexp.MustCompile(`state`)},

	{Name: "zip-code", Attribute: model.FieldZipCode,
		Pattern: token(`zip` + sep + `(code)?`)},
	{Name: "postal-code", Attribute: model.FieldZipCode,
		Pattern: token(`(postal` + sep + `code|postcode)`)},
	{Name: "zip-substring", Attribute: model.FieldZipCode,
		Pattern: regexp.MustCompile(`zip`)},
}
