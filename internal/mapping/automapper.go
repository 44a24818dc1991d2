package mapping

import (
	"strings"

	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
)

// Match records which rule proposed an attribute for a field.
type Match struct {
	PdfField  string            `json:"pdf_field"`
	Attribute model.EntityField `json:"attribute"`
	Rule      string            `json:"rule"`
}

// Proposal is the result of an auto-map run.
type Proposal struct {
	Mapping model.Mapping `json:"mapping"`
	Added   int           `json:"added"`
	Matches []Match       `json:"matches,omitempty"`
}

// AutoMapper proposes mapping entries for unmapped fields using an ordered rule table.
type AutoMapper struct {
	rules []Rule
}

func NewAutoMapper() *AutoMapper {
	return &AutoMapper{rules: DefaultRules}
}

// Propose returns existing extended with an entry for every field that has no
// entry yet and matches a rule. Entries already present in existing are never
// changed, and existing itself is not modified.
func (a *AutoMapper) Propose(existing model.Mapping, fields []model.FieldDescriptor) Proposal {
	proposal := Proposal{Mapping: existing.Clone()}

	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if _, mapped := proposal.Mapping[field.Name]; mapped {
			continue
		}

		rule, ok := a.match(SearchText(field))
		if !ok {
			continue
		}

		proposal.Mapping[field.Name] = rule.Attribute
		proposal.Added++
		proposal.Matches = append(proposal.Matches, Match{
			PdfField:  field.Name,
			Attribute: rule.Attribute,
			Rule:      rule.Name,
		})
	}

	return proposal
}

func (a *AutoMapper) match(text string) (Rule, bool) {
	for _, rule := range a.rules {
		if rule.Pattern.MatchString(text) {
			return rule, true
		}
	}
	return Rule{}, false
}

// SearchText is the lower-cased "name alternate_name" string rules are matched against.
func SearchText(field model.FieldDescriptor) string {
	return strings.ToLower(field.Name + " " + field.AlternateName)
}
