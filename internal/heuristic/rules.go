package heuristic

import (
	"fmt"
	"strings"
)

// Category is the topic a question is classified under.
type Category string

// Query categories in precedence order.
const (
	CategoryProcedure   Category = "procedure"
	CategoryMedical     Category = "general_medical"
	CategoryExclusion   Category = "exclusion"
	CategoryMonetary    Category = "monetary"
	CategoryPreExisting Category = "pre_existing"
	CategoryGeneric     Category = "generic"
)

// termSet is a list of lower-case substrings.
type termSet []string

// in reports whether any term occurs in s. s must already be case-folded.
func (ts termSet) in(s string) bool {
	for _, term := range ts {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

var (
	procedureTerms   = termSet{"knee", "surgery", "surgical", "arthroscopy", "replacement"}
	medicalTerms     = termSet{"medical", "procedure", "treatment", "hospital", "health"}
	coverageTerms    = termSet{"cover", "coverage", "benefit", "eligible", "approved"}
	exclusionTerms   = termSet{"exclude", "exclusion", "not cover", "limitation"}
	monetaryTerms    = termSet{"$", "amount", "limit", "maximum"}
	preExistingTerms = termSet{"pre-existing", "existing condition", "prior condition"}
)

// evidence is the result of scanning policy text line by line.
type evidence struct {
	coverage  []string
	exclusion []string
	monetary  []string

	// preExisting is true if the text mentions pre-existing conditions at all.
	preExisting bool

	// empty is true if the text had no non-blank lines.
	empty bool
}

// affirmative returns the coverage lines that are not also exclusion lines.
// "not covered" contains "cover", so such lines land in both buckets.
func (ev evidence) affirmative() []string {
	excluded := make(map[string]bool, len(ev.exclusion))
	for _, line := range ev.exclusion {
		excluded[line] = true
	}
	var out []string
	for _, line := range ev.coverage {
		if !excluded[line] {
			out = append(out, line)
		}
	}
	return out
}

// rule maps a query category to its trigger terms and answer template.
type rule struct {
	category Category
	triggers termSet
	answer   func(ev evidence) string
}

// rules is evaluated top to bottom; the first rule whose triggers occur in
// the query wins. The generic rule has no triggers and always matches last.
var rules = []rule{
	{
		category: CategoryProcedure,
		triggers: procedureTerms,
		answer: func(ev evidence) string {
			if len(ev.coverage) == 0 {
				return "No explicit coverage clause for this procedure was found in the policy text." +
					exclusionNote(ev)
			}
			affirmed := ev.affirmative()
			if len(affirmed) == 0 {
				return fmt.Sprintf("Coverage for the procedure could not be confirmed: every coverage clause found "+
					"also states an exclusion or limitation.%s", quote(ev.coverage))
			}
			return fmt.Sprintf("Coverage for the procedure appears to be provided: %s found.%s%s",
				plural(len(affirmed), "coverage clause"), quote(affirmed), exclusionNote(ev))
		},
	},
	{
		category: CategoryMedical,
		triggers: medicalTerms,
		answer: func(ev evidence) string {
			if len(ev.coverage) == 0 {
				return "No clauses describing covered medical procedures or treatment were found in the policy text."
			}
			affirmed := ev.affirmative()
			if len(affirmed) == 0 {
				return fmt.Sprintf("The policy mentions medical services only in exclusion or limitation clauses.%s",
					quote(ev.coverage))
			}
			return fmt.Sprintf("The policy describes covered medical services in %s.%s",
				plural(len(affirmed), "coverage clause"), quote(affirmed))
		},
	},
	{
		category: CategoryExclusion,
		triggers: exclusionTerms,
		answer: func(ev evidence) string {
			if len(ev.exclusion) == 0 {
				return "No explicit exclusions or limitations were found in the policy text."
			}
			return fmt.Sprintf("The policy contains %s.%s",
				plural(len(ev.exclusion), "exclusion or limitation clause"), quote(ev.exclusion))
		},
	},
	{
		category: CategoryMonetary,
		triggers: monetaryTerms,
		answer: func(ev evidence) string {
			if len(ev.monetary) == 0 {
				return "No coverage amounts or monetary limits were found in the policy text."
			}
			return fmt.Sprintf("The policy states monetary amounts or limits in %s.%s",
				plural(len(ev.monetary), "clause"), quote(ev.monetary))
		},
	},
	{
		category: CategoryPreExisting,
		triggers: preExistingTerms,
		answer: func(ev evidence) string {
			if !ev.preExisting {
				return "The policy text does not mention pre-existing conditions."
			}
			return fmt.Sprintf("The policy addresses pre-existing conditions. Related text includes %s and %s.",
				plural(len(ev.coverage), "coverage clause"), plural(len(ev.exclusion), "exclusion clause"))
		},
	},
	{
		category: CategoryGeneric,
		answer: func(ev evidence) string {
			return fmt.Sprintf("Keyword analysis of the policy found %s, %s and %s.",
				plural(len(ev.coverage), "coverage clause"),
				plural(len(ev.exclusion), "exclusion clause"),
				plural(len(ev.monetary), "monetary clause"))
		},
	},
}

// conditionTrigger maps a phrase in the policy text to a fixed condition.
type conditionTrigger struct {
	term      string
	condition string
}

// conditionTriggers are tested in order; each present trigger adds its condition.
var conditionTriggers = []conditionTrigger{
	{"prior approval", "Requires prior approval"},
	{"emergency", "Emergency procedures may have different coverage terms"},
	{"cosmetic", "Cosmetic procedures are typically excluded"},
	{"orthopedic", "Orthopedic procedures are subject to specific policy terms"},
}

func exclusionNote(ev evidence) string {
	if len(ev.exclusion) == 0 {
		return ""
	}
	return fmt.Sprintf(" %s may also apply.", capitalise(plural(len(ev.exclusion), "exclusion or limitation clause")))
}

// quote returns the first matching line as a short citation.
func quote(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	line := lines[0]
	if len(line) > maxQuoteLen {
		cut := maxQuoteLen
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		line = strings.TrimSpace(line[:cut]) + "..."
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
		return fmt.Sprintf(" Most relevant: %q", line)
	}
	return fmt.Sprintf(" Most relevant: %q.", line)
}

const maxQuoteLen = 200

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
