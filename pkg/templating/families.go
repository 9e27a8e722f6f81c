package templating

import "strings"

// Family is a structural class of title whose occurrences are capped per
// batch.
type Family string

const (
	FamilyMakeover  Family = "makeover"
	FamilyOperation Family = "operation"
	FamilyLicense   Family = "license"
)

// Families maps each phrase family to the predicate that detects it in a
// normalized title. The generator consults it before rendering, through the
// pattern's tag, and after rendering, through the text itself.
var Families = []struct {
	Family  Family
	Matches func(title string) bool
}{
	{FamilyMakeover, func(t string) bool { return strings.Contains(strings.ToLower(t), "makeover") }},
	{FamilyOperation, func(t string) bool { return strings.HasPrefix(strings.ToLower(t), "operation ") }},
	{FamilyLicense, func(t string) bool { return strings.HasPrefix(strings.ToLower(t), "license to ") }},
}

// MatchFamilies returns the families whose predicate matches title, in table
// order.
func MatchFamilies(title string) []Family {
	var out []Family
	for _, f := range Families {
		if f.Matches(title) {
			out = append(out, f.Family)
		}
	}
	return out
}
