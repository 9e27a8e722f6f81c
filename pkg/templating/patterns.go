package templating

import "text/template"

// slots are the words drawn for one Generate call. Every pattern rendered
// during that call sees the same slots.
type slots struct {
	Character string
	Place     string
	Noun      string
	BaseVerb  string
	Verb      string
	Event     string
	Adjective string
}

// pattern is one parsed surface pattern. A non-empty family tags patterns
// that always produce a capped phrase.
type pattern struct {
	name   string
	family Family
	tmpl   *template.Template
}

var patternSources = []struct {
	name   string
	family Family
	text   string
}{
	{name: "possessive", text: `{{.Character}}'s {{.Noun}} {{.Event}}`},
	{name: "learns", text: `{{.Character}} Learns to {{.BaseVerb}}`},
	{name: "problems", text: `{{.Place}} Problems`},
	{name: "operation", family: FamilyOperation, text: `Operation {{.Noun}}`},
	{name: "license", family: FamilyLicense, text: `License to {{.BaseVerb}}`},
	{name: "and", text: `{{.Character}} and {{.Noun}} {{.Event}}`},
	{name: "does", text: `{{.Character}} {{.Verb}} {{.Noun}}`},
	{name: "adjective", text: `{{with .Adjective}}{{.}} {{end}}{{.Noun}} {{.Event}}`},
	{name: "in", text: `{{.Character}} in {{.Place}}`},
	{name: "makeover", family: FamilyMakeover, text: `{{.Noun}} Makeover`},
}

var contrastSource = `{{.Character}} vs {{.Noun}} {{.Event}}`

var (
	basePatterns    []pattern
	contrastPattern pattern
)

func init() {
	basePatterns = make([]pattern, 0, len(patternSources))
	for _, src := range patternSources {
		basePatterns = append(basePatterns, pattern{
			name:   src.name,
			family: src.family,
			tmpl:   template.Must(template.New(src.name).Parse(src.text)),
		})
	}
	contrastPattern = pattern{
		name: "contrast",
		tmpl: template.Must(template.New("contrast").Parse(contrastSource)),
	}
}
