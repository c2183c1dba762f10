package linkedin

import "github.com/jonathan/cv-importer/internal/types"

// FullName extracts the profile owner's name.
func (g *Grammar) FullName(text string) Match { return g.name.Eval(text) }

// Headline extracts the one-line professional headline.
func (g *Grammar) Headline(text string) Match { return g.headline.Eval(text) }

// Location extracts the profile location. The bare "City, Region" rule can pick up
// unrelated capitalized pairs; callers show the value for confirmation.
func (g *Grammar) Location(text string) Match { return g.location.Eval(text) }

// Email extracts the first e-mail address in the text.
func (g *Grammar) Email(text string) Match { return g.email.Eval(text) }

// ProfileURL extracts the public profile URL, always returned with a scheme.
func (g *Grammar) ProfileURL(text string) Match { return g.profileURL.Eval(text) }

// FieldRules exposes the rule names per personal field in precedence order.
func (g *Grammar) FieldRules() map[string][]string {
	return map[string][]string{
		types.FieldFullName:   g.name.Names(),
		types.FieldHeadline:   g.headline.Names(),
		types.FieldLocation:   g.location.Names(),
		types.FieldEmail:      g.email.Names(),
		types.FieldProfileURL: g.profileURL.Names(),
	}
}
