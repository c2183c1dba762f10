package linkedin

import "strings"

// section returns the body of a section: the text after its header line up to the
// first line starting with any other known header, or the end of the text.
// A keyword at the start of a line inside the body ("Education Consultant")
// also ends the section.
func (g *Grammar) section(text string, kind sectionKind) (string, bool) {
	header, ok := g.headers[kind]
	if !ok {
		return "", false
	}
	loc := header.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	body := text[loc[1]:]
	if end := g.terminators[kind].FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}
	return strings.Trim(body, " \t\n"), true
}
