package pipeline

import (
	"regexp"
	"strings"
)

// CalloutCategory is one of the five fixed callout kinds.
type CalloutCategory int

// Callout categories.
const (
	CalloutCodeReference CalloutCategory = iota
	CalloutArchitecture
	CalloutNarrative
	CalloutImplementation
	CalloutCrossReference
)

// calloutKind describes the authoring syntax of a category.
type calloutKind struct {
	category CalloutCategory
	tag      string
	icon     string
	label    string
	titled   bool // accepts a free-text title after the colon
}

var calloutKinds = []calloutKind{
	{CalloutCodeReference, "code-reference", "\U0001F4C1", "Code Reference", true},
	{CalloutArchitecture, "architecture", "\U0001F3D7", "System Architecture", true},
	{CalloutNarrative, "narrative", "\U0001F4D6", "Narrative Context", true},
	{CalloutImplementation, "implementation", "⚡", "Implementation Pattern", true},
	{CalloutCrossReference, "cross-reference", "\U0001F517", "Related Components", false},
}

// String returns the category tag used in the emitted block class.
func (c CalloutCategory) String() string {
	for _, k := range calloutKinds {
		if k.category == c {
			return k.tag
		}
	}
	return "unknown"
}

// Label returns the author-facing label of the category.
func (c CalloutCategory) Label() string {
	for _, k := range calloutKinds {
		if k.category == c {
			return k.label
		}
	}
	return ""
}

// Callout is a parsed callout block.
type Callout struct {
	Category CalloutCategory
	Title    string
	Body     string
}

// > **<icon>[VS16] <Label>:<title>**
var calloutHeader = regexp.MustCompile(`^>\s?\*\*(\S+?)\x{FE0F}?\s+([A-Za-z][A-Za-z ]*?):\s*(.*?)\*\*\s*$`)

// RestructureCallouts rewrites every recognized callout blockquote into a
// fenced div carrying the category class. Other blockquotes and fenced
// code are left untouched.
func RestructureCallouts(text string) string {
	out, _ := scanCallouts(text)
	return out
}

// ParseCallouts returns the callouts recognized in text, in order.
func ParseCallouts(text string) []Callout {
	_, found := scanCallouts(text)
	return found
}

// scanCallouts is a single forward pass with two states: outside a callout,
// or inside one collecting quoted body lines.
func scanCallouts(text string) (string, []Callout) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	var (
		found []Callout
		cur   *Callout
		body  []string
		fence CodeFence
	)

	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.Join(trimBlankLines(body), "\n")
		found = append(found, *cur)
		out = append(out, cur.render()...)
		cur, body = nil, nil
	}

	for _, line := range lines {
		if cur != nil {
			if c, ok := matchCalloutHeader(line); ok {
				flush()
				cur = &c
				continue
			}
			if strings.HasPrefix(line, ">") {
				body = append(body, unquote(line))
				continue
			}
			flush()
		}

		if !fence.Step(line) {
			if c, ok := matchCalloutHeader(line); ok {
				cur = &c
				continue
			}
		}
		out = append(out, line)
	}
	flush()

	return strings.Join(out, "\n"), found
}

// matchCalloutHeader recognizes a callout label line.
func matchCalloutHeader(line string) (Callout, bool) {
	m := calloutHeader.FindStringSubmatch(line)
	if m == nil {
		return Callout{}, false
	}
	icon, label, title := m[1], m[2], strings.TrimSpace(m[3])

	for _, k := range calloutKinds {
		if k.label != label || k.icon != icon {
			continue
		}
		if !k.titled && title != "" {
			return Callout{}, false
		}
		c := Callout{Category: k.category, Title: k.label}
		if title != "" {
			c.Title = k.label + ": " + title
		}
		return c, true
	}
	return Callout{}, false
}

// render emits the fenced div form of the callout.
func (c *Callout) render() []string {
	lines := []string{
		"::: {.callout .callout-" + c.Category.String() + "}",
		"**" + c.Title + "**",
	}
	if c.Body != "" {
		lines = append(lines, "", c.Body)
	}
	return append(lines, ":::")
}

// unquote strips the blockquote marker and one following space.
func unquote(line string) string {
	line = strings.TrimPrefix(line, ">")
	return strings.TrimPrefix(line, " ")
}

// trimBlankLines drops leading and trailing blank lines.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
