// Package format renders menu titles and labels. Format is a tolerant
// "{field}" expander that leaves unknown fields alone instead of failing,
// and Stylize wraps text in the BB-style label tags media-center skins
// understand ("[B]...[/B]").
package format

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// Format expands "{field}" placeholders from fields. Unknown fields stay in
// the output verbatim, so partially filled templates survive. Supported
// forms:
//
//	{name}          value as is
//	{name!u}        upper case
//	{name!l}        lower case
//	{name!c}        first rune upper case
//	{name!t}        title case
//	{name:!!text}   "text" when name is missing
//	{{ and }}       literal braces
func Format(tmpl string, fields map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				b.WriteString(tmpl[i:])
				return b.String()
			}
			b.WriteString(expand(tmpl[i+1:i+end], fields))
			i += end
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func expand(field string, fields map[string]string) string {
	name, spec, hasSpec := strings.Cut(field, ":")
	name, conv, _ := strings.Cut(name, "!")

	value, ok := fields[name]
	if !ok {
		if hasSpec && strings.HasPrefix(spec, "!!") {
			return spec[2:]
		}
		// Re-emit the original placeholder untouched.
		return "{" + field + "}"
	}
	switch conv {
	case "u":
		return strings.ToUpper(value)
	case "l":
		return strings.ToLower(value)
	case "c":
		if value == "" {
			return value
		}
		return strings.ToUpper(value[:1]) + value[1:]
	case "t":
		return titleCaser.String(value)
	}
	return value
}

// Stylize wraps text in the given styles, outermost first. A style that
// starts with a letter becomes a label tag pair ("B" -> "[B]x[/B]",
// "COLOR red" -> "[COLOR red]x[/COLOR]"); a style containing "{}" is used
// as a template; anything else wraps the text symmetrically.
//
//	Stylize("abc", "B")                      // "[B]abc[/B]"
//	Stylize("abc", "COLOR red", "B")         // "[COLOR red][B]abc[/B][/COLOR]"
//	Stylize("abc", ">>{}<<")                 // ">>abc<<"
//	Stylize("abc", "«»")                     // "«abc»"
func Stylize(text string, styles ...string) string {
	for i := len(styles) - 1; i >= 0; i-- {
		s := styles[i]
		switch {
		case s == "":
		case isAlpha(s[0]):
			tag, _, _ := strings.Cut(s, " ")
			text = "[" + s + "]" + text + "[/" + tag + "]"
		case strings.Contains(s, "{}"):
			text = strings.Replace(s, "{}", text, 1)
		default:
			// Split the wrapper in half around the text.
			runes := []rune(s)
			half := len(runes) / 2
			text = string(runes[:half]) + text + string(runes[half:])
		}
	}
	return text
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
