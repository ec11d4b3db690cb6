package menu

import (
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Pattern matches an item's order-key text. Build with Glob or Regexp.
type Pattern struct {
	glob string
	re   *regexp.Regexp
}

// Glob builds a case-insensitive glob pattern ('*', '?' and character
// classes, as in path.Match).
func Glob(pattern string) Pattern {
	return Pattern{glob: strings.ToLower(pattern)}
}

// Regexp builds a pattern from a compiled regular expression. The expression
// is matched against the lower-cased text, anchored at the start.
func Regexp(re *regexp.Regexp) Pattern {
	return Pattern{re: re}
}

// Match reports whether text matches the pattern. Matching ignores case.
func (p Pattern) Match(text string) bool {
	text = strings.ToLower(text)
	if p.re != nil {
		loc := p.re.FindStringIndex(text)
		return loc != nil && loc[0] == 0
	}
	ok, err := path.Match(p.glob, text)
	return err == nil && ok
}

// Order assigns priority levels to entries of a multi-entry node. The key is
// the level (higher sorts first), the value the patterns that put an entry on
// that level. Entries matching no pattern get level zero, so negative levels
// push entries below the unmatched rest.
type Order map[int][]Pattern

// Level returns the priority level for the given order-key text. When
// several levels match, the highest wins.
func (o Order) Level(text string) int {
	best := 0
	found := false
	for level, patterns := range o {
		for _, p := range patterns {
			if p.Match(text) {
				if !found || level > best {
					best = level
					found = true
				}
				break
			}
		}
	}
	return best
}

// collator breaks ties inside one level; case-insensitive, locale-aware.
var collator = collate.New(language.Und, collate.IgnoreCase)

// sortItems orders multi-entry items by descending level, then by sort key
// (collated), then by original position.
func sortItems(entries []orderedItem) {
	// Insertion sort keeps equal elements stable without an extra index
	// compare; multi-entries are small.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && less(entries[j], entries[j-1]); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

type orderedItem struct {
	item  Item
	level int
	sort  string
	index int
}

func less(a, b orderedItem) bool {
	if a.level != b.level {
		return a.level > b.level
	}
	if a.sort != b.sort {
		return collator.CompareString(a.sort, b.sort) < 0
	}
	return false
}
