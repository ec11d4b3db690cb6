package menu

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobMatchIgnoresCase(t *testing.T) {
	p := Glob("News*")
	assert.True(t, p.Match("news today"))
	assert.True(t, p.Match("NEWS"))
	assert.False(t, p.Match("old news"))
}

func TestRegexpMatchAnchoredAtStart(t *testing.T) {
	p := Regexp(regexp.MustCompile(`chan(nel)? \d+`))
	assert.True(t, p.Match("Channel 7"))
	assert.False(t, p.Match("my channel 7"))
}

func TestOrderLevelHighestWins(t *testing.T) {
	o := Order{
		10: {Glob("favorite*")},
		5:  {Glob("fav*"), Glob("*hd")},
		-5: {Glob("* sd")},
	}
	assert.Equal(t, 10, o.Level("Favorite shows"))
	assert.Equal(t, 5, o.Level("Sports HD"))
	assert.Equal(t, -5, o.Level("Sports SD"))
	assert.Equal(t, 0, o.Level("Plain channel"))
}

func TestSortItemsLevelsThenCollation(t *testing.T) {
	entries := []orderedItem{
		{level: 0, sort: "b", index: 0},
		{level: 5, sort: "z", index: 1},
		{level: 0, sort: "A", index: 2},
		{level: 5, sort: "a", index: 3},
	}
	sortItems(entries)
	assert.Equal(t, []int{3, 1, 2, 0}, []int{entries[0].index, entries[1].index, entries[2].index, entries[3].index})
}

func TestSortItemsStableWithoutSortKey(t *testing.T) {
	entries := []orderedItem{
		{level: 0, index: 0},
		{level: 0, index: 1},
		{level: 0, index: 2},
	}
	sortItems(entries)
	for i, e := range entries {
		assert.Equal(t, i, e.index)
	}
}
