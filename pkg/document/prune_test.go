package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func contentPage(title string) Page {
	return Page{Blocks: []Block{Box{Title: title}}}
}

func blankPage() Page {
	return Page{}
}

func TestPruneDropsInteriorBlankPages(t *testing.T) {
	pages := []Page{
		contentPage("a"),
		blankPage(),
		contentPage("b"),
	}

	pruned := Prune(pages)

	assert.Len(t, pruned, 2)
	assert.Equal(t, "a", pruned[0].Blocks[0].(Box).Title)
	assert.Equal(t, "b", pruned[1].Blocks[0].(Box).Title)
}

func TestPruneTrimsTrailingBlankRun(t *testing.T) {
	pages := []Page{
		contentPage("a"),
		blankPage(),
		blankPage(),
		blankPage(),
	}

	pruned := Prune(pages)

	assert.Len(t, pruned, 1)
}

func TestPruneIsIdempotent(t *testing.T) {
	pages := []Page{
		{Cover: true},
		blankPage(),
		contentPage("body"),
		blankPage(),
	}

	once := Prune(pages)
	twice := Prune(once)

	assert.Equal(t, once, twice)
	assert.Len(t, once, 2)
}

func TestPruneAllBlankYieldsEmpty(t *testing.T) {
	pruned := Prune([]Page{blankPage(), blankPage()})
	assert.Empty(t, pruned)
}

func TestPruneDoesNotMutateInput(t *testing.T) {
	pages := []Page{contentPage("a"), blankPage(), contentPage("b")}
	_ = Prune(pages)
	assert.Len(t, pages, 3)
}

func TestNonEmpty(t *testing.T) {
	tests := []struct {
		name string
		page Page
		want bool
	}{
		{"cover marker alone", Page{Cover: true}, true},
		{"no blocks", Page{}, false},
		{"box", Page{Blocks: []Block{Box{Title: "x"}}}, true},
		{"header", Page{Blocks: []Block{Header{Client: "ACME"}}}, true},
		{"field row", Page{Blocks: []Block{FieldRow{}}}, true},
		{"table", Page{Blocks: []Block{Table{Columns: []string{"a"}}}}, true},
		{"image", Page{Blocks: []Block{Image{Path: "/p.png"}}}, true},
		{"empty photo grid", Page{Blocks: []Block{PhotoGrid{}}}, false},
		{"photo grid with photos", Page{Blocks: []Block{PhotoGrid{Paths: []string{"/1.jpg"}}}}, true},
		{"whitespace text", Page{Blocks: []Block{Text{Value: "   \t"}}}, false},
		{"nbsp text", Page{Blocks: []Block{Text{Value: "\u00a0\u00a0"}}}, false},
		{"visible text", Page{Blocks: []Block{Text{Value: " hola "}}}, true},
		{"spacer only", Page{Blocks: []Block{Spacer{MM: 10}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.page.NonEmpty())
		})
	}
}
