package document

// Prune removes pages a reader would perceive as blank. Two rules run in
// order: every empty page is dropped regardless of position, then any run of
// empty pages at the end is trimmed (defends against placeholders inserted
// after the first rule). The pass is a pure filter and is idempotent.
func Prune(pages []Page) []Page {
	pruned := make([]Page, 0, len(pages))
	for _, p := range pages {
		if p.NonEmpty() {
			pruned = append(pruned, p)
		}
	}
	return pruneTrailing(pruned)
}

func pruneTrailing(pages []Page) []Page {
	last := -1
	for i, p := range pages {
		if p.NonEmpty() {
			last = i
		}
	}
	return pages[:last+1]
}
