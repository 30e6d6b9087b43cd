package ranking

import (
	"cmp"
	"iter"
	"slices"
)

// Sort orders items in place. Hot breaks hotness ties by net score so a
// higher net never ranks below a lower one at equal age; both orders fall
// back to newest first, then highest id.
func Sort(items []ScoredArticle, by Order) {
	switch by {
	case SortNew:
		slices.SortStableFunc(items, compareNew)
	default:
		slices.SortStableFunc(items, compareHot)
	}
}

func compareNew(a, b ScoredArticle) int {
	return cmp.Or(
		b.CreatedAt.Compare(a.CreatedAt),
		cmp.Compare(b.ID, a.ID),
	)
}

func compareHot(a, b ScoredArticle) int {
	return cmp.Or(
		cmp.Compare(b.Hotness, a.Hotness),
		cmp.Compare(b.Counts.Net(), a.Counts.Net()),
		compareNew(a, b),
	)
}

// Listing is an ordered set of scored articles.
type Listing struct {
	items []ScoredArticle
}

// NewListing sorts items and wraps them.
func NewListing(items []ScoredArticle, by Order) Listing {
	Sort(items, by)
	return Listing{items: items}
}

func (l Listing) Len() int {
	return len(l.items)
}

func (l Listing) All() iter.Seq[ScoredArticle] {
	return slices.Values(l.items)
}

// Page yields at most limit items starting at offset. A limit <= 0 means no limit.
func (l Listing) Page(offset, limit int) iter.Seq[ScoredArticle] {
	return func(yield func(ScoredArticle) bool) {
		if offset < 0 {
			offset = 0
		}
		n := 0
		for i := offset; i < len(l.items); i++ {
			if limit > 0 && n == limit {
				return
			}
			if !yield(l.items[i]) {
				return
			}
			n++
		}
	}
}
