// Package feed accumulates cursor-paginated API pages into a single
// client-side list. The home feed, profile posts and notifications all go
// through the same Merge routine.
package feed

import (
	"slices"

	"github.com/mmcdole/instalike/internal/domain"
)

// Merge folds a freshly fetched page into the accumulated feed.
//
// With no existing feed the result is the page itself. Otherwise items are
// unioned by id, the newest fetched copy of an id replacing older ones, and
// sorted by descending id. The cursor and hasMorePages always come from the
// page.
func Merge[T domain.Identifiable](existing *domain.Feed[T], page domain.Page[T]) domain.Feed[T] {
	result := domain.Feed[T]{
		NextCursor:   copyCursor(page.NextCursor),
		HasMorePages: page.HasMorePages,
	}

	if existing == nil {
		result.Items = uniqueInOrder(page.Items)
		return result
	}

	byID := make(map[int64]T, len(existing.Items)+len(page.Items))
	for _, item := range existing.Items {
		byID[item.GetID()] = item
	}
	for _, item := range page.Items {
		byID[item.GetID()] = item
	}

	items := make([]T, 0, len(byID))
	for _, item := range byID {
		items = append(items, item)
	}
	slices.SortFunc(items, func(a, b T) int {
		switch {
		case a.GetID() > b.GetID():
			return -1
		case a.GetID() < b.GetID():
			return 1
		}
		return 0
	})

	result.Items = items
	return result
}

// Done reports whether the feed has no further page to fetch
func Done[T any](f domain.Feed[T]) bool {
	return !f.HasMorePages || f.Cursor() == ""
}

// Remove drops the item with the given id, keeping order and cursor
func Remove[T domain.Identifiable](f domain.Feed[T], id int64) domain.Feed[T] {
	f.Items = slices.DeleteFunc(slices.Clone(f.Items), func(item T) bool {
		return item.GetID() == id
	})
	return f
}

// Find returns the item with the given id
func Find[T domain.Identifiable](f domain.Feed[T], id int64) (T, bool) {
	for _, item := range f.Items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// uniqueInOrder keeps page order, the last copy of a repeated id winning
func uniqueInOrder[T domain.Identifiable](items []T) []T {
	pos := make(map[int64]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if i, seen := pos[item.GetID()]; seen {
			out[i] = item
			continue
		}
		pos[item.GetID()] = len(out)
		out = append(out, item)
	}
	return out
}

func copyCursor(c *string) *string {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
