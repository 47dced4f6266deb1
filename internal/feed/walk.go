package feed

import (
	"context"
	"errors"

	"github.com/mmcdole/instalike/internal/domain"
)

// FetchFunc fetches the page starting at cursor ("" for the first page)
type FetchFunc[T any] func(ctx context.Context, cursor string) (domain.Page[T], error)

// Walk follows the cursor chain from the first page, handing each page to
// onPage. It stops once a page reports no more pages or carries no cursor.
// The cursor is passed back to fetch exactly as the API sent it.
func Walk[T any](ctx context.Context, fetch FetchFunc[T], onPage func(domain.Page[T]) error) error {
	cursor := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			return err
		}

		if onPage != nil {
			if err := onPage(page); err != nil {
				return err
			}
		}

		if !page.HasMorePages || page.NextCursor == nil || *page.NextCursor == "" {
			return nil
		}
		cursor = *page.NextCursor
	}
}

// Collect walks at most maxPages pages (0 for no limit) and merges them
func Collect[T domain.Identifiable](ctx context.Context, fetch FetchFunc[T], maxPages int) (domain.Feed[T], error) {
	var acc *domain.Feed[T]
	pages := 0

	err := Walk(ctx, fetch, func(page domain.Page[T]) error {
		merged := Merge(acc, page)
		acc = &merged
		pages++
		if maxPages > 0 && pages >= maxPages {
			return errPageLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errPageLimit) {
		return domain.Feed[T]{}, err
	}
	if acc == nil {
		return domain.Feed[T]{}, nil
	}
	return *acc, nil
}

var errPageLimit = errors.New("page limit reached")
