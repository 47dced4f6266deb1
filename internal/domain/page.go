package domain

import (
	"bytes"
	"encoding/json"
)

// Page is one response of a cursor-paginated list endpoint
type Page[T any] struct {
	Items        []T     `json:"items"`
	NextCursor   *string `json:"nextCursor"`
	HasMorePages bool    `json:"hasMorePages"`
}

// Cursor returns the next cursor, or "" when none was sent
func (p Page[T]) Cursor() string {
	if p.NextCursor == nil {
		return ""
	}
	return *p.NextCursor
}

// UnmarshalJSON accepts both the paged object form and a bare JSON array.
// A bare array is treated as a single, final page.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Items: items}
		return nil
	}

	var w pageWire[T]
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return err
	}
	*p = Page[T](w)
	return nil
}

// pageWire has Page's layout without its UnmarshalJSON method
type pageWire[T any] struct {
	Items        []T     `json:"items"`
	NextCursor   *string `json:"nextCursor"`
	HasMorePages bool    `json:"hasMorePages"`
}

// Feed is the client-side accumulation of every page fetched so far.
// Items are unique by id and ordered by descending id.
type Feed[T any] struct {
	Items        []T
	NextCursor   *string
	HasMorePages bool
}

// Cursor returns the cursor to resume from, or "" when none is known
func (f Feed[T]) Cursor() string {
	if f.NextCursor == nil {
		return ""
	}
	return *f.NextCursor
}

// Len returns the number of accumulated items
func (f Feed[T]) Len() int { return len(f.Items) }

// StringPtr returns a pointer to s, or nil for the empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
