package luna

import (
	"context"
	"fmt"
	"iter"
)

// Page is one page of a cursor-paginated collection.
type Page[T any] struct {
	Items      []T
	HasMore    bool
	NextCursor string
}

// ListResponse is the wire shape of a list endpoint.
type ListResponse[T any] struct {
	Data       []T     `json:"data"        yaml:"data"`
	HasMore    bool    `json:"has_more"    yaml:"has_more"`
	NextCursor *string `json:"next_cursor" yaml:"next_cursor"`
}

// Page converts the wire shape into a Page.
func (r *ListResponse[T]) Page() Page[T] {
	page := Page[T]{Items: r.Data, HasMore: r.HasMore}
	if r.NextCursor != nil {
		page.NextCursor = *r.NextCursor
	}

	return page
}

// maxRepeatedEmptyPages is how many consecutive empty pages may hand back the
// cursor they were fetched with before the iterator gives up.
const maxRepeatedEmptyPages = 3

// FetchFunc fetches the page that starts at cursor. The first page is
// requested with an empty cursor.
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Iterator walks a paginated collection lazily, one page at a time. A page is
// only fetched once every buffered item has been consumed. Iteration ends when
// a page reports no further results; empty pages that report more results are
// skipped. A server that keeps answering with an empty page and the same cursor
// would never end, so after a few such pages in a row the iterator stops with
// ErrPaginationStalled instead of fetching forever. An Iterator is not safe for concurrent use and cannot be restarted;
// use Cursor with NewIteratorFrom to resume.
type Iterator[T any] struct {
	ctx     context.Context
	fetch   FetchFunc[T]
	buffer  []T
	cursor  string
	done    bool
	err     error
	fetches int
	repeats int
}

// NewIterator creates an iterator starting at the first page.
func NewIterator[T any](ctx context.Context, fetch FetchFunc[T]) *Iterator[T] {
	return NewIteratorFrom(ctx, fetch, "")
}

// NewIteratorFrom creates an iterator starting at the given cursor.
func NewIteratorFrom[T any](ctx context.Context, fetch FetchFunc[T], cursor string) *Iterator[T] {
	return &Iterator[T]{ctx: ctx, fetch: fetch, cursor: cursor}
}

// HasNext reports whether Next will return an item, fetching pages as needed.
// It returns false once the collection is exhausted or a fetch failed; check
// Err to tell the two apart.
func (it *Iterator[T]) HasNext() bool {
	for len(it.buffer) == 0 {
		if it.done || it.err != nil {
			return false
		}

		it.fetchPage()
	}

	return true
}

// Next returns the next item.
func (it *Iterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	item := it.buffer[0]
	it.buffer = it.buffer[1:]

	return item, nil
}

// Err returns the error that stopped the iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Cursor returns the cursor of the next page to fetch. Items already buffered
// are not covered by it.
func (it *Iterator[T]) Cursor() string {
	return it.cursor
}

// Fetches returns the number of pages fetched so far.
func (it *Iterator[T]) Fetches() int {
	return it.fetches
}

// All collects the remaining items.
func (it *Iterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return items, err
		}

		items = append(items, item)
	}

	return items, it.err
}

// ForEach calls fn for each remaining item and stops at the first error.
func (it *Iterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return it.err
}

// Seq adapts the iterator to a range-over-func sequence. A fetch failure is
// yielded once with the zero item.
func (it *Iterator[T]) Seq() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			item, err := it.Next()
			if !yield(item, err) {
				return
			}
		}

		if it.err != nil {
			var zero T

			yield(zero, it.err)
		}
	}
}

func (it *Iterator[T]) fetchPage() {
	if err := it.ctx.Err(); err != nil {
		it.err = err

		return
	}

	page, err := it.fetch(it.ctx, it.cursor)
	it.fetches++

	if err != nil {
		it.err = fmt.Errorf("fetching page %d: %w", it.fetches, err)

		return
	}

	it.buffer = page.Items

	if !page.HasMore {
		it.done = true

		return
	}

	switch {
	case page.NextCursor == "":
		it.err = ErrPaginationCursorMissing
	case len(page.Items) == 0 && page.NextCursor == it.cursor:
		it.repeats++
		if it.repeats >= maxRepeatedEmptyPages {
			it.err = fmt.Errorf("%w: %q after %d empty pages", ErrPaginationStalled, page.NextCursor, it.repeats)
		}
	default:
		it.repeats = 0
		it.cursor = page.NextCursor
	}
}
