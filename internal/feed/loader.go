package feed

import (
	"context"
	"sync"

	"github.com/mmcdole/instalike/internal/domain"
)

// State is the lifecycle of a list view
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateLoaded:
		return "Loaded"
	case StateError:
		return "Error"
	default:
		return "Empty"
	}
}

// Ticket identifies one load started by Begin
type Ticket struct {
	Gen    uint64
	Ctx    context.Context
	Cursor string // "" for the first page
}

// Loader is the state machine behind a paginated view:
// Empty -> Loading -> Loaded | Error, re-entering Loading for load-more or
// refresh. Results are applied only for the latest Begin, and nothing is
// applied after Cancel.
type Loader[T domain.Identifiable] struct {
	mu sync.Mutex

	parent    context.Context
	cancel    context.CancelFunc
	gen       uint64
	resetting bool
	closed    bool

	state State
	feed  *domain.Feed[T]
	err   error
}

// NewLoader creates a Loader whose loads derive from parent
func NewLoader[T domain.Identifiable](parent context.Context) *Loader[T] {
	if parent == nil {
		parent = context.Background()
	}
	return &Loader[T]{parent: parent}
}

// Begin starts a load. reset refetches from the first page, dropping any
// in-flight load; otherwise the next page is requested. ok is false when
// there is nothing to do: the view is torn down, a load-more is already
// running, or the feed is exhausted.
func (l *Loader[T]) Begin(reset bool) (t Ticket, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return Ticket{}, false
	}

	cursor := ""
	if !reset {
		if l.state == StateLoading {
			return Ticket{}, false
		}
		if l.feed != nil {
			if Done(*l.feed) {
				return Ticket{}, false
			}
			cursor = l.feed.Cursor()
		}
	}

	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(l.parent)
	l.cancel = cancel
	l.gen++
	l.resetting = reset || l.feed == nil
	l.state = StateLoading
	l.err = nil

	return Ticket{Gen: l.gen, Ctx: ctx, Cursor: cursor}, true
}

// Finish applies the outcome of the load identified by gen. It reports
// false when the result was stale and discarded.
func (l *Loader[T]) Finish(gen uint64, page domain.Page[T], err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.gen {
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	if err != nil {
		l.state = StateError
		l.err = err
		return true
	}

	existing := l.feed
	if l.resetting {
		existing = nil
	}
	merged := Merge(existing, page)
	l.feed = &merged
	l.state = StateLoaded
	return true
}

// Cancel tears the loader down with its view. In-flight loads are
// cancelled and their late results ignored.
func (l *Loader[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.closed = true
	l.gen++
}

// Apply merges updated copies of items into the feed
func (l *Loader[T]) Apply(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.feed == nil {
		return
	}
	merged := Merge(l.feed, domain.Page[T]{
		Items:        items,
		NextCursor:   l.feed.NextCursor,
		HasMorePages: l.feed.HasMorePages,
	})
	l.feed = &merged
}

// Remove drops an item from the feed
func (l *Loader[T]) Remove(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.feed == nil {
		return
	}
	removed := Remove(*l.feed, id)
	l.feed = &removed
}

// State returns the current lifecycle state
func (l *Loader[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Err returns the error of the last failed load
func (l *Loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Feed returns the accumulated feed
func (l *Loader[T]) Feed() domain.Feed[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.feed == nil {
		return domain.Feed[T]{}
	}
	return *l.feed
}

// HasMore reports whether a load-more can fetch another page
func (l *Loader[T]) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.feed != nil && !Done(*l.feed)
}

// Closed reports whether Cancel was called
func (l *Loader[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
