package domain

// Identifiable is implemented by every entity that can live in a feed.
// The numeric id is both the dedupe key and the ordering key.
type Identifiable interface {
	// GetID returns the server-assigned numeric identifier
	GetID() int64
}

// Titled is implemented by entities the TUI can filter by text
type Titled interface {
	// FilterText returns the text matched by the in-list filter
	FilterText() string
}

func (p Post) FilterText() string {
	return p.Owner.UserName + " " + p.Caption + " " + p.Location
}

func (n Notification) FilterText() string {
	return n.Summary()
}

func (u User) FilterText() string {
	return u.UserName + " " + u.DisplayName()
}

func (c Comment) FilterText() string {
	return c.Owner.UserName + " " + c.Text
}
