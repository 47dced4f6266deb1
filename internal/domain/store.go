package domain

// TokenStore persists the single access token of this client.
// An empty token means logged out.
type TokenStore interface {
	// Token returns the persisted access token and whether one exists
	Token() (string, bool)

	// SaveToken replaces the persisted access token
	SaveToken(token string) error

	// ClearToken removes the persisted access token
	ClearToken() error
}

// Store handles local persistence (BoltDB + memory).
type Store interface {
	TokenStore

	// === Logged user profile ===
	GetProfile() (*User, bool)
	SaveProfile(user *User) error

	// === Notification badge ===
	GetUnreadCount() (int, bool)
	SaveUnreadCount(count int) error

	// InvalidateAll wipes token, profile and badge
	InvalidateAll()

	Close() error
}
