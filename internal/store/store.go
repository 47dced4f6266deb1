package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/instalike/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSession = []byte("session")
	bucketProfile = []byte("profile")
)

// Keys
const (
	keyToken  = "token"
	keyUnread = "unread"
	keyMe     = "me"
)

// SessionStore persists the access token, the logged user's profile and the
// unread badge in one bbolt file per API server.
type SessionStore struct {
	db *bolt.DB

	mu    sync.RWMutex
	cache map[string][]byte // encoded values by slot
}

var _ domain.Store = (*SessionStore)(nil)

// NewSessionStore opens the session database for serverURL under baseDir.
// An empty baseDir keeps everything in memory.
func NewSessionStore(baseDir, serverURL string) (*SessionStore, error) {
	if baseDir == "" {
		return &SessionStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseDir
	if serverURL != "" {
		dir = filepath.Join(baseDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "session.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketProfile} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *SessionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// slot names one persisted session value
func slot(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

// get decodes the session value at bucket/key into dest. The token is read
// before every API call, so a value read from disk stays in memory until it
// is overwritten or the session ends.
func (s *SessionStore) get(bucket []byte, key string, dest any) bool {
	s.mu.RLock()
	data, hit := s.cache[slot(bucket, key)]
	s.mu.RUnlock()

	if !hit {
		data = s.load(bucket, key)
		if data == nil {
			return false
		}
		s.mu.Lock()
		s.cache[slot(bucket, key)] = data
		s.mu.Unlock()
	}
	return json.Unmarshal(data, dest) == nil
}

// load copies a raw value out of the database, nil when absent
func (s *SessionStore) load(bucket []byte, key string) []byte {
	if s.db == nil {
		return nil
	}
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			if v := b.Get([]byte(key)); v != nil {
				data = append([]byte(nil), v...)
			}
		}
		return nil
	})
	return data
}

// set writes through: memory first so the next request sees a refreshed
// token even if the disk write fails.
func (s *SessionStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[slot(bucket, key)] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

// drop removes a session value from memory and disk
func (s *SessionStore) drop(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, slot(bucket, key))
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

// === Token ===

func (s *SessionStore) Token() (string, bool) {
	var token string
	if !s.get(bucketSession, keyToken, &token) || token == "" {
		return "", false
	}
	return token, true
}

func (s *SessionStore) SaveToken(token string) error {
	if token == "" {
		return s.ClearToken()
	}
	return s.set(bucketSession, keyToken, token)
}

func (s *SessionStore) ClearToken() error {
	return s.drop(bucketSession, keyToken)
}

// === Profile ===

func (s *SessionStore) GetProfile() (*domain.User, bool) {
	var user domain.User
	if !s.get(bucketProfile, keyMe, &user) {
		return nil, false
	}
	return &user, true
}

func (s *SessionStore) SaveProfile(user *domain.User) error {
	if user == nil {
		return s.drop(bucketProfile, keyMe)
	}
	return s.set(bucketProfile, keyMe, user)
}

// === Notification badge ===

func (s *SessionStore) GetUnreadCount() (int, bool) {
	var count int
	ok := s.get(bucketSession, keyUnread, &count)
	return count, ok
}

func (s *SessionStore) SaveUnreadCount(count int) error {
	return s.set(bucketSession, keyUnread, count)
}

// === Invalidation ===

func (s *SessionStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketProfile} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			var keys [][]byte
			b.ForEach(func(k, _ []byte) error {
				keys = append(keys, append([]byte(nil), k...))
				return nil
			})
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
