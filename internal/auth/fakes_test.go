package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yourusername/secret-share/internal/store"
)

// fakeUserStore はテスト用のインメモリUserStoreです。
type fakeUserStore struct {
	mu      sync.Mutex
	users   map[string]*store.User
	failing bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*store.User)}
}

func (f *fakeUserStore) Insert(ctx context.Context, user *store.User) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("%w: store is down", store.ErrStoreUnavailable)
	}
	if user.Username != "" {
		for _, existing := range f.users {
			if existing.Username == user.Username {
				return nil, store.ErrDuplicateUsername
			}
		}
	}
	user.ID = primitive.NewObjectID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	clone := *user
	f.users[user.ID.Hex()] = &clone
	return user, nil
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("%w: store is down", store.ErrStoreUnavailable)
	}
	for _, existing := range f.users {
		if existing.Username == username {
			clone := *existing
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindByID(ctx context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("%w: store is down", store.ErrStoreUnavailable)
	}
	existing, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	clone := *existing
	return &clone, nil
}

func (f *fakeUserStore) FindOrCreateByGoogleID(ctx context.Context, googleID string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, fmt.Errorf("%w: store is down", store.ErrStoreUnavailable)
	}
	for _, existing := range f.users {
		if existing.GoogleID == googleID {
			clone := *existing
			return &clone, nil
		}
	}
	user := &store.User{
		ID:        primitive.NewObjectID(),
		GoogleID:  googleID,
		CreatedAt: time.Now().UTC(),
	}
	clone := *user
	f.users[user.ID.Hex()] = &clone
	return user, nil
}

func (f *fakeUserStore) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

// memTokenStore はテスト用のインメモリTokenStoreです。
type memTokenStore struct {
	mu      sync.Mutex
	records map[string]*SessionRecord
	failing bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{records: make(map[string]*SessionRecord)}
}

func (s *memTokenStore) Save(ctx context.Context, token string, record *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("token store is down")
	}
	clone := *record
	s.records[token] = &clone
	return nil
}

func (s *memTokenStore) Get(ctx context.Context, token string) (*SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return nil, fmt.Errorf("token store is down")
	}
	record, ok := s.records[token]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (s *memTokenStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}

func (s *memTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *memTokenStore) expire(token string, issuedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[token]; ok {
		record.IssuedAt = issuedAt
	}
}

func (s *memTokenStore) onlyToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.records {
		return token
	}
	return ""
}
