package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionRecord はトークンに対応するサーバー側のセッション情報です。
type SessionRecord struct {
	UserID   string    `json:"userId"`
	IssuedAt time.Time `json:"issuedAt"`
}

// TokenStore はトークンとセッション情報の対応を保持するストアです。
// 見つからない場合は (nil, nil) を返します。
type TokenStore interface {
	Save(ctx context.Context, token string, record *SessionRecord) error
	Get(ctx context.Context, token string) (*SessionRecord, error)
	Delete(ctx context.Context, token string) error
}

// RedisTokenStore はセッション情報を Redis に保存します。
// キーのTTLがそのままセッションの有効期限になります。
type RedisTokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTokenStore は RedisTokenStore を作成します。
func NewRedisTokenStore(rdb *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{
		rdb: rdb,
		ttl: ttl,
	}
}

// Save はセッション情報を保存します。
func (s *RedisTokenStore) Save(ctx context.Context, token string, record *SessionRecord) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(token), payload, s.ttl).Err()
}

// Get はセッション情報を取得します。
func (s *RedisTokenStore) Get(ctx context.Context, token string) (*SessionRecord, error) {
	if token == "" {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete はセッション情報を削除します。存在しないトークンでもエラーにしません。
func (s *RedisTokenStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
