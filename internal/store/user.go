// Package store はユーザーレコードの永続化レイヤーを提供します。
package store

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound は該当するユーザーが存在しないことを表します。
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateUsername はユーザー名が既に登録済みであることを表します。
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrStoreUnavailable はデータストアへの到達失敗を表します。
	ErrStoreUnavailable = errors.New("store unavailable")
)

// User はユーザーレコードを表します。
// ローカル登録のみのユーザーは GoogleID を持たず、
// フェデレーションのみのユーザーは Username と PasswordHash を持ちません。
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username,omitempty"`
	PasswordHash string             `bson:"passwordHash,omitempty"`
	GoogleID     string             `bson:"googleId,omitempty"`
	Secret       string             `bson:"secret,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// HexID はセッションに保存するための文字列IDを返します。
func (u *User) HexID() string {
	return u.ID.Hex()
}
