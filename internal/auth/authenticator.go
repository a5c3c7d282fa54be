// Package auth は認証・セッション管理機能を提供します。
package auth

import (
	"context"
	"errors"

	"github.com/yourusername/secret-share/internal/store"
)

var (
	// ErrInvalidCredentials はパスワード不一致など資格情報の検証失敗を表します。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProviderExchange は外部プロバイダーとのコード交換・照会の失敗を表します。
	ErrProviderExchange = errors.New("provider exchange failed")
)

// Credentials は認証試行の入力をまとめた構造体です。
// ローカル認証は Username/Password を、フェデレーション認証は
// コールバックで受け取った認可コード Code を使用します。
type Credentials struct {
	Username string
	Password string
	Code     string
}

// Authenticator は認証方式が実装する共通インターフェースです。
// ハンドラー側はどの方式かを意識せずに Attempt を呼び出せます。
type Authenticator interface {
	Attempt(ctx context.Context, creds Credentials) (*store.User, error)
}

// UserStore は認証処理が必要とするユーザーストア操作の一覧です。
type UserStore interface {
	Insert(ctx context.Context, user *store.User) (*store.User, error)
	FindByUsername(ctx context.Context, username string) (*store.User, error)
	FindByID(ctx context.Context, id string) (*store.User, error)
	FindOrCreateByGoogleID(ctx context.Context, googleID string) (*store.User, error)
}
