package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/secret-share/internal/store"
)

// LocalAuthenticator はユーザー名とパスワードによるローカル認証を行います。
type LocalAuthenticator struct {
	users UserStore
}

// NewLocalAuthenticator は LocalAuthenticator を作成します。
func NewLocalAuthenticator(users UserStore) *LocalAuthenticator {
	return &LocalAuthenticator{users: users}
}

// Register は新規ユーザーを登録し、作成されたレコードを返します。
// ユーザー名が重複している場合は store.ErrDuplicateUsername を返します。
func (a *LocalAuthenticator) Register(ctx context.Context, username, password string) (*store.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return a.users.Insert(ctx, &store.User{
		Username:     username,
		PasswordHash: string(hash),
	})
}

// Verify はユーザー名とパスワードを検証し、一致したユーザーを返します。
// 未知のユーザー名は store.ErrNotFound、ハッシュ不一致は ErrInvalidCredentials
// になります。呼び出し側はどちらもログイン失敗として同じ応答に落とします。
func (a *LocalAuthenticator) Verify(ctx context.Context, username, password string) (*store.User, error) {
	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	// フェデレーションのみのアカウントはパスワードを持たない
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Attempt は Authenticator インターフェースの実装です。
func (a *LocalAuthenticator) Attempt(ctx context.Context, creds Credentials) (*store.User, error) {
	return a.Verify(ctx, creds.Username, creds.Password)
}
