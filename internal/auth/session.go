package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/secret-share/internal/store"
)

const (
	SessionCookieName    = "ss_session"
	sessionKeyToken      = "session_token"
	sessionKeyOAuthState = "oauth_state"
)

var sessionLifetime = 12 * time.Hour

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(sessionLifetime.Seconds())
}

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

// Manager はセッションの発行・解決・破棄をまとめた構造体です。
// ブラウザーにはランダムなトークンだけを署名付きクッキーで渡し、
// トークンとユーザーIDの対応はサーバー側の TokenStore が持ちます。
type Manager struct {
	tokens TokenStore
	users  UserStore
}

// NewManager はセッションマネージャーを作成します。
func NewManager(tokens TokenStore, users UserStore) *Manager {
	return &Manager{
		tokens: tokens,
		users:  users,
	}
}

// Start は指定ユーザーのセッションを開始します。
// クッキーに残っていた旧トークンは破棄してから新しいトークンを発行するため、
// ログイン前のトークンがそのまま認証済みになることはありません。
func (m *Manager) Start(c *gin.Context, user *store.User) error {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	if prev, ok := session.Get(sessionKeyToken).(string); ok && prev != "" {
		if err := m.tokens.Delete(ctx, prev); err != nil {
			log.Printf("failed to revoke previous session token: %v", err)
		}
	}

	token, err := generateToken()
	if err != nil {
		return err
	}

	record := &SessionRecord{
		UserID:   user.HexID(),
		IssuedAt: time.Now().UTC(),
	}
	if err := m.tokens.Save(ctx, token, record); err != nil {
		return err
	}

	session.Set(sessionKeyToken, token)
	return session.Save()
}

// Resolve はリクエストからログイン中のユーザーを解決します。
// トークンなし・期限切れ・ユーザー消失はいずれも「未認証」として
// (nil, false) を返し、呼び出し側にエラーを投げません。
func (m *Manager) Resolve(c *gin.Context) (*store.User, bool) {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	token, ok := session.Get(sessionKeyToken).(string)
	if !ok || token == "" {
		return nil, false
	}

	record, err := m.tokens.Get(ctx, token)
	if err != nil {
		log.Printf("failed to look up session token: %v", err)
		return nil, false
	}
	if record == nil {
		return nil, false
	}

	// TTLを持たないストアでも期限切れを落とせるように発行時刻でも確認する
	if time.Since(record.IssuedAt) > sessionLifetime {
		_ = m.tokens.Delete(ctx, token)
		return nil, false
	}

	user, err := m.users.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = m.tokens.Delete(ctx, token)
		} else {
			log.Printf("failed to resolve session user: %v", err)
		}
		return nil, false
	}
	return user, true
}

// End はセッションを破棄します。既に破棄済みでもエラーにしません。
func (m *Manager) End(c *gin.Context) error {
	ctx := c.Request.Context()
	session := sessions.Default(c)

	if token, ok := session.Get(sessionKeyToken).(string); ok && token != "" {
		if err := m.tokens.Delete(ctx, token); err != nil {
			log.Printf("failed to delete session token: %v", err)
		}
	}

	session.Clear()
	return session.Save()
}

// StashOAuthState は外部プロバイダーへのリダイレクト往復を突き合わせるための
// stateをセッションに保存します。
func (m *Manager) StashOAuthState(c *gin.Context, state string) error {
	session := sessions.Default(c)
	session.Set(sessionKeyOAuthState, state)
	return session.Save()
}

// TakeOAuthState は保存済みのstateを取り出し、同時に消去します（使い捨て）。
func (m *Manager) TakeOAuthState(c *gin.Context) string {
	session := sessions.Default(c)
	state, ok := session.Get(sessionKeyOAuthState).(string)
	if !ok {
		return ""
	}
	session.Delete(sessionKeyOAuthState)
	_ = session.Save()
	return state
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
