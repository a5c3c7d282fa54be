package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yourusername/secret-share/internal/config"
	"github.com/yourusername/secret-share/internal/store"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var exchangeTimeout = 10 * time.Second

// GoogleAuthenticator はGoogleの認可コードフローによるフェデレーション認証を行います。
// プロフィールからはsubject id（sub）だけを取り出し、それ以外は保持しません。
type GoogleAuthenticator struct {
	oauth       *oauth2.Config
	users       UserStore
	userinfoURL string
}

// NewGoogleAuthenticator は GoogleAuthenticator を作成します。
func NewGoogleAuthenticator(cfg *config.Config, users UserStore) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL,
			Scopes:       []string{"profile"},
			Endpoint:     google.Endpoint,
		},
		users:       users,
		userinfoURL: defaultUserinfoURL,
	}
}

// AuthCodeURL は同意画面へのリダイレクト先URLを返します。
func (g *GoogleAuthenticator) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Attempt は認可コードをトークンに交換し、subject idでユーザーを解決します。
// 初回ログインのsubject idはユーザーを新規作成します（find-or-create）。
func (g *GoogleAuthenticator) Attempt(ctx context.Context, creds Credentials) (*store.User, error) {
	if creds.Code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", ErrProviderExchange)
	}

	// プロバイダーとの往復には上限時間を設ける
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	token, err := g.oauth.Exchange(ctx, creds.Code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}

	subject, err := g.fetchSubject(ctx, token)
	if err != nil {
		return nil, err
	}

	return g.users.FindOrCreateByGoogleID(ctx, subject)
}

// fetchSubject はuserinfoエンドポイントからsubject idだけを取得します。
func (g *GoogleAuthenticator) fetchSubject(ctx context.Context, token *oauth2.Token) (string, error) {
	client := g.oauth.Client(ctx, token)
	resp, err := client.Get(g.userinfoURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: userinfo returned status %d", ErrProviderExchange, resp.StatusCode)
	}

	var profile struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderExchange, err)
	}
	if profile.Sub == "" {
		return "", fmt.Errorf("%w: userinfo response has no subject id", ErrProviderExchange)
	}
	return profile.Sub, nil
}
