package auth

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/secret-share/internal/store"
)

// Handler は認証まわりのHTTPハンドラーをまとめた構造体です。
// 失敗はすべてサーバー側にログを残し、ブラウザーへは適切なページへの
// リダイレクトだけを返します。例外はストア到達不能時のエラーページです。
type Handler struct {
	local    *LocalAuthenticator
	google   *GoogleAuthenticator
	sessions *Manager
	limiter  *LoginLimiter
}

// NewHandler は Handler を作成します。
func NewHandler(local *LocalAuthenticator, google *GoogleAuthenticator, sessions *Manager) *Handler {
	return &Handler{
		local:    local,
		google:   google,
		sessions: sessions,
		limiter:  NewLoginLimiter(),
	}
}

// ShowHome は GET / のハンドラーです。
func (h *Handler) ShowHome(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", nil)
}

// ShowRegister は GET /register のハンドラーです。
func (h *Handler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// ShowLogin は GET /login のハンドラーです。
func (h *Handler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// Register は POST /register のハンドラーです。
// 成功時はセッションを開始して /secrets へ、ユーザー名重複時は
// 登録フォームへ戻します。
func (h *Handler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.local.Register(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			log.Printf("register: store unavailable: %v", err)
			h.renderServerError(c)
			return
		}
		log.Printf("register failed for %q: %v", username, err)
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}

	h.startSessionAndRedirect(c, user)
}

// Login は POST /login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	ip := c.ClientIP()
	if retryAfter := h.limiter.CheckLock(ip); retryAfter > 0 {
		log.Printf("login locked for %s (retry in %s)", ip, retryAfter.Round(time.Second))
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	user, err := h.local.Attempt(c.Request.Context(), Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			log.Printf("login: store unavailable: %v", err)
			h.renderServerError(c)
			return
		}
		// 未知のユーザー名とパスワード不一致はログ上でのみ区別する
		remaining := h.limiter.RecordFailure(ip)
		log.Printf("login failed for %q: %v (remaining attempts: %d)", username, err, remaining)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	h.limiter.Reset(ip)
	h.startSessionAndRedirect(c, user)
}

// Logout は GET /logout のハンドラーです。
func (h *Handler) Logout(c *gin.Context) {
	if err := h.sessions.End(c); err != nil {
		log.Printf("logout: failed to end session: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// GoogleRedirect は GET /auth/google のハンドラーです。
// 往復を突き合わせるstateをセッションに保存してから同意画面へ転送します。
func (h *Handler) GoogleRedirect(c *gin.Context) {
	state := uuid.NewString()
	if err := h.sessions.StashOAuthState(c, state); err != nil {
		log.Printf("google redirect: failed to stash state: %v", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback は GET /auth/google/secrets のハンドラーです。
// どの段階で失敗してもセッションは作らず /login へ戻します。
func (h *Handler) GoogleCallback(c *gin.Context) {
	expected := h.sessions.TakeOAuthState(c)
	state := c.Query("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		log.Printf("google callback: state mismatch")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if errCode := c.Query("error"); errCode != "" {
		log.Printf("google callback: provider returned error %q", errCode)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.google.Attempt(c.Request.Context(), Credentials{
		Code: c.Query("code"),
	})
	if err != nil {
		if errors.Is(err, store.ErrStoreUnavailable) {
			log.Printf("google callback: store unavailable: %v", err)
			h.renderServerError(c)
			return
		}
		log.Printf("google callback: %v", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	h.startSessionAndRedirect(c, user)
}

func (h *Handler) startSessionAndRedirect(c *gin.Context, user *store.User) {
	if err := h.sessions.Start(c, user); err != nil {
		log.Printf("failed to start session: %v", err)
		h.renderServerError(c)
		return
	}
	c.Redirect(http.StatusSeeOther, "/secrets")
}

func (h *Handler) renderServerError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, "error.html", nil)
}
