// Package secrets は匿名シークレットの一覧表示と投稿機能を提供します。
package secrets

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/secret-share/internal/auth"
	"github.com/yourusername/secret-share/internal/store"
)

// SecretStore はハンドラーが必要とするストア操作の一覧です。
type SecretStore interface {
	ListSecrets(ctx context.Context) ([]string, error)
	SetSecret(ctx context.Context, id string, secret string) error
}

// Handler はシークレットまわりのHTTPハンドラーをまとめた構造体です。
type Handler struct {
	store SecretStore
}

// NewHandler は Handler を作成します。
func NewHandler(store SecretStore) *Handler {
	return &Handler{store: store}
}

// List は GET /secrets のハンドラーです。誰でも閲覧できますが、
// 表示するのはsecret本文だけで、投稿者が誰かは一切出しません。
func (h *Handler) List(c *gin.Context) {
	secrets, err := h.store.ListSecrets(c.Request.Context())
	if err != nil {
		log.Printf("secrets list: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", nil)
		return
	}
	c.HTML(http.StatusOK, "secrets.html", gin.H{
		"Secrets": secrets,
	})
}

// ShowSubmit は GET /submit のハンドラーです。RequireLogin の後段で呼ばれます。
func (h *Handler) ShowSubmit(c *gin.Context) {
	c.HTML(http.StatusOK, "submit.html", nil)
}

// Submit は POST /submit のハンドラーです。
// ログイン中のユーザーのsecretを上書きします（保持は常に1件）。
func (h *Handler) Submit(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	secret := c.PostForm("secret")
	if secret == "" {
		c.Redirect(http.StatusSeeOther, "/submit")
		return
	}

	if err := h.store.SetSecret(c.Request.Context(), user.HexID(), secret); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// セッションは有効だがユーザーが消えている場合は再ログインさせる
			log.Printf("submit: user %s no longer exists", user.HexID())
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		log.Printf("submit: %v", err)
		c.HTML(http.StatusInternalServerError, "error.html", nil)
		return
	}

	c.Redirect(http.StatusSeeOther, "/secrets")
}
