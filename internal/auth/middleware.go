package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/secret-share/internal/store"
)

// RequireLogin はセッションを検証するミドルウェアを返します。
// 未認証のリクエストは /login へリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.Resolve(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser は RequireLogin が解決したユーザーを取り出します。
// 未認証の場合は nil を返します。
func CurrentUser(c *gin.Context) *store.User {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*store.User)
	if !ok {
		return nil
	}
	return user
}
