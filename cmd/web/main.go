// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yourusername/secret-share/internal/auth"
	"github.com/yourusername/secret-share/internal/config"
	"github.com/yourusername/secret-share/internal/secrets"
	"github.com/yourusername/secret-share/internal/store"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// MongoDBへの接続とインデックスの用意
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	users := store.NewUserStore(mongoClient.Database(cfg.MongoDatabase))
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// セッションレコード保存用のRedisクライアント
	redisOpt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		log.Fatalf("Failed to parse redis url: %v", err)
	}
	rdb := redis.NewClient(redisOpt)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.LoadHTMLGlob("web/templates/*.html")

	// セッションストアの設定（クッキー署名鍵は必須）
	// OAuthコールバックでもクッキーが送られるように SameSite は Lax にする
	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	cookieStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, cookieStore))

	// ルーティングの設定
	setupRoutes(router, cfg, users, rdb)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting web server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRoutes は各コンポーネントを組み立ててルートに配線します。
func setupRoutes(router *gin.Engine, cfg *config.Config, users *store.UserStore, rdb *redis.Client) {
	tokens := auth.NewRedisTokenStore(rdb, time.Duration(auth.SessionMaxAgeSeconds())*time.Second)
	sessionManager := auth.NewManager(tokens, users)

	local := auth.NewLocalAuthenticator(users)
	google := auth.NewGoogleAuthenticator(cfg, users)
	authHandler := auth.NewHandler(local, google, sessionManager)
	secretsHandler := secrets.NewHandler(users)

	router.GET("/", authHandler.ShowHome)

	router.GET("/register", authHandler.ShowRegister)
	router.POST("/register", authHandler.Register)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	router.GET("/auth/google", authHandler.GoogleRedirect)
	router.GET("/auth/google/secrets", authHandler.GoogleCallback)

	// 一覧は誰でも見られるが、投稿はログインが必要
	router.GET("/secrets", secretsHandler.List)
	protected := router.Group("")
	protected.Use(sessionManager.RequireLogin())
	{
		protected.GET("/submit", secretsHandler.ShowSubmit)
		protected.POST("/submit", secretsHandler.Submit)
	}
}
