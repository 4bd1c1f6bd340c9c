package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "LIBRA-backend/docs"
	"LIBRA-backend/internal/circulation/books"
	"LIBRA-backend/internal/circulation/borrows"
	"LIBRA-backend/internal/member_mgmt/applications"
	"LIBRA-backend/internal/member_mgmt/students"
	"LIBRA-backend/internal/platform/auth"
	"LIBRA-backend/internal/platform/db"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[FATAL] auth.jwt_secret is not set")
	}
	secret := []byte(cfg.Auth.JWTSecret)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	if err := db.Migrate(context.Background(), conn); err != nil {
		log.Fatalf("[FATAL] migration failed: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// API仕様
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authSvc := auth.NewService(conn, secret)
	appSvc := applications.NewService(conn, secret)
	studentSvc := students.NewService(conn)
	bookSvc := books.NewService(conn)
	borrowSvc := borrows.NewService(conn)

	// /api/v1
	api := r.Group("/api/v1")

	// 公開：申請受付・カードログイン・スタッフログイン・蔵書閲覧
	auth.RegisterPublicRoutes(api, authSvc)
	applications.RegisterPublicRoutes(api, appSvc)
	books.RegisterPublicRoutes(api, bookSvc)

	// 認証必須：貸出・返却
	authed := api.Group("")
	authed.Use(auth.RequireAuth(secret))
	borrows.RegisterRoutes(authed, borrowSvc)

	// admin専用：申請審査・学生台帳・蔵書管理・ステータス上書き・アカウント管理
	admin := api.Group("")
	admin.Use(auth.RequireAuth(secret), auth.RequireRole(auth.RoleAdmin))
	applications.RegisterAdminRoutes(admin, appSvc)
	students.RegisterAdminRoutes(admin, studentSvc)
	books.RegisterAdminRoutes(admin, bookSvc)
	borrows.RegisterAdminRoutes(admin, borrowSvc)
	auth.RegisterAdminRoutes(admin, authSvc)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		if mode == "dev" {
			// 開発中は平文HTTPで立てる
			log.Printf("[INFO] listening on http://0.0.0.0%s", cfg.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal(err)
			}
			return
		}

		certFile := fmt.Sprintf("config/tls/%s", cfg.Certificate.Cert)
		keyFile := fmt.Sprintf("config/tls/%s", cfg.Certificate.Key)
		log.Printf("[INFO] listening on https://0.0.0.0%s", cfg.Addr)
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
