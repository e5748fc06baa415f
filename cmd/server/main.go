package main

import (
	"log"
	"net/http"
	"os"

	"notekeep/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"notekeep/internal/auth"
	"notekeep/internal/cache"
	"notekeep/internal/config"
	"notekeep/internal/db"
	"notekeep/internal/handler"
	"notekeep/internal/mailer"
	"notekeep/internal/model"
	"notekeep/internal/repository"
	"notekeep/internal/router"
	"notekeep/internal/service"
)

// @title Notekeep API
// @version 1.0
// @description Personal note-taking API with tags, pin/archive flags, search and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.Note{},
			&model.Tag{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Tag{},
		&model.Note{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	resetMailer := mailer.LogMailer{}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, resetMailer, cacheClient, cfg.ResetTokenTTL)
	notesService := service.NewNotesService(noteRepo, tagRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	notesHandler := handler.NewNotesHandler(notesService)

	// Register routes
	router.Register(e, cfg, authHandler, notesHandler)

	log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
