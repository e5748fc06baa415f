package main

import (
	"context"
	"log"
	"time"

	"notekeep/internal/auth"
	"notekeep/internal/config"
	"notekeep/internal/db"
	"notekeep/internal/mailer"
	"notekeep/internal/model"
	"notekeep/internal/repository"
	"notekeep/internal/service"
)

// Development seeder: creates a demo account with a handful of tagged notes
// so the UI has something to show on a fresh database.
const (
	demoEmail    = "demo@notekeep.local"
	demoPassword = "password123"
	demoName     = "Demo User"
)

type seedNote struct {
	title    string
	content  string
	pinned   bool
	archived bool
	tags     []string
	reminder *time.Time
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Tag{}, &model.Note{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	tagRepo := repository.NewTagRepository(gormDB)
	noteRepo := repository.NewNoteRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, jwtService, mailer.LogMailer{}, nil, cfg.ResetTokenTTL)
	notesService := service.NewNotesService(noteRepo, tagRepo)

	ctx := context.Background()

	_, user, err := authService.SignUp(ctx, demoEmail, demoPassword, demoName)
	if err != nil {
		log.Fatalf("Failed to create demo user (already seeded?): %v", err)
	}
	log.Printf("Created demo user %s (%s)", user.Email, user.ID)

	tomorrow := time.Now().Add(24 * time.Hour)
	notes := []seedNote{
		{
			title:   "Welcome to Notekeep",
			content: "<p>Pin what matters, archive what's done, tag everything else.</p>",
			pinned:  true,
			tags:    []string{"getting-started"},
		},
		{
			title:    "Groceries",
			content:  "<ul><li>Coffee</li><li>Oat milk</li><li>Rye bread</li></ul>",
			tags:     []string{"shopping", "home"},
			reminder: &tomorrow,
		},
		{
			title:   "Book notes: The Pragmatic Programmer",
			content: "<p>Tracer bullets, broken windows, DRY.</p>",
			tags:    []string{"reading"},
		},
		{
			title:    "Old meeting notes",
			content:  "<p>Q1 planning, superseded.</p>",
			archived: true,
			tags:     []string{"work"},
		},
	}

	for _, n := range notes {
		created, err := notesService.Create(ctx, user.ID, service.CreateNoteInput{
			Title:        n.title,
			Content:      n.content,
			IsPinned:     n.pinned,
			IsArchived:   n.archived,
			Tags:         n.tags,
			ReminderDate: n.reminder,
		})
		if err != nil {
			log.Fatalf("Failed to seed note %q: %v", n.title, err)
		}
		log.Printf("Seeded note %q (%s)", created.Title, created.ID)
	}

	log.Printf("Seed completed successfully: 1 user, %d notes", len(notes))
	log.Printf("Sign in with %s / %s", demoEmail, demoPassword)
}
