// Seeds the default categories and an initial admin account. Safe to run
// repeatedly: existing rows are left untouched.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ringbuz/ringbuz-api/internal/models"
	"github.com/ringbuz/ringbuz-api/pkg/config"
	"github.com/ringbuz/ringbuz-api/pkg/database"
)

type seedCategory struct {
	Name string
	Type models.ContentType
	Slug string
}

var defaultCategories = []seedCategory{
	{Name: "Nature", Type: models.ContentTypeWallpapers, Slug: "nature"},
	{Name: "Abstract", Type: models.ContentTypeWallpapers, Slug: "abstract"},
	{Name: "Animals", Type: models.ContentTypeWallpapers, Slug: "animals"},
	{Name: "Cities", Type: models.ContentTypeWallpapers, Slug: "cities"},
	{Name: "Space", Type: models.ContentTypeWallpapers, Slug: "space"},
	{Name: "Alarms", Type: models.ContentTypeRingtones, Slug: "alarms"},
	{Name: "Classic", Type: models.ContentTypeRingtones, Slug: "classic"},
	{Name: "Electronic", Type: models.ContentTypeRingtones, Slug: "electronic"},
	{Name: "Notifications", Type: models.ContentTypeRingtones, Slug: "notifications"},
}

func main() {
	var (
		adminEmail    string
		adminUsername string
		adminPassword string
	)
	flag.StringVar(&adminEmail, "admin-email", "", "Email for the initial admin account")
	flag.StringVar(&adminUsername, "admin-username", "admin", "Username for the initial admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "Password for the initial admin account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seeded := 0
	for _, cat := range defaultCategories {
		res, err := db.ExecContext(ctx, `INSERT INTO categories (id, name, type, slug, created_at)
		VALUES ($1, $2, $3, $4, $5) ON CONFLICT (type, slug) DO NOTHING`,
			uuid.NewString(), cat.Name, cat.Type, cat.Slug, time.Now().UTC())
		if err != nil {
			log.Fatalf("failed to seed category %s/%s: %v", cat.Type, cat.Slug, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			seeded++
		}
	}
	log.Printf("categories seeded: %d new, %d total", seeded, len(defaultCategories))

	if adminEmail == "" || adminPassword == "" {
		log.Println("no admin credentials supplied, skipping admin account")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	now := time.Now().UTC()
	res, err := db.ExecContext(ctx, `INSERT INTO profiles (id, username, email, password_hash, role, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6) ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), adminUsername, adminEmail, string(hash), models.RoleAdmin, now)
	if err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("admin account created: %s", adminEmail)
	} else {
		log.Printf("admin account already exists: %s", adminEmail)
	}
}
