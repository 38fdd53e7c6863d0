package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/db"
	"github.com/prog-Noon/rakaizfoundation/models"
	"github.com/prog-Noon/rakaizfoundation/services"
	"github.com/prog-Noon/rakaizfoundation/services/identity"

	"github.com/google/uuid"
)

// Registers a staff member locally and prints a shared-secret bearer token for them.
// Deployments using an OIDC issuer get tokens from the provider instead.
func main() {
	superuser := flag.Bool("superuser", false, "grant the superuser claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set to issue staff tokens")
	}

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Staff User ===")
	fmt.Println()

	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	if name == "" || email == "" {
		log.Fatal("Name and email are required")
	}

	// Reuse the subject of an existing account with this email
	subject := uuid.New().String()
	var existing models.User
	if err := db.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		subject = existing.ID
	}

	principal := identity.Principal{
		Subject:     subject,
		Email:       email,
		Name:        name,
		IsStaff:     true,
		IsSuperuser: *superuser,
	}
	user, err := services.SyncStaffUser(db.DB, &principal, time.Now())
	if err != nil {
		log.Fatalf("Failed to save user: %v", err)
	}

	token, err := identity.IssueToken(cfg.JWTSecret, principal, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ Staff user ready!")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Name: %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Superuser: %t\n", user.IsSuperuser)
	fmt.Println()
	fmt.Printf("Bearer token (valid for %s):\n%s\n", ttl.String(), token)
}
