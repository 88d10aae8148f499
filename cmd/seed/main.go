// seed creates the roles and a verified demo account in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
	"github.com/ErlanBelekov/pharmacy-auth/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/pharmacy-auth/internal/password"
	"github.com/joho/godotenv"
)

const (
	seedEmail    = "seed@pharmacy.local"
	seedPassword = "Password123"
)

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set (export it or add it to .env)")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	roles := postgres.NewRoleRepository(pool)
	inserted, err := roles.Seed(ctx, postgres.DefaultRoles)
	if err != nil {
		log.Fatalf("seed roles: %v", err)
	}

	role, err := roles.FindByName(ctx, domain.DefaultRoleName)
	if err != nil {
		log.Fatalf("find role: %v", err)
	}

	user, created, err := seedUser(ctx, postgres.NewUserRepository(pool), role.ID)
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Roles inserted: %d  (of %d)\n", inserted, len(postgres.DefaultRoles))
	fmt.Printf("  User:           %s / %s  (created: %t)\n", seedEmail, seedPassword, created)
	fmt.Printf("  User ID:        %s\n", user.ID)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1 - log in from a new device, the OTP is printed in the server log:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # -> 201 {\"withOTP\":true,\"token\":\"eyJ...\",...}")
	fmt.Println()
	fmt.Println("  Step 2 - prove the device and remember it:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/auth/verify-device \\")
	fmt.Println("      -H \"Authorization: Bearer $OTP_TOKEN\" -H 'Content-Type: application/json' \\")
	fmt.Println("      -d '{\"otp_code\":\"123456\",\"rememberMe\":true}'")
	fmt.Println()
	fmt.Println("  Step 3 - read the profile with the session token:")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8080/users/me -H \"Authorization: Bearer $SESSION\"")
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

// seedUser returns the existing seed account or creates a verified one.
func seedUser(ctx context.Context, users userStore, roleID string) (*domain.User, bool, error) {
	existing, err := users.FindByEmail(ctx, seedEmail)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	hashed, err := password.NewHasher(password.DefaultCost).Hash(seedPassword)
	if err != nil {
		return nil, false, err
	}

	user, err := users.Create(ctx, &domain.User{
		FirstName:   "Seed",
		LastName:    "User",
		Email:       seedEmail,
		Password:    hashed,
		PhoneNumber: "0600000000",
		City:        "Casablanca",
		CINNumber:   "SD100000",
		RoleID:      roleID,
	})
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	user.VerifiedAt = &now
	if err := users.Save(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
