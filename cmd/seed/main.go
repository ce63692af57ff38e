package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"shelfkeeper/internal/books"
	"shelfkeeper/internal/borrows"
	"shelfkeeper/internal/members"
	"shelfkeeper/internal/seats"
	"shelfkeeper/internal/shared/config"
	"shelfkeeper/internal/shared/database"
	"shelfkeeper/internal/shared/middleware"
	"shelfkeeper/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	fmt.Println("Starting shelfkeeper database seeder...")

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.InitDB(ctx, cfg, logger.GetDefault())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	seeded, err := seeder.SeedAll(ctx)
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nDevelopment access tokens:")
	for _, m := range []*members.Member{seeded["member"], seeded["admin"]} {
		token, err := middleware.GenerateAccessToken(cfg.JWT.Secret, m.ID, m.Email, m.Role, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", m.Email, err)
		}
		fmt.Printf("  %s (%s):\n    %s\n", m.Email, m.Role, token)
	}

	fmt.Println("\nSeeding completed.")
}

// CleanDatabase truncates every table the service owns.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"seat_reservations",
		"seats",
		"reservation_logs",
		"reservation_status_overrides",
		"book_reservations",
		"borrows",
		"books",
		"members",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) SeedAll(ctx context.Context) (map[string]*members.Member, error) {
	seeded, err := s.SeedMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed members: %w", err)
	}

	bookIDs, err := s.SeedBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed books: %w", err)
	}

	if err := s.SeedSeats(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed seats: %w", err)
	}

	// One outstanding loan so the "book already borrowed" path can be tried.
	if err := s.SeedBorrow(ctx, seeded["member"].ID, bookIDs[len(bookIDs)-1]); err != nil {
		return nil, fmt.Errorf("failed to seed borrow: %w", err)
	}

	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: failed to clear Redis cache: %v", err)
	}
	return seeded, nil
}

// SeedMembers creates one admin and two members, all with password "qwerty".
func (s *Seeder) SeedMembers(ctx context.Context) (map[string]*members.Member, error) {
	fmt.Println("  Seeding members...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	repo := members.NewRepository(s.db.PostgreSQL)
	data := []struct {
		key   string
		name  string
		email string
		phone string
		role  members.Role
	}{
		{"admin", "Circulation Desk", "admin@shelfkeeper.local", "0223456789", members.RoleAdmin},
		{"member", "Chen Yi-Ting", "yiting@shelfkeeper.local", "0912345678", members.RoleMember},
		{"member2", "Wang Hao", "hao@shelfkeeper.local", "0987654321", members.RoleMember},
	}

	seeded := make(map[string]*members.Member, len(data))
	for _, d := range data {
		member := &members.Member{
			Name:     d.name,
			Email:    d.email,
			Phone:    d.phone,
			Password: string(hashedPassword),
			Role:     d.role,
		}
		if err := repo.Create(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to create member %s: %w", d.email, err)
		}
		seeded[d.key] = member
		fmt.Printf("    Created member: %s (%s)\n", member.Email, member.Role)
	}
	return seeded, nil
}

func (s *Seeder) SeedBooks(ctx context.Context) ([]uuid.UUID, error) {
	fmt.Println("  Seeding books...")

	repo := books.NewRepository(s.db.PostgreSQL)
	catalog := []books.Book{
		{ISBN: "9780134190440", Title: "The Go Programming Language", Author: "Alan Donovan, Brian Kernighan", Publisher: "Addison-Wesley", Classification: "005.133"},
		{ISBN: "9781491941195", Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Publisher: "O'Reilly", Classification: "005.74"},
		{ISBN: "9780441013593", Title: "Dune", Author: "Frank Herbert", Publisher: "Ace", Classification: "813.54"},
		{ISBN: "9780141439518", Title: "Pride and Prejudice", Author: "Jane Austen", Publisher: "Penguin", Classification: "823.7"},
		{ISBN: "9780262033848", Title: "Introduction to Algorithms", Author: "Thomas Cormen", Publisher: "MIT Press", Classification: "005.1"},
	}

	ids := make([]uuid.UUID, 0, len(catalog))
	for i := range catalog {
		book := catalog[i]
		book.IsAvailable = true
		if err := repo.Create(ctx, &book); err != nil {
			return nil, fmt.Errorf("failed to create book %s: %w", book.ISBN, err)
		}
		ids = append(ids, book.ID)
		fmt.Printf("    Created book: %s\n", book.Title)
	}
	return ids, nil
}

// SeedSeats creates rows A and B of the reading room. B5 starts out broken.
func (s *Seeder) SeedSeats(ctx context.Context) error {
	fmt.Println("  Seeding seats...")

	var list []seats.Seat
	for _, row := range []string{"A", "B"} {
		for n := 1; n <= 5; n++ {
			seat := seats.Seat{
				Label:  fmt.Sprintf("%s%d", row, n),
				Zone:   "Reading room " + row,
				Status: seats.SeatAvailable,
			}
			if seat.Label == "B5" {
				seat.Status = seats.SeatBroken
			}
			list = append(list, seat)
		}
	}

	if err := s.db.PostgreSQL.WithContext(ctx).Create(&list).Error; err != nil {
		return err
	}
	fmt.Printf("    Created %d seats\n", len(list))
	return nil
}

func (s *Seeder) SeedBorrow(ctx context.Context, userID, bookID uuid.UUID) error {
	now := time.Now()
	due := now.AddDate(0, 0, 14)

	if err := borrows.NewRepository(s.db.PostgreSQL).Create(ctx, &borrows.Borrow{
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      &due,
	}); err != nil {
		return err
	}
	return books.NewRepository(s.db.PostgreSQL).SetAvailable(ctx, bookID, false)
}
