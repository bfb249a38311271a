// Package main populates the item store with demo postings for local
// development. It reads the same environment as the server and writes
// through the item repository, so owners and search vectors are filled the
// same way as for real postings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/saikat7890/Lost-and-Found-System/internal/config"
	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	"github.com/saikat7890/Lost-and-Found-System/internal/repository/postgres"
	"github.com/saikat7890/Lost-and-Found-System/migrations"
	"github.com/saikat7890/Lost-and-Found-System/pkg/database"
	"github.com/saikat7890/Lost-and-Found-System/pkg/logger"
)

type seedItem struct {
	title       string
	description string
	category    string
}

var (
	seedOwners = []domain.Caller{
		{ID: "seed-user-ana", Name: "Ana Silva", Email: "ana@example.com"},
		{ID: "seed-user-ben", Name: "Ben Okafor", Email: "ben@example.com"},
		{ID: "seed-user-chen", Name: "Chen Wei", Email: "chen@example.com"},
	}

	seedItems = []seedItem{
		{"Black Wallet", "Leather wallet with a metro card inside", domain.CategoryAccessories},
		{"Blue Backpack", "Navy backpack with a laptop sleeve", domain.CategoryBags},
		{"iPhone 13", "Phone in a clear case, cracked corner", domain.CategoryElectronics},
		{"House Keys", "Three keys on a red lanyard", domain.CategoryKeys},
		{"Calculus Textbook", "Stewart 8th edition, name on first page", domain.CategoryBooks},
		{"Grey Hoodie", "Medium zip hoodie with a university logo", domain.CategoryClothing},
		{"Silver Ring", "Thin band with engraving on the inside", domain.CategoryJewelry},
		{"Passport", "Passport in a brown cover", domain.CategoryDocuments},
		{"Tennis Racket", "Wilson racket with a yellow grip", domain.CategorySportsEquipment},
		{"Umbrella", "Large black umbrella with a wooden handle", domain.CategoryOther},
	}

	seedLocations = []string{
		"Main Library", "Student Center", "Science Building", "Gym", "Cafeteria", "Parking Lot B",
	}
)

func main() {
	count := flag.Int("count", 50, "number of items to create")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("item-seed", cfg.Environment, cfg.LogLevel)

	if err := run(context.Background(), cfg, log, *count, rand.New(rand.NewSource(*seed))); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, count int, rng *rand.Rand) error {
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	repo := postgres.NewItemRepository(pool)
	now := time.Now().UTC()

	for i := 0; i < count; i++ {
		item := generate(rng, now)
		if err := repo.Create(ctx, item); err != nil {
			return fmt.Errorf("create item %d: %w", i, err)
		}
	}

	log.Info("seed complete", slog.Int("items", count))
	return nil
}

func generate(rng *rand.Rand, now time.Time) *domain.Item {
	owner := seedOwners[rng.Intn(len(seedOwners))]
	tmpl := seedItems[rng.Intn(len(seedItems))]

	kind := domain.KindLost
	if rng.Intn(2) == 0 {
		kind = domain.KindFound
	}
	status := domain.StatusActive
	if rng.Intn(5) == 0 {
		status = domain.StatusResolved
	}

	return &domain.Item{
		ID:           uuid.NewString(),
		Title:        tmpl.title,
		Description:  tmpl.description,
		Category:     tmpl.category,
		Kind:         kind,
		Location:     seedLocations[rng.Intn(len(seedLocations))],
		DateOccurred: now.AddDate(0, 0, -rng.Intn(60)).Truncate(24 * time.Hour),
		ContactInfo:  domain.ContactInfo{Email: owner.Email},
		Images:       []domain.Image{},
		Status:       status,
		OwnerID:      owner.ID,
		Owner:        owner.Owner(),
		IsApproved:   true,
	}
}
