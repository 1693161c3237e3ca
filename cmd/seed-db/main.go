// Command seed-db loads the menu catalog and an admin API key into the
// database. Menu files may be plain JSON or gzip-compressed (.json.gz).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/foodking/internal/domain/auth"
	"github.com/xenking/foodking/internal/domain/menu"
	"github.com/xenking/foodking/internal/repository"
)

type menuItemJSON struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	IsAvailable *bool           `json:"isAvailable"`
}

func main() {
	var (
		databaseURL  string
		menuFile     string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file, optionally gzipped")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or FOODKING_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or FOODKING_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("FOODKING_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or FOODKING_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("FOODKING_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	items, err := readMenu(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu")
	}
	if err := seedMenu(ctx, repository.NewMenuRepository(pool), items); err != nil {
		return errors.Wrap(err, "seed menu")
	}

	if err := seedAPIKey(ctx, repository.NewAPIKeyRepository(pool), apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

// readMenu parses a menu file. Files ending in .gz are decompressed with
// parallel gzip.
func readMenu(path string) ([]menu.Item, error) {
	slog.Info("reading menu file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open menu file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var raw []menuItemJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "parse menu JSON")
	}

	now := time.Now()
	items := make([]menu.Item, 0, len(raw))
	for _, m := range raw {
		it := menu.Item{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Price:       m.Price,
			Image:       m.Image,
			Category:    menu.Category(m.Category),
			IsAvailable: m.IsAvailable == nil || *m.IsAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if it.ID == "" {
			return nil, errors.Errorf("menu item %q has no id", m.Name)
		}
		if !it.Category.Valid() {
			return nil, errors.Errorf("menu item %s: invalid category %q", it.ID, m.Category)
		}
		items = append(items, it)
	}
	return items, nil
}

func seedMenu(ctx context.Context, repo *repository.MenuRepository, items []menu.Item) error {
	slog.Info("upserting menu items", slog.Int("count", len(items)))

	for i := range items {
		it := &items[i]
		if err := repo.Upsert(ctx, it); err != nil {
			return errors.Wrapf(err, "upsert menu item %s", it.ID)
		}

		slog.Info("upserted menu item", slog.String("id", it.ID), slog.String("name", it.Name))
	}

	return nil
}

func seedAPIKey(ctx context.Context, repo *repository.APIKeyRepository, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	if err := repo.Upsert(ctx, auth.APIKeyInfo{
		ID:      "admin",
		KeyHash: auth.HashKeyHex([]byte(pepper), apiKey),
		Name:    "Default admin key",
		Scopes:  []string{auth.ScopeAdmin},
	}); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("id", "admin"), slog.String("name", "Default admin key"))

	return nil
}
