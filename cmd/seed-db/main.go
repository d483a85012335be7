// Command seed-db loads the catalog fixture into PostgreSQL. The fixture is a
// gzipped JSON document with products and customers; rows are upserted so the
// command is safe to re-run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/backoffice/internal/postgres"
)

// seedWorkers bounds concurrent upserts so seeding large fixtures does not
// exhaust the pool.
const seedWorkers = 8

type catalogJSON struct {
	Products  []productJSON  `json:"products"`
	Customers []customerJSON `json:"customers"`
}

type productJSON struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stock_qty"`
	IsActive bool            `json:"is_active"`
}

type customerJSON struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"`
}

func main() {
	var (
		databaseURL string
		catalogFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&catalogFile, "catalog-file", "db/seed/catalog.json.gz", "path to gzipped catalog JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, catalogFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, catalogFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	catalog, err := readCatalog(catalogFile)
	if err != nil {
		return errors.Wrap(err, "read catalog")
	}

	if err := seedProducts(ctx, pool, catalog.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedCustomers(ctx, pool, catalog.Customers); err != nil {
		return errors.Wrap(err, "seed customers")
	}

	return nil
}

func readCatalog(path string) (*catalogJSON, error) {
	slog.Info("reading catalog file", slog.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog file")
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "open gzip stream")
	}
	defer gz.Close()

	var catalog catalogJSON
	if err := json.NewDecoder(gz).Decode(&catalog); err != nil {
		return nil, errors.Wrap(err, "parse catalog JSON")
	}
	return &catalog, nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	slog.Info("upserting products", slog.Int("count", len(products)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(seedWorkers)

	for _, p := range products {
		g.Go(func() error {
			_, err := pool.Exec(ctx, `
				INSERT INTO products (name, sku, price, stock_qty, is_active)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (sku) DO UPDATE
				SET name = EXCLUDED.name,
				    price = EXCLUDED.price,
				    stock_qty = EXCLUDED.stock_qty,
				    is_active = EXCLUDED.is_active`,
				p.Name, p.SKU, p.Price, p.StockQty, p.IsActive,
			)
			return errors.Wrapf(err, "upsert product %s", p.SKU)
		})
	}
	return g.Wait()
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, customers []customerJSON) error {
	slog.Info("upserting customers", slog.Int("count", len(customers)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(seedWorkers)

	for _, c := range customers {
		g.Go(func() error {
			_, err := pool.Exec(ctx, `
				INSERT INTO customers (name, email, document)
				VALUES ($1, $2, $3)
				ON CONFLICT (email) DO UPDATE
				SET name = EXCLUDED.name,
				    document = EXCLUDED.document`,
				c.Name, c.Email, c.Document,
			)
			return errors.Wrapf(err, "upsert customer %s", c.Email)
		})
	}
	return g.Wait()
}
