package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/trackmap/internal/pkg/config"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("trackmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		log.Fatalf("schema_migrations: %v", err)
	}

	ups, downs, err := migrationFiles(migrationsDir)
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}

	switch os.Args[1] {
	case "up":
		runUp(ctx, pool, ups)
	case "down":
		runDown(ctx, pool, downs)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

// migrationFiles returns up files in order and down files keyed by the up
// file they revert.
func migrationFiles(dir string) ([]string, map[string]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, nil, err
	}
	sort.Strings(files)

	var ups []string
	downs := map[string]string{}
	for _, f := range files {
		if strings.HasSuffix(f, ".down.sql") {
			downs[strings.TrimSuffix(f, ".down.sql")+".sql"] = f
			continue
		}
		ups = append(ups, f)
	}
	return ups, downs, nil
}

func runUp(ctx context.Context, pool *pgxpool.Pool, files []string) {
	for _, f := range files {
		name := filepath.Base(f)
		var applied bool
		if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied); err != nil {
			log.Fatalf("check %s: %v", name, err)
		}
		if applied {
			fmt.Printf("--  %s\n", f)
			continue
		}

		data, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		if _, err = pool.Exec(ctx, string(data)); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
		if _, err = pool.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			log.Fatalf("record %s: %v", name, err)
		}

		fmt.Printf("OK  %s\n", f)
	}

	log.Println("all migrations applied")
}

// runDown reverts the most recently applied migration.
func runDown(ctx context.Context, pool *pgxpool.Pool, downs map[string]string) {
	var name string
	err := pool.QueryRow(ctx, `SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1`).Scan(&name)
	if err != nil {
		log.Fatalf("nothing to revert: %v", err)
	}

	f, ok := downs[filepath.Join(migrationsDir, name)]
	if !ok {
		log.Fatalf("no down migration for %s", name)
	}
	data, err := os.ReadFile(f)
	if err != nil {
		log.Fatalf("read %s: %v", f, err)
	}
	if _, err = pool.Exec(ctx, string(data)); err != nil {
		log.Fatalf("exec %s: %v", f, err)
	}
	if _, err = pool.Exec(ctx, `DELETE FROM schema_migrations WHERE name = $1`, name); err != nil {
		log.Fatalf("unrecord %s: %v", name, err)
	}

	fmt.Printf("OK  %s\n", f)
}
