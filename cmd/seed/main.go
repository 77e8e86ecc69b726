package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"case-portal/internal/config"
	pg "case-portal/internal/infra/db/postgres"
	"case-portal/internal/infra/db/seed"
	"case-portal/internal/infra/logging"
	"case-portal/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Database.URL == "" {
		fmt.Fprintln(os.Stderr, "database.url (or DATABASE_URL) is required to seed cases")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	caseUC := usecase.NewCaseUseCase(pg.NewCaseRepo(pool), pg.NewTxManager(pool), logging.New(cfg.Log, true))

	added, err := caseUC.Import(ctx, seed.DemoCases())
	if err != nil {
		log.Fatalf("import cases: %v", err)
	}
	stats, err := caseUC.Stats(ctx)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("%d demo cases added, %d cases in total.\n", added, stats.Total)
	for status, n := range stats.ByStatus {
		if n > 0 {
			fmt.Printf("  - %s: %d\n", status.Label(), n)
		}
	}
}
