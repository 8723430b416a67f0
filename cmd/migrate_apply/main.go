package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"taskboard/internal/config"
	"taskboard/internal/db"
	"taskboard/internal/logger"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations (default only lists them)")
	dir := flag.String("dir", filepath.Join("internal", "migrations"), "migrations directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	files, err := os.ReadDir(*dir)
	if err != nil {
		logger.Fatal("read migrations dir", "dir", *dir, "error", err)
	}
	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".sql") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect", "error", err)
	}
	defer pool.Close()

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			logger.Fatal("read migration", "file", name, "error", err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			logger.Fatal("apply migration", "file", name, "error", err)
		}
		logger.Info("applied migration", "file", name)
	}
}
