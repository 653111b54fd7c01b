// Command seed loads categories, products and the landing page settings from
// a YAML fixture into Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arraiapos/pos/config"
	"github.com/arraiapos/pos/logging"
	"github.com/arraiapos/pos/models"
)

func main() {
	path := flag.String("file", "cmd/seed/fixtures.yaml", "fixture file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	fixture, err := LoadFixture(*path)
	if err != nil {
		logger.Fatal("load fixture", zap.Error(err))
	}

	db, err := models.Open(cfg.PostgresDSN, gormlogger.Default.LogMode(gormlogger.Warn))
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	res, err := Apply(context.Background(), db, fixture)
	if err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	logger.Info("seeded",
		zap.String("file", *path),
		zap.Int("categories", res.Categories),
		zap.Int("products", res.Products),
		zap.Bool("site_config", res.SiteConfig))
}
