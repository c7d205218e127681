package main

import (
	"fmt"
	"os"

	"rentapply/internal/db"
	"rentapply/internal/seed"
	"rentapply/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo properties",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := c.Context

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		propertyRepo := store.NewPropertyRepository(pool)

		logrus.Info("Seeding properties...")
		if err := seed.SeedProperties(ctx, propertyRepo, os.Stdout); err != nil {
			return fmt.Errorf("failed to seed properties: %w", err)
		}

		logrus.Info("Properties seeded successfully")

		return nil
	},
}
