package main

import (
	"fmt"

	"rentapply/internal/db"
	"rentapply/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Print an application with its documents, or every application of an applicant",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "application-id",
			Aliases: []string{"a"},
			Usage:   "Application to print",
		},
		&cli.StringFlag{
			Name:  "applicant-id",
			Usage: "List the applications of this applicant",
		},
	},
	Action: func(c *cli.Context) error {
		applicationID := c.String("application-id")
		applicantID := c.String("applicant-id")
		if applicationID == "" && applicantID == "" {
			return fmt.Errorf("set --application-id or --applicant-id")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		pool, err := db.Connect(c.Context, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		applications := store.NewApplicationRepository(pool)

		if applicantID != "" {
			apps, err := applications.ApplicationsByApplicant(c.Context, applicantID)
			if err != nil {
				return err
			}
			pp.Println(apps)
		}

		if applicationID != "" {
			app, err := applications.Application(c.Context, applicationID)
			if err != nil {
				return err
			}

			docs, err := store.NewDocumentRepository(pool).DocumentsByApplicationID(c.Context, applicationID)
			if err != nil {
				return err
			}

			pp.Println(app)
			pp.Println(docs)
		}

		return nil
	},
}
