package main

import (
	"context"
	"fmt"

	"rentapply/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	// one request carries a whole batch: four categories of five files at
	// the per-file cap, plus multipart overhead
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 224
	}

	return c, nil
}

// validateServeConfig checks the settings only the HTTP server needs.
func validateServeConfig(c *types.Config) error {
	if c.AuthIssuerURL == "" {
		return fmt.Errorf("set AUTH_ISSUER_URL")
	}
	if c.StripeSecretKey == "" {
		return fmt.Errorf("set STRIPE_SECRET_KEY")
	}
	return nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
