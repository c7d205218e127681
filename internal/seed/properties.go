package seed

import (
	"context"
	"fmt"
	"io"

	"rentapply/internal/utils"
	"rentapply/pkg/types"
)

type PropertyRepository interface {
	Properties(ctx context.Context) ([]*types.Property, error)
	UpsertProperty(ctx context.Context, property *types.Property) error
}

// Properties is the demo listing set. IDs are fixed so re-running the seed
// updates rows in place.
//
// To generate new IDs: `go run ./cmd/rentapply nanoid`
var Properties = []types.Property{
	{
		ID:                   "Qm3kV8tJw1ZrX0bN5yLc7pEaHs2dGf9u",
		Title:                "Sunny two bedroom near the park",
		Address:              "412 Alder Street",
		City:                 "Portland",
		State:                "OR",
		ZipCode:              "97205",
		MonthlyRentCents:     185000,
		SecurityDepositCents: 185000,
		LandlordName:         utils.StringPtr("Harbor Property Group"),
	},
	{
		ID:                   "c4NpR7sWq2YtK9mLx0aZ3vBe6hJdU1gF",
		Title:                "Garden level studio",
		Address:              "88 Cedar Lane, Unit B",
		City:                 "Seattle",
		State:                "WA",
		ZipCode:              "98103",
		MonthlyRentCents:     142500,
		SecurityDepositCents: 100000,
		LandlordName:         utils.StringPtr("Maya Chen"),
	},
	{
		ID:                   "T8yHn2LcV5bQw0kR3xZm7sPa1dEfGj4u",
		Title:                "Three bedroom townhouse with garage",
		Address:              "1907 Birch Court",
		City:                 "Boise",
		State:                "ID",
		ZipCode:              "83702",
		MonthlyRentCents:     240000,
		SecurityDepositCents: 300000,
	},
}

// SeedProperties upserts the demo properties. Rows that are not in the list
// are reported but left alone since applications may reference them.
func SeedProperties(ctx context.Context, repo PropertyRepository, out io.Writer) error {
	fmt.Fprintln(out, "Starting property sync...")
	fmt.Fprintf(out, "  Seed file contains %d properties\n", len(Properties))

	seedIDs := make(map[string]bool, len(Properties))
	for _, p := range Properties {
		seedIDs[p.ID] = true
	}

	existing, err := repo.Properties(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch existing properties: %w", err)
	}
	fmt.Fprintf(out, "  Database contains %d properties\n", len(existing))

	unlisted := 0
	for _, p := range existing {
		if !seedIDs[p.ID] {
			unlisted++
		}
	}

	upserted := 0
	for _, p := range Properties {
		fmt.Fprintf(out, "  Upserting property: %s (id: %s)\n", p.Title, p.ID)
		if err := repo.UpsertProperty(ctx, &p); err != nil {
			return fmt.Errorf("failed to upsert property %s: %w", p.ID, err)
		}
		upserted++
	}

	fmt.Fprintf(out, "\nSync complete: %d upserted, %d not in seed file\n", upserted, unlisted)
	return nil
}
