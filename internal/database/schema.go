package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
)

//go:embed migrations/*.surql
var migrationFiles embed.FS

// ApplySchema runs the embedded schema definitions against the database.
// Statements use IF NOT EXISTS so the call is safe on every startup.
func ApplySchema(ctx context.Context, db Database) error {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading embedded migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrationFiles.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := db.Execute(ctx, string(content), nil); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}

	return nil
}
