package migrate

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"
	"github.com/nrtkbb/fnbundle/db"
)

type Command struct {
	dbPath string
	down   bool
}

func (*Command) Name() string     { return "migrate" }
func (*Command) Synopsis() string { return "Run catalog database migrations" }
func (*Command) Usage() string {
	return `migrate -db <database> [-down]:
  Apply pending migrations to the catalog, or roll back the latest one.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", "", "database file path (required)")
	f.BoolVar(&c.down, "down", false, "roll back the most recent migration")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.dbPath == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	if c.down {
		log.Printf("Rolling back latest migration for %s...", c.dbPath)
		if err := db.RollbackMigration(c.dbPath); err != nil {
			log.Printf("Failed to roll back migration: %v", err)
			return subcommands.ExitFailure
		}
	} else {
		log.Printf("Running database migrations for %s...", c.dbPath)
		if err := db.RunMigrations(c.dbPath); err != nil {
			log.Printf("Failed to run migrations: %v", err)
			return subcommands.ExitFailure
		}
	}

	version, ok, err := db.SchemaVersion(c.dbPath)
	if err != nil {
		log.Printf("Failed to read schema version: %v", err)
		return subcommands.ExitFailure
	}
	if ok {
		log.Printf("Catalog schema is at version %d", version)
	} else {
		log.Println("Catalog schema has no migrations applied")
	}

	return subcommands.ExitSuccess
}
