package merge

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"
	"github.com/nrtkbb/fnbundle/db"
)

type Command struct {
	sourceDB string
	destDB   string
}

func (*Command) Name() string     { return "merge" }
func (*Command) Synopsis() string { return "Merge one catalog database into another" }
func (*Command) Usage() string {
	return `merge -source <source.db> -dest <dest.db>:
  Copy every run recorded in the source catalog into the destination catalog.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sourceDB, "source", "", "source database file (required)")
	f.StringVar(&c.destDB, "dest", "", "destination database file (required)")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.sourceDB == "" || c.destDB == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	stats, err := db.MergeDatabase(ctx, c.sourceDB, c.destDB, func(oldID, newID int64) {
		log.Printf("Merged run %d as %d", oldID, newID)
	})
	if err != nil {
		log.Printf("Failed to merge databases: %v", err)
		return subcommands.ExitFailure
	}

	log.Printf("Merged %d runs (%d records, %d skipped entries), %d already present",
		stats.Runs, stats.Records, stats.Skipped, stats.Duplicates)
	return subcommands.ExitSuccess
}
