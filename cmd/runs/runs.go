package runs

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/google/subcommands"
	"github.com/nrtkbb/fnbundle/db"
	"github.com/nrtkbb/fnbundle/models"
)

type Command struct {
	dbPath string
	limit  int
}

func (*Command) Name() string     { return "runs" }
func (*Command) Synopsis() string { return "List recent bundle runs from the catalog" }
func (*Command) Usage() string {
	return `runs -db <database> [-limit <n>]:
  Print the most recent runs recorded in the catalog, newest first.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dbPath, "db", "", "database file path (required)")
	f.IntVar(&c.limit, "limit", 20, "maximum number of runs to print")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.dbPath == "" || c.limit < 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	database, err := db.SetupDatabase(c.dbPath)
	if err != nil {
		log.Printf("Failed to setup database: %v", err)
		return subcommands.ExitFailure
	}
	defer database.Close()

	runs, err := db.ListRuns(ctx, database, c.limit, 0)
	if err != nil {
		log.Printf("Failed to list runs: %v", err)
		return subcommands.ExitFailure
	}

	if err := printRuns(color.Output, runs); err != nil {
		log.Printf("Failed to print runs: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printRuns writes runs as an aligned table. Colors follow fatih/color's
// terminal detection.
func printRuns(w io.Writer, runs []models.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}

	label := color.New(color.FgCyan)
	success := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, label.Sprint("ID")+"\t"+label.Sprint("LABEL")+"\t"+label.Sprint("CREATED")+"\t"+
		label.Sprint("ACCEPTED")+"\t"+label.Sprint("SKIPPED")+"\t"+label.Sprint("IGNORED")+"\t"+label.Sprint("OUTPUT"))

	for _, r := range runs {
		skipped := fmt.Sprint(r.SkippedCount)
		if r.SkippedCount > 0 {
			skipped = warn.Sprint(skipped)
		}
		name := r.Label
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.RunID,
			name,
			time.Unix(r.CreatedAt, 0).UTC().Format(time.RFC3339),
			success.Sprint(r.AcceptedCount),
			skipped,
			r.IgnoredCount,
			r.OutputPath,
		)
	}
	return tw.Flush()
}

