package bundle

import (
	"context"
	"flag"
	"io"
	"log"

	"github.com/google/subcommands"
	"github.com/nrtkbb/fnbundle/app"
	"github.com/nrtkbb/fnbundle/bundler"
	"github.com/nrtkbb/fnbundle/config"
	"github.com/nrtkbb/fnbundle/db"
)

type Command struct {
	configPath string
	inputDir   string
	outputPath string
	dbPath     string
	label      string

	stdout io.Writer
}

func (*Command) Name() string     { return "bundle" }
func (*Command) Synopsis() string { return "Bundle structured filenames into a summary file" }
func (*Command) Usage() string {
	return `bundle -in <directory> [-out <file>] [-config <file>] [-db <database>] [-label <name>]:
  Parse every regular file name in a directory as four comma-separated fields
  and write one line per well-formed name to the output file.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "YAML config file")
	f.StringVar(&c.inputDir, "in", "", "input directory (required unless set in config)")
	f.StringVar(&c.outputPath, "out", "", "output file path (default "+config.DefaultOutputPath+")")
	f.StringVar(&c.dbPath, "db", "", "catalog database recording this run")
	f.StringVar(&c.label, "label", "", "label stored with the catalog run")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg := config.DefaultConfig()
	if c.configPath != "" {
		loaded, err := config.LoadConfig(c.configPath)
		if err != nil {
			log.Printf("Failed to load config: %v", err)
			return subcommands.ExitUsageError
		}
		cfg = loaded
	}
	cfg.ApplyOverrides(c.inputDir, c.outputPath, c.dbPath, c.label)
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		f.Usage()
		return subcommands.ExitUsageError
	}

	appCtx := app.NewAppContext(ctx, cfg)
	if c.stdout != nil {
		appCtx.Stdout = c.stdout
	}
	defer appCtx.PerformCleanup()

	result, err := bundler.New(appCtx.Stdout).Run(ctx, cfg.InputDir, cfg.OutputPath)
	if err != nil {
		log.Printf("Bundle failed: %v", err)
		return subcommands.ExitFailure
	}

	if cfg.DBPath == "" {
		return subcommands.ExitSuccess
	}

	if err := appCtx.OpenCatalog(); err != nil {
		log.Printf("Failed to setup database: %v", err)
		return subcommands.ExitFailure
	}
	if _, err := db.SaveRun(ctx, appCtx.DB, cfg.Label, result); err != nil {
		log.Printf("Failed to record run: %v", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
