package testdata

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
)

type Command struct {
	outputDir string
}

func (*Command) Name() string     { return "testdata" }
func (*Command) Synopsis() string { return "Generate a sample input directory for bundling" }
func (*Command) Usage() string {
	return `testdata -out <directory>:
  Generate a directory of well-formed and malformed filenames plus a
  subdirectory, for trying out the bundle command.
`
}

func (c *Command) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "out", "", "output directory path (required)")
}

func (c *Command) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.outputDir == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	if _, err := generateTestData(c.outputDir); err != nil {
		log.Printf("Failed to generate test data: %v", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// Sample lists the names generateTestData creates, by how bundle treats them.
type Sample struct {
	Qualifying []string
	Malformed  []string
	Dirs       []string
}

var sample = Sample{
	Qualifying: []string{
		"alice,2023,graphA,weighted.png",
		"bob,2024,graphB,unweighted.jpg",
		"carol,2023,graphC,weighted.v2.csv",
		"dave,2022,graphA,directed",
		"erin,,graphD,.txt",
	},
	Malformed: []string{
		"broken-name.txt",
		"frank,2023.png",
		"grace,2023,graphA,weighted,extra.png",
		".hidden",
	},
	Dirs: []string{
		"nested,1,2,3",
		"archive",
	},
}

func generateTestData(outputDir string) (*Sample, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, dir := range sample.Dirs {
		path := filepath.Join(outputDir, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// a well-formed name inside a subdirectory must not be picked up
	nested := filepath.Join(outputDir, "archive", "zoe,2020,graphZ,weighted.png")
	if err := os.WriteFile(nested, nil, 0644); err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", nested, err)
	}

	names := append(append([]string{}, sample.Qualifying...), sample.Malformed...)
	for i, name := range names {
		path := filepath.Join(outputDir, name)
		content := fmt.Sprintf("sample file %d\n", i+1)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("failed to create file %s: %w", name, err)
		}
	}

	log.Printf("Generated %d qualifying, %d malformed files and %d directories in %s",
		len(sample.Qualifying), len(sample.Malformed), len(sample.Dirs), outputDir)
	return &sample, nil
}
