// Package bundler turns a directory of structured filenames into a
// comma-separated summary file, one line per qualifying file.
package bundler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nrtkbb/fnbundle/models"
	"github.com/nrtkbb/fnbundle/scanner"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// BaseName removes the final extension component from name. Leading dots do
// not start an extension, and a name without a dot is returned unchanged.
func BaseName(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return name
	}
	if strings.TrimLeft(name[:dot], ".") == "" {
		return name
	}
	return name[:dot]
}

// ParseName splits the base name of a file into its four fields. The
// returned error wraps ErrMalformedName when the field count is wrong.
func ParseName(name string) ([models.FieldCount]string, error) {
	var fields [models.FieldCount]string

	parts := strings.Split(BaseName(name), models.FieldDelimiter)
	if len(parts) != models.FieldCount {
		return fields, fmt.Errorf("%w: %s has %d fields", ErrMalformedName, name, len(parts))
	}
	copy(fields[:], parts)
	return fields, nil
}

// Bundler writes bundle output and prints its diagnostics to a writer.
type Bundler struct {
	diag io.Writer
}

// New returns a Bundler printing diagnostics to diag. A nil diag means
// standard output.
func New(diag io.Writer) *Bundler {
	if diag == nil {
		diag = os.Stdout
	}
	return &Bundler{diag: diag}
}

// Run creates or truncates outputPath, then lists inputDir and writes one
// line per qualifying regular file to it. Malformed names are reported and
// skipped; anything that is not a regular file is ignored silently.
func (b *Bundler) Run(ctx context.Context, inputDir, outputPath string) (*models.BundleResult, error) {
	tracer := otel.Tracer("bundler")
	_, span := tracer.Start(ctx, "Bundle")
	defer span.End()

	span.SetAttributes(
		attribute.String("input_dir", inputDir),
		attribute.String("output_path", outputPath),
	)

	result := &models.BundleResult{
		InputDir:   inputDir,
		OutputPath: outputPath,
		StartTime:  time.Now(),
	}

	// a bad input path must leave no output file behind
	info, err := os.Stat(inputDir)
	if err != nil {
		fsErr := &FileSystemError{Op: "list", Path: inputDir, Err: err}
		span.RecordError(fsErr)
		return nil, fsErr
	}
	if !info.IsDir() {
		fsErr := &FileSystemError{Op: "list", Path: inputDir, Err: errNotDir}
		span.RecordError(fsErr)
		return nil, fsErr
	}

	// created before listing: an output inside inputDir is listed on every run
	file, err := os.Create(outputPath)
	if err != nil {
		fsErr := &FileSystemError{Op: "create", Path: outputPath, Err: err}
		span.RecordError(fsErr)
		return nil, fsErr
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		file.Close()
		fsErr := &FileSystemError{Op: "list", Path: inputDir, Err: err}
		span.RecordError(fsErr)
		return nil, fsErr
	}

	w := bufio.NewWriter(file)
	for _, e := range entries {
		entry := scanner.Classify(inputDir, e.Name())
		if !entry.IsRegular {
			result.Ignored++
			continue
		}

		fields, err := ParseName(entry.Name)
		if err != nil {
			fmt.Fprintf(b.diag, "Skipping malformed filename: %s\n", entry.Name)
			result.Skipped = append(result.Skipped, models.SkippedEntry{
				SourceName: entry.Name,
				FieldCount: strings.Count(BaseName(entry.Name), models.FieldDelimiter) + 1,
			})
			continue
		}

		record := models.Record{
			SourceName:          entry.Name,
			Fields:              fields,
			SizeBytes:           entry.SizeBytes,
			ModificationTimeUTC: entry.ModificationTimeUTC,
			CreationTimeUTC:     entry.CreationTimeUTC,
		}
		if _, err := w.WriteString(record.Line() + "\n"); err != nil {
			file.Close()
			fsErr := &FileSystemError{Op: "write", Path: outputPath, Err: err}
			span.RecordError(fsErr)
			return nil, fsErr
		}
		result.Records = append(result.Records, record)
	}

	if err := w.Flush(); err != nil {
		file.Close()
		fsErr := &FileSystemError{Op: "write", Path: outputPath, Err: err}
		span.RecordError(fsErr)
		return nil, fsErr
	}
	if err := file.Close(); err != nil {
		fsErr := &FileSystemError{Op: "close", Path: outputPath, Err: err}
		span.RecordError(fsErr)
		return nil, fsErr
	}

	result.Elapsed = time.Since(result.StartTime)
	span.SetAttributes(
		attribute.Int("accepted", len(result.Records)),
		attribute.Int("skipped", len(result.Skipped)),
		attribute.Int("ignored", result.Ignored),
	)

	fmt.Fprintf(b.diag, "Bundled entries written to %s\n", outputPath)
	return result, nil
}
