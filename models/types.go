package models

import (
	"strings"
	"time"
)

const (
	// FieldDelimiter separates fields both in filenames and in bundle output.
	FieldDelimiter = ","
	// FieldCount is the number of fields a qualifying base name splits into.
	FieldCount = 4
)

// DirectoryEntry is one name listed from the input directory.
type DirectoryEntry struct {
	Name                string
	Path                string
	IsRegular           bool
	SizeBytes           int64
	ModificationTimeUTC int64
	CreationTimeUTC     int64
}

// Record holds the fields parsed from one qualifying filename.
type Record struct {
	SourceName          string
	Fields              [FieldCount]string
	SizeBytes           int64
	ModificationTimeUTC int64
	CreationTimeUTC     int64
}

// Line renders the record as it appears in the bundle output, without the newline.
func (r Record) Line() string {
	return strings.Join(r.Fields[:], FieldDelimiter)
}

type SkippedEntry struct {
	SourceName string
	FieldCount int
}

// BundleResult summarizes a completed bundler pass.
type BundleResult struct {
	InputDir   string
	OutputPath string
	Records    []Record
	Skipped    []SkippedEntry
	Ignored    int
	StartTime  time.Time
	Elapsed    time.Duration
}

type Run struct {
	RunID         int64
	RunUUID       string
	Label         string
	InputDir      string
	OutputPath    string
	CreatedAt     int64
	AcceptedCount int
	SkippedCount  int
	IgnoredCount  int
}
