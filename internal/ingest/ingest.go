// Package ingest turns raw spreadsheet bytes into a normalized dataset.
// The pipeline validates the source, parses it within the configured
// memory caps, repairs misplaced header rows, strips empty rows and
// columns, and narrows numeric storage widths.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/tabviz/internal/config"
	"github.com/leapstack-labs/tabviz/internal/dataset"
)

// SourceKind tags where the ingested bytes came from.
type SourceKind string

const (
	SourceSpreadsheet SourceKind = "spreadsheet"
	SourceDelimited   SourceKind = "delimited"
	SourceRemote      SourceKind = "remote"
)

// Options adjusts a single ingestion.
type Options struct {
	// PreviewOnly caps rows at the preview limit and skips dtype
	// optimization.
	PreviewOnly bool
	// Remote marks the bytes as fetched from a remote sheet export.
	Remote bool
}

// Result is a completed ingestion.
type Result struct {
	Dataset *dataset.Dataset
	// Truncated reports that the row cap cut the source short. Soft
	// truncation, never an error.
	Truncated bool
	// HeaderRow is the detected header row index; zero unless header
	// recovery re-anchored the parse.
	HeaderRow int
	Kind      SourceKind
}

// Pipeline ingests files under a fixed set of resource limits.
type Pipeline struct {
	limits config.Limits
	logger *slog.Logger
}

// New creates a Pipeline.
func New(limits config.Limits, logger *slog.Logger) *Pipeline {
	return &Pipeline{limits: limits, logger: logger}
}

// Ingest runs the full pipeline over raw bytes. The filename extension
// selects the parser. Parse-level failures surface as *ParseError; the
// caps surface as ErrFileTooLarge / the Truncated flag.
func (p *Pipeline) Ingest(ctx context.Context, raw []byte, filename string, opts Options) (*Result, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	var kind SourceKind
	switch ext {
	case "csv":
		kind = SourceDelimited
	case "xlsx", "xls":
		kind = SourceSpreadsheet
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if opts.Remote {
		kind = SourceRemote
	}

	if int64(len(raw)) > p.limits.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(raw), p.limits.MaxFileSize)
	}

	maxRows := p.limits.MaxRows
	if opts.PreviewOnly && p.limits.PreviewRows < maxRows {
		maxRows = p.limits.PreviewRows
	}

	table, truncated, err := p.parse(ctx, raw, ext, 0, maxRows)
	if err != nil {
		return nil, &ParseError{Source: filename, Err: err}
	}

	headerRow := 0
	if table.width() >= 2 && mostlyPlaceholders(table.header) {
		if idx, ok := p.recoverHeader(ctx, raw, ext); ok && idx > 0 {
			reparsed, retrunc, err := p.parse(ctx, raw, ext, idx, maxRows)
			if err != nil {
				return nil, &ParseError{Source: filename, Err: err}
			}
			table, truncated, headerRow = reparsed, retrunc, idx
			p.logger.Debug("recovered header row", "source", filename, "row", idx)
		}
	}

	ds, err := table.toDataset()
	if err != nil {
		return nil, &ParseError{Source: filename, Err: err}
	}

	ds = ds.DropEmpty()
	if ds.RowCount() == 0 {
		return nil, ErrEmptyDataset
	}

	if !opts.PreviewOnly {
		ds = dataset.Optimize(ds)
	}

	return &Result{Dataset: ds, Truncated: truncated, HeaderRow: headerRow, Kind: kind}, nil
}

func (p *Pipeline) parse(ctx context.Context, raw []byte, ext string, headerRow, maxRows int) (*rawTable, bool, error) {
	switch ext {
	case "csv":
		return readCSV(ctx, raw, headerRow, maxRows, p.limits.ChunkRows)
	case "xls":
		return readXLS(raw, headerRow, maxRows)
	default:
		return readExcel(raw, headerRow, maxRows)
	}
}

// recoverHeader re-reads the leading raw rows with no header assumption
// and scans for a plausible header row. A miss is a silent degradation:
// the caller keeps the placeholder-named parse.
func (p *Pipeline) recoverHeader(ctx context.Context, raw []byte, ext string) (int, bool) {
	_ = ctx

	var rows [][]string
	var err error
	switch ext {
	case "csv":
		rows, err = readCSVHeadless(raw, headerScanRows)
	case "xls":
		rows, err = readXLSHeadless(raw, headerScanRows)
	default:
		rows, err = readExcelHeadless(raw, headerScanRows)
	}
	if err != nil {
		p.logger.Debug("header recovery scan failed", "error", err)
		return 0, false
	}
	return findHeaderRow(rows)
}
