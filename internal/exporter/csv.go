package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"klvcli/internal/config"
	"klvcli/pkg/contracts/domain"
)

// CSVWriter exports report tables as CSV files under the configured reports
// directory.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger

	// BOMPrefix prepends a UTF-8 BOM to written files for Excel
	// compatibility. Streaming exports over HTTP never get one.
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger, BOMPrefix: true}
}

// WriteTable writes one report table to its canonical filename inside the
// reports directory and returns the full path written.
func (w *CSVWriter) WriteTable(table domain.ReportTable) (string, error) {
	fullPath := w.paths.GetReportPath(table.Name.ExportFilename())

	w.logger.Info("writing report CSV",
		slog.String("report", string(table.Name)),
		slog.String("path", fullPath),
		slog.Int("rows", len(table.Rows)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if w.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return "", fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	if err := ExportTable(file, table); err != nil {
		return "", err
	}
	return fullPath, nil
}

// WriteReportSet writes all six tables of a run, one file per report. The
// tables are independent, so the writes fan out concurrently.
func (w *CSVWriter) WriteReportSet(set *domain.ReportSet) error {
	var g errgroup.Group
	g.SetLimit(len(domain.Reports))

	for _, name := range domain.Reports {
		table, ok := set.Table(name)
		if !ok {
			return fmt.Errorf("report set is missing the %s table", name)
		}
		g.Go(func() error {
			_, err := w.WriteTable(table)
			return err
		})
	}
	return g.Wait()
}

// ExportTable serializes a table to the writer: header row first, then data
// rows, "\n" separated, cells escaped per RFC 4180 quote doubling.
func ExportTable(out io.Writer, table domain.ReportTable) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
