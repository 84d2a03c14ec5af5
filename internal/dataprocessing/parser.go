package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"klvcli/pkg/contracts/domain"
)

// ParseCSV reads a campaign export with a required header row into raw
// records. Ragged rows are tolerated (short rows leave trailing columns
// empty, long rows drop the excess); rows whose every cell is blank are
// skipped. A structurally unreadable file is fatal to the whole upload.
func ParseCSV(r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []domain.RawRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", line+1, err)
		}
		line++

		if rec, ok := rowToRecord(header, row); ok {
			records = append(records, rec)
		}
	}

	slog.Debug("parsed csv upload",
		slog.Int("columns", len(header)),
		slog.Int("rows", len(records)))

	return records, nil
}

// ParseExcel reads a campaign export saved as .xlsx. The header row is
// located by scanning each sheet for the recognized campaign columns, the
// same way spreadsheet-roundtripped exports bury the header under title rows.
func ParseExcel(path string) ([]domain.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, path)
}

// ParseExcelReader is ParseExcel over a stream, for uploads that never touch
// disk.
func ParseExcelReader(r io.Reader) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel upload: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, "upload")
}

func parseWorkbook(f *excelize.File, source string) ([]domain.RawRecord, error) {
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		headerRow := findHeaderRow(rows)
		if headerRow < 0 {
			continue
		}

		header := make([]string, len(rows[headerRow]))
		for i, h := range rows[headerRow] {
			header[i] = strings.TrimSpace(h)
		}

		var records []domain.RawRecord
		for _, row := range rows[headerRow+1:] {
			if rec, ok := rowToRecord(header, row); ok {
				records = append(records, rec)
			}
		}

		slog.Debug("parsed excel upload",
			slog.String("sheet", sheet),
			slog.Int("header_row", headerRow),
			slog.Int("rows", len(records)))

		return records, nil
	}

	return nil, fmt.Errorf("could not find campaign data header row in %s", source)
}

// findHeaderRow returns the index of the first row carrying the recognized
// campaign columns, or -1.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		var hasSendTime, hasCampaign bool
		for _, cell := range row {
			switch strings.TrimSpace(cell) {
			case domain.ColSendTime:
				hasSendTime = true
			case domain.ColCampaignName:
				hasCampaign = true
			}
		}
		if hasSendTime && hasCampaign {
			return i
		}
	}
	return -1
}

// rowToRecord maps a positional row onto the header. Returns false for rows
// with no non-blank cell.
func rowToRecord(header, row []string) (domain.RawRecord, bool) {
	rec := make(domain.RawRecord, len(header))
	hasData := false
	for i, name := range header {
		if name == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = row[i]
		}
		if strings.TrimSpace(value) != "" {
			hasData = true
		}
		rec[name] = value
	}
	if !hasData {
		return nil, false
	}
	return rec, true
}
