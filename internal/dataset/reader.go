// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads raw WHO survey extracts into measure tables. The raw
// CSVs carry free-text metadata before and after the data table, so the reader
// locates the header by its column names and the table extent by the
// four-column rule, then parses only that window.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/health-etl/internal/store"
	"github.com/pdiddy/health-etl/internal/validate"
	"github.com/pdiddy/health-etl/pkg/types"
)

// RequiredColumns are the header names every raw extract must carry.
var RequiredColumns = []string{"COUNTRY", "SEX", "YEAR", "VALUE"}

// rawDir is the container prefix holding the raw extracts.
const rawDir = "raw"

// RawObjectName returns the object name of one extract, e.g.
// "raw/Prevalence of overweight (including obesity) among 11-year-olds.csv".
func RawObjectName(prefix string, age int) string {
	return fmt.Sprintf("%s/%s %d-year-olds.csv", rawDir, prefix, age)
}

// FindTableBounds locates the data table inside a raw extract. It returns the
// 0-based index of the header line (the first line containing every required
// column name) and the number of contiguous data lines after it that have
// exactly three commas, i.e. four columns. Metadata lines before and after
// the table break the rule and bound the window.
func FindTableBounds(lines []string, requiredCols []string) (headerIdx, dataRows int, err error) {
	headerIdx = -1
	for i, line := range lines {
		ok := true
		for _, col := range requiredCols {
			if !strings.Contains(line, col) {
				ok = false
				break
			}
		}
		if ok {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return 0, 0, fmt.Errorf("header not found: no line contains all of %v", requiredCols)
	}

	for _, line := range lines[headerIdx+1:] {
		if strings.Count(line, ",") != 3 {
			break
		}
		dataRows++
	}
	return headerIdx, dataRows, nil
}

// ReadMeasure reads and stacks one measure across all configured ages.
// Extracts with zero detected data rows are skipped with a warning; per-age
// results are concatenated in age order so output row order is deterministic.
func ReadMeasure(ctx context.Context, src store.Reader, cfg types.ExtractConfig, name, measure, prefix string, w io.Writer, log *zap.Logger) (*types.MeasureTable, error) {
	table := &types.MeasureTable{Name: name, Measure: measure}

	for _, age := range cfg.Ages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		objName := RawObjectName(prefix, age)
		data, err := src.Get(ctx, objName)
		if err != nil {
			return nil, err
		}

		lines := splitLines(data)
		headerIdx, dataRows, err := FindTableBounds(lines, RequiredColumns)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", objName, err)
		}
		log.Debug("located extract table",
			zap.String("object", objName),
			zap.Int("header_idx", headerIdx),
			zap.Int("data_rows", dataRows))

		if dataRows == 0 {
			fmt.Fprintf(w, "warning: %s: no data rows detected; skipping\n", objName)
			continue
		}

		rows, err := parseWindow(lines[headerIdx:headerIdx+1+dataRows], name, age)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", objName, err)
		}
		table.Rows = append(table.Rows, rows...)

		fmt.Fprintf(w, "read %s: %d rows\n", objName, len(rows))
	}

	return table, nil
}

// parseWindow parses the header line plus data lines of one extract and
// normalizes types: YEAR strictly integer, VALUE float or absent, SEX upper
// case. The AGE column comes from the extract being read, not the file body.
func parseWindow(window []string, tableName string, age int) ([]types.MeasureRow, error) {
	r := csv.NewReader(strings.NewReader(strings.Join(window, "\n")))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing table window: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("table window has no data records")
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[strings.TrimSpace(h)] = i
	}
	maxIdx := 0
	for _, required := range RequiredColumns {
		i, ok := col[required]
		if !ok {
			return nil, fmt.Errorf("header missing column %s", required)
		}
		if i > maxIdx {
			maxIdx = i
		}
	}

	rows := make([]types.MeasureRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) <= maxIdx {
			return nil, fmt.Errorf("data record has %d fields, fewer than the header", len(rec))
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[col["YEAR"]]))
		if err != nil {
			return nil, &validate.DataQualityError{
				Table:  tableName,
				Rule:   validate.RuleYearInteger,
				Detail: fmt.Sprintf("YEAR %q is not an integer", rec[col["YEAR"]]),
			}
		}

		row := types.MeasureRow{
			Key: types.Key{
				Country: strings.TrimSpace(rec[col["COUNTRY"]]),
				Age:     age,
				Sex:     types.Sex(strings.ToUpper(strings.TrimSpace(rec[col["SEX"]]))),
				Year:    year,
			},
		}
		if raw := strings.TrimSpace(rec[col["VALUE"]]); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				row.Value = types.Float64(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// splitLines splits a raw extract into lines, tolerating CRLF endings and a
// UTF-8 BOM (the WHO exports carry one).
func splitLines(data []byte) []string {
	text := strings.TrimPrefix(string(data), "\ufeff")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
