// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package etl

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"github.com/pdiddy/health-etl/pkg/types"
)

// curatedHeader is the fixed column order of the curated snapshot.
var curatedHeader = []string{"COUNTRY", "AGE", "SEX", "YEAR", "ACTIVITY_VAL", "OBESITY_VAL", "GAP_PP"}

// encodeCuratedCSV renders the curated table as a CSV snapshot. Floats use
// the shortest round-trip form, so identical inputs yield identical bytes.
func encodeCuratedCSV(rows []types.CuratedRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(curatedHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.Country,
			strconv.Itoa(int(r.Age)),
			r.Sex,
			strconv.Itoa(int(r.Year)),
			formatMeasure(r.ActivityVal),
			formatMeasure(r.ObesityVal),
			formatMeasure(r.GapPP),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// encodeMeasureCSV renders one processed measure table as CSV, with the
// measure column named after the table (ACTIVITY_VAL or OBESITY_VAL).
func encodeMeasureCSV(t *types.MeasureTable) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"COUNTRY", "AGE", "SEX", "YEAR", t.Measure}); err != nil {
		return nil, err
	}
	for _, r := range t.Rows {
		record := []string{
			r.Country,
			strconv.Itoa(r.Age),
			string(r.Sex),
			strconv.Itoa(r.Year),
			formatMeasure(r.Value),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// formatMeasure renders an optional measure: empty cell when absent,
// shortest exact decimal form otherwise.
func formatMeasure(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// encodeCuratedParquet renders the curated table as a snappy-compressed
// Parquet file with the same logical schema as the CSV snapshot.
func encodeCuratedParquet(rows []types.CuratedRow) ([]byte, error) {
	return writeParquet(rows)
}

// Parquet row shapes for the processed layers. The measure column name
// differs per table, so each gets its own tagged struct.
type activityParquetRow struct {
	Country string   `parquet:"COUNTRY"`
	Age     int32    `parquet:"AGE"`
	Sex     string   `parquet:"SEX"`
	Year    int32    `parquet:"YEAR"`
	Value   *float64 `parquet:"ACTIVITY_VAL,optional"`
}

type obesityParquetRow struct {
	Country string   `parquet:"COUNTRY"`
	Age     int32    `parquet:"AGE"`
	Sex     string   `parquet:"SEX"`
	Year    int32    `parquet:"YEAR"`
	Value   *float64 `parquet:"OBESITY_VAL,optional"`
}

// encodeMeasureParquet renders one processed measure table as Parquet.
func encodeMeasureParquet(t *types.MeasureTable) ([]byte, error) {
	switch t.Measure {
	case "ACTIVITY_VAL":
		rows := make([]activityParquetRow, len(t.Rows))
		for i, r := range t.Rows {
			rows[i] = activityParquetRow{
				Country: r.Country, Age: int32(r.Age), Sex: string(r.Sex), Year: int32(r.Year), Value: r.Value,
			}
		}
		return writeParquet(rows)
	case "OBESITY_VAL":
		rows := make([]obesityParquetRow, len(t.Rows))
		for i, r := range t.Rows {
			rows[i] = obesityParquetRow{
				Country: r.Country, Age: int32(r.Age), Sex: string(r.Sex), Year: int32(r.Year), Value: r.Value,
			}
		}
		return writeParquet(rows)
	default:
		return nil, fmt.Errorf("unknown measure %q", t.Measure)
	}
}

func writeParquet[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[T](&buf, parquet.Compression(&parquet.Snappy))
	if _, err := w.Write(rows); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
