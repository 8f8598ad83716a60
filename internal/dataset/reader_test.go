// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/health-etl/internal/store"
	"github.com/pdiddy/health-etl/pkg/types"
)

func TestFindTableBounds(t *testing.T) {
	tests := []struct {
		name       string
		lines      []string
		wantHeader int
		wantRows   int
		wantErr    bool
	}{
		{
			name: "header after metadata, footer bounds the table",
			lines: []string{
				"WHO European Region",
				"Exported 2024-03-01",
				"COUNTRY,SEX,YEAR,VALUE",
				"ALB,MALE,2014,18.5",
				"ALB,FEMALE,2014,11.2",
				"AUT,MALE,2014,22.9",
				"Source: HBSC survey",
			},
			wantHeader: 2,
			wantRows:   3,
		},
		{
			name: "header on first line, table runs to EOF",
			lines: []string{
				"COUNTRY,SEX,YEAR,VALUE",
				"BEL,MALE,2018,25.0",
				"BEL,FEMALE,2018,17.3",
			},
			wantHeader: 0,
			wantRows:   2,
		},
		{
			name: "zero data rows when metadata follows immediately",
			lines: []string{
				"COUNTRY,SEX,YEAR,VALUE",
				"No data available for this indicator",
			},
			wantHeader: 0,
			wantRows:   0,
		},
		{
			name: "five-column line ends the table",
			lines: []string{
				"COUNTRY,SEX,YEAR,VALUE",
				"CZE,MALE,2010,30.1",
				"CZE,MALE,2010,30.1,extra",
				"CZE,FEMALE,2010,21.8",
			},
			wantHeader: 0,
			wantRows:   1,
		},
		{
			name: "header not found",
			lines: []string{
				"COUNTRY,SEX,YEAR",
				"ALB,MALE,2014",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, rows, err := FindTableBounds(tt.lines, RequiredColumns)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, header)
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestRawObjectName(t *testing.T) {
	got := RawObjectName(types.DefaultActivityPrefix, 11)
	assert.Equal(t, "raw/Percentages of physically active children among 11-year-olds.csv", got)
}

func TestReadMeasureStacksAges(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "Activity", 11,
		"metadata line\nCOUNTRY,SEX,YEAR,VALUE\nALB,Male,2014,18.5\nALB,Female,2014,\nfooter\n")
	writeExtract(t, dir, "Activity", 13,
		"\ufeffCOUNTRY,SEX,YEAR,VALUE\r\nAUT,MALE,2014,22.9\r\n")

	cfg := types.ExtractConfig{Ages: []int{11, 13}}
	var out bytes.Buffer
	table, err := ReadMeasure(context.Background(), store.NewDir(dir), cfg,
		"activity", "ACTIVITY_VAL", "Activity", &out, zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, 3, table.Len())
	assert.Equal(t, "activity", table.Name)
	assert.Equal(t, "ACTIVITY_VAL", table.Measure)

	// Age comes from the extract, sex is normalized, blank VALUE is absent.
	assert.Equal(t, types.Key{Country: "ALB", Age: 11, Sex: types.SexMale, Year: 2014}, table.Rows[0].Key)
	require.NotNil(t, table.Rows[0].Value)
	assert.InDelta(t, 18.5, *table.Rows[0].Value, 1e-9)
	assert.Nil(t, table.Rows[1].Value)
	assert.Equal(t, types.Key{Country: "AUT", Age: 13, Sex: types.SexMale, Year: 2014}, table.Rows[2].Key)

	assert.Contains(t, out.String(), "read raw/Activity 11-year-olds.csv: 2 rows")
}

func TestReadMeasureSkipsEmptyExtract(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "Activity", 11, "COUNTRY,SEX,YEAR,VALUE\nno table here\n")
	writeExtract(t, dir, "Activity", 13, "COUNTRY,SEX,YEAR,VALUE\nBEL,MALE,2018,25\n")

	cfg := types.ExtractConfig{Ages: []int{11, 13}}
	var out bytes.Buffer
	table, err := ReadMeasure(context.Background(), store.NewDir(dir), cfg,
		"activity", "ACTIVITY_VAL", "Activity", &out, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1, table.Len())
	assert.Contains(t, out.String(), "no data rows detected; skipping")
}

func TestReadMeasureRejectsNonIntegerYear(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, "Activity", 11, "COUNTRY,SEX,YEAR,VALUE\nALB,MALE,abcd,18.5\n")

	cfg := types.ExtractConfig{Ages: []int{11}}
	_, err := ReadMeasure(context.Background(), store.NewDir(dir), cfg,
		"activity", "ACTIVITY_VAL", "Activity", &bytes.Buffer{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year-integer")
}

func TestReadMeasureMissingExtract(t *testing.T) {
	cfg := types.ExtractConfig{Ages: []int{11}}
	_, err := ReadMeasure(context.Background(), store.NewDir(t.TempDir()), cfg,
		"activity", "ACTIVITY_VAL", "Activity", &bytes.Buffer{}, zap.NewNop())

	var te *store.TransportError
	require.ErrorAs(t, err, &te)
}

func writeExtract(t *testing.T, dir, prefix string, age int, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(RawObjectName(prefix, age)))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
