// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/health-etl/pkg/types"
)

func measureTable(rows ...types.MeasureRow) *types.MeasureTable {
	return &types.MeasureTable{Name: "activity", Measure: "ACTIVITY_VAL", Rows: rows}
}

func row(country string, age int, sex types.Sex, year int, val float64) types.MeasureRow {
	return types.MeasureRow{
		Key:   types.Key{Country: country, Age: age, Sex: sex, Year: year},
		Value: types.Float64(val),
	}
}

func TestMeasureTable(t *testing.T) {
	tests := []struct {
		name     string
		table    *types.MeasureTable
		wantRule string
	}{
		{
			name: "valid table passes",
			table: measureTable(
				row("ALB", 11, types.SexMale, 2014, 18.5),
				row("ALB", 11, types.SexFemale, 2014, 11.2),
				row("ALB", 13, types.SexMale, 2014, 16.0),
			),
		},
		{
			name:     "empty table",
			table:    measureTable(),
			wantRule: RuleNonEmpty,
		},
		{
			name: "blank country",
			table: measureTable(
				row("", 11, types.SexMale, 2014, 18.5),
			),
			wantRule: RuleKeysComplete,
		},
		{
			name: "missing sex",
			table: measureTable(
				row("ALB", 11, "", 2014, 18.5),
			),
			wantRule: RuleKeysComplete,
		},
		{
			name: "duplicate composite key",
			table: measureTable(
				row("ALB", 11, types.SexMale, 2014, 18.5),
				row("ALB", 11, types.SexMale, 2014, 19.0),
			),
			wantRule: RuleKeysUnique,
		},
		{
			name: "measure above range",
			table: measureTable(
				row("ALB", 11, types.SexMale, 2014, 105),
			),
			wantRule: RuleMeasureRange,
		},
		{
			name: "measure below range",
			table: measureTable(
				row("ALB", 11, types.SexMale, 2014, -0.1),
			),
			wantRule: RuleMeasureRange,
		},
		{
			name: "absent measure passes range check",
			table: measureTable(
				types.MeasureRow{Key: types.Key{Country: "ALB", Age: 11, Sex: types.SexMale, Year: 2014}},
			),
		},
		{
			name: "boundary values pass",
			table: measureTable(
				row("ALB", 11, types.SexMale, 2014, 0),
				row("ALB", 11, types.SexFemale, 2014, 100),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MeasureTable(tt.table)
			if tt.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			var dq *DataQualityError
			require.ErrorAs(t, err, &dq)
			assert.Equal(t, tt.wantRule, dq.Rule)
			assert.Equal(t, "activity", dq.Table)
		})
	}
}

func TestMeasureTableSampleCapped(t *testing.T) {
	var rows []types.MeasureRow
	for year := 2000; year < 2025; year++ {
		rows = append(rows, row("ALB", 11, types.SexMale, year, 200))
	}
	err := MeasureTable(measureTable(rows...))

	var dq *DataQualityError
	require.ErrorAs(t, err, &dq)
	assert.Equal(t, RuleMeasureRange, dq.Rule)
	assert.Len(t, dq.Sample, sampleLimit)
}

func curatedRow(country string, age int, sex types.Sex, year int, act, obe float64) types.CuratedRow {
	gap := act - obe
	return types.CuratedRow{
		Country: country, Age: int32(age), Sex: string(sex), Year: int32(year),
		ActivityVal: types.Float64(act), ObesityVal: types.Float64(obe), GapPP: &gap,
	}
}

func TestCurated(t *testing.T) {
	good := []types.CuratedRow{
		curatedRow("ALB", 11, types.SexMale, 2014, 18.5, 28.9),
		curatedRow("ALB", 11, types.SexFemale, 2014, 11.2, 19.4),
	}
	assert.NoError(t, Curated(good, 2, 5))

	t.Run("empty join", func(t *testing.T) {
		var dq *DataQualityError
		require.ErrorAs(t, Curated(nil, 2, 5), &dq)
		assert.Equal(t, RuleNonEmpty, dq.Rule)
	})

	t.Run("duplicate keys", func(t *testing.T) {
		dup := append([]types.CuratedRow{}, good...)
		dup = append(dup, good[0])
		var dq *DataQualityError
		require.ErrorAs(t, Curated(dup, 5, 5), &dq)
		assert.Equal(t, RuleKeysUnique, dq.Rule)
	})

	t.Run("out-of-range obesity measure", func(t *testing.T) {
		bad := append([]types.CuratedRow{}, good...)
		bad = append(bad, curatedRow("AUT", 13, types.SexMale, 2018, 20, 101))
		var dq *DataQualityError
		require.ErrorAs(t, Curated(bad, 5, 5), &dq)
		assert.Equal(t, RuleMeasureRange, dq.Rule)
	})

	t.Run("cardinality exceeds smaller source", func(t *testing.T) {
		var dq *DataQualityError
		require.ErrorAs(t, Curated(good, 1, 5), &dq)
		assert.Equal(t, RuleCardinality, dq.Rule)
	})
}

func TestDataQualityErrorMessage(t *testing.T) {
	err := &DataQualityError{
		Table:  "obesity",
		Rule:   RuleKeysUnique,
		Detail: "2 duplicate rows on the composite key",
		Sample: []types.Key{{Country: "ALB", Age: 11, Sex: types.SexMale, Year: 2014}},
	}
	msg := err.Error()
	assert.Contains(t, msg, "obesity")
	assert.Contains(t, msg, RuleKeysUnique)
	assert.Contains(t, msg, "ALB/11/MALE/2014")
}
