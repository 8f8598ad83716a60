// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the record shapes and configuration structs shared
// across the ETL stages.
package types

import "fmt"

// Sex is the survey sex dimension.
type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
)

// Key is the composite grain of every table in the pipeline:
// one row per country, age group, sex, and survey year.
type Key struct {
	Country string
	Age     int
	Sex     Sex
	Year    int
}

// String renders the key in a stable, log-friendly form.
func (k Key) String() string {
	return fmt.Sprintf("%s/%d/%s/%d", k.Country, k.Age, k.Sex, k.Year)
}

// IsComplete reports whether all four key fields are populated.
func (k Key) IsComplete() bool {
	return k.Country != "" && k.Age != 0 && k.Sex != "" && k.Year != 0
}

// MeasureRow is one row of a source measure table (activity or obesity).
// Value is nil when the raw extract carried an empty or unparseable cell.
type MeasureRow struct {
	Key
	Value *float64
}

// MeasureTable is one source table: stacked per-age extracts for a single
// measure, in extract order.
type MeasureTable struct {
	// Name identifies the table in diagnostics ("activity", "obesity").
	Name string

	// Measure is the output column name for Value ("ACTIVITY_VAL", "OBESITY_VAL").
	Measure string

	Rows []MeasureRow
}

// Len returns the row count.
func (t *MeasureTable) Len() int {
	return len(t.Rows)
}

// Index maps each composite key to its first row position. Callers that need
// uniqueness must have validated it; Index itself keeps the first occurrence.
func (t *MeasureTable) Index() map[Key]int {
	idx := make(map[Key]int, len(t.Rows))
	for i, r := range t.Rows {
		if _, seen := idx[r.Key]; !seen {
			idx[r.Key] = i
		}
	}
	return idx
}

// CuratedRow is one row of the curated table: both measures on the shared
// grain plus the derived gap in percentage points. Pointer fields map to
// optional Parquet columns.
type CuratedRow struct {
	Country     string   `parquet:"COUNTRY"`
	Age         int32    `parquet:"AGE"`
	Sex         string   `parquet:"SEX"`
	Year        int32    `parquet:"YEAR"`
	ActivityVal *float64 `parquet:"ACTIVITY_VAL,optional"`
	ObesityVal  *float64 `parquet:"OBESITY_VAL,optional"`
	GapPP       *float64 `parquet:"GAP_PP,optional"`
}

// CuratedKey returns the composite key of a curated row.
func (r CuratedRow) CuratedKey() Key {
	return Key{Country: r.Country, Age: int(r.Age), Sex: Sex(r.Sex), Year: int(r.Year)}
}

// Float64 returns a pointer to v. Convenience for building optional measures.
func Float64(v float64) *float64 {
	return &v
}
