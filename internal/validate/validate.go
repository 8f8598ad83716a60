// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate enforces the row-level invariants every table must satisfy
// before anything is persisted: non-null composite keys, key uniqueness, and
// measure values inside [0,100]. A violation is a data-quality failure that
// aborts the run, never a silent drop.
package validate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/health-etl/pkg/types"
)

// sampleLimit caps how many offending keys a DataQualityError carries.
const sampleLimit = 10

// Rule names reported in data-quality failures.
const (
	RuleNonEmpty     = "non-empty"
	RuleKeysComplete = "keys-complete"
	RuleKeysUnique   = "keys-unique"
	RuleMeasureRange = "measure-range"
	RuleYearInteger  = "year-integer"
	RuleCardinality  = "join-cardinality"
)

// DataQualityError reports an invariant violation: which table, which rule,
// and a sample of the offending keys.
type DataQualityError struct {
	Table  string
	Rule   string
	Detail string
	Sample []types.Key
}

func (e *DataQualityError) Error() string {
	msg := fmt.Sprintf("data quality: table %s violates %s", e.Table, e.Rule)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if len(e.Sample) > 0 {
		keys := make([]string, len(e.Sample))
		for i, k := range e.Sample {
			keys[i] = k.String()
		}
		msg += " (sample: " + strings.Join(keys, ", ") + ")"
	}
	return msg
}

// MeasureTable checks one source table against all source-level rules.
func MeasureTable(t *types.MeasureTable) error {
	if t.Len() == 0 {
		return &DataQualityError{Table: t.Name, Rule: RuleNonEmpty, Detail: "table has no rows"}
	}
	if err := completeKeys(t.Name, keysOf(t.Rows)); err != nil {
		return err
	}
	if err := uniqueKeys(t.Name, keysOf(t.Rows)); err != nil {
		return err
	}
	return measureRange(t.Name, t.Measure, t.Rows)
}

// Curated checks the joined table: every source-level rule on all three
// numeric columns plus the cardinality relation against the source sizes.
func Curated(rows []types.CuratedRow, activityLen, obesityLen int) error {
	const name = "curated"
	if len(rows) == 0 {
		return &DataQualityError{Table: name, Rule: RuleNonEmpty, Detail: "join produced no rows"}
	}

	keys := make([]types.Key, len(rows))
	for i, r := range rows {
		keys[i] = r.CuratedKey()
	}
	if err := completeKeys(name, keys); err != nil {
		return err
	}
	if err := uniqueKeys(name, keys); err != nil {
		return err
	}

	var bad []types.Key
	for _, r := range rows {
		if outOfRange(r.ActivityVal) || outOfRange(r.ObesityVal) {
			bad = appendSample(bad, r.CuratedKey())
		}
	}
	if len(bad) > 0 {
		return &DataQualityError{
			Table:  name,
			Rule:   RuleMeasureRange,
			Detail: "measure outside [0,100]",
			Sample: bad,
		}
	}

	limit := activityLen
	if obesityLen < limit {
		limit = obesityLen
	}
	if len(rows) > limit {
		return &DataQualityError{
			Table:  name,
			Rule:   RuleCardinality,
			Detail: fmt.Sprintf("%d joined rows exceed min(%d, %d) source rows", len(rows), activityLen, obesityLen),
		}
	}
	return nil
}

func keysOf(rows []types.MeasureRow) []types.Key {
	keys := make([]types.Key, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	return keys
}

func completeKeys(table string, keys []types.Key) error {
	var bad []types.Key
	for _, k := range keys {
		if !k.IsComplete() {
			bad = appendSample(bad, k)
		}
	}
	if len(bad) > 0 {
		return &DataQualityError{
			Table:  table,
			Rule:   RuleKeysComplete,
			Detail: "null or blank key fields",
			Sample: bad,
		}
	}
	return nil
}

func uniqueKeys(table string, keys []types.Key) error {
	seen := make(map[types.Key]bool, len(keys))
	var dups []types.Key
	dupCount := 0
	for _, k := range keys {
		if seen[k] {
			dupCount++
			dups = appendSample(dups, k)
			continue
		}
		seen[k] = true
	}
	if dupCount > 0 {
		return &DataQualityError{
			Table:  table,
			Rule:   RuleKeysUnique,
			Detail: fmt.Sprintf("%d duplicate rows on the composite key", dupCount),
			Sample: dups,
		}
	}
	return nil
}

func measureRange(table, measure string, rows []types.MeasureRow) error {
	var bad []types.Key
	for _, r := range rows {
		if outOfRange(r.Value) {
			bad = appendSample(bad, r.Key)
		}
	}
	if len(bad) > 0 {
		return &DataQualityError{
			Table:  table,
			Rule:   RuleMeasureRange,
			Detail: measure + " outside [0,100]",
			Sample: bad,
		}
	}
	return nil
}

// outOfRange reports whether a present measure falls outside [0,100].
// Absent measures pass; presence is a separate concern.
func outOfRange(v *float64) bool {
	return v != nil && (*v < 0 || *v > 100)
}

func appendSample(sample []types.Key, k types.Key) []types.Key {
	if len(sample) >= sampleLimit {
		return sample
	}
	return append(sample, k)
}
