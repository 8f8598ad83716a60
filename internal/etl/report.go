// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package etl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/health-etl/internal/curate"
	"github.com/pdiddy/health-etl/pkg/types"
)

// Artifact describes one snapshot offered to the sink.
type Artifact struct {
	Name   string `yaml:"name"`
	Rows   int    `yaml:"rows"`
	Bytes  int    `yaml:"bytes"`
	SHA256 string `yaml:"sha256"`
}

// Report is the run outcome: counts, validation verdict, and artifacts.
// The artifact digests make the idempotence contract checkable: reruns on
// unchanged inputs must reproduce the same digests.
type Report struct {
	RunID        string        `yaml:"run_id"`
	Mode         types.RunMode `yaml:"mode"`
	ActivityRows int           `yaml:"activity_rows"`
	ObesityRows  int           `yaml:"obesity_rows"`
	CuratedRows  int           `yaml:"curated_rows"`
	Unmatched    curate.Stats  `yaml:"unmatched"`
	Validation   string        `yaml:"validation"`
	Persisted    bool          `yaml:"persisted"`
	Artifacts    []Artifact    `yaml:"artifacts"`
}

func (r *Report) addArtifact(name string, rows int, data []byte) {
	sum := sha256.Sum256(data)
	r.Artifacts = append(r.Artifacts, Artifact{
		Name:   name,
		Rows:   rows,
		Bytes:  len(data),
		SHA256: hex.EncodeToString(sum[:]),
	})
}

// WriteYAML renders the report.
func (r *Report) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling run report: %w", err)
	}
	_, err = w.Write(data)
	return err
}
