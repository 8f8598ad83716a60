package types

// StorageConfig addresses the remote blob store holding the raw, processed,
// and curated layers.
type StorageConfig struct {
	// Account is the storage account name (e.g. "childactivityobesity").
	Account string `json:"account" yaml:"account"`

	// Container is the blob container holding raw/, processed/, curated/.
	Container string `json:"container" yaml:"container"`

	// SASToken authorizes reads and writes. Supplied via environment or
	// .secrets/, never via flags, and never logged.
	SASToken string `json:"-" yaml:"-"`
}

// ExtractConfig describes where the raw survey extracts live and how they
// are named.
type ExtractConfig struct {
	// Ages lists the survey age groups to stack (default 11, 13, 15).
	Ages []int `json:"ages" yaml:"ages"`

	// ActivityPrefix is the raw file name prefix for the activity extracts.
	ActivityPrefix string `json:"activity_prefix" yaml:"activity_prefix"`

	// ObesityPrefix is the raw file name prefix for the obesity extracts.
	ObesityPrefix string `json:"obesity_prefix" yaml:"obesity_prefix"`

	// RawDir, when set, reads extracts from a local directory instead of
	// the remote container.
	RawDir string `json:"raw_dir" yaml:"raw_dir"`
}

// RunMode selects what the pipeline does after validation.
type RunMode string

const (
	// ModeDryRun validates everything and writes nothing.
	ModeDryRun RunMode = "dry-run"

	// ModeLocal writes snapshot artifacts under a local directory.
	ModeLocal RunMode = "local"

	// ModeRemote writes processed and curated layers to the blob store.
	ModeRemote RunMode = "remote"
)

// OutputConfig controls where and in which formats artifacts are written.
type OutputConfig struct {
	// Mode is the execution mode: dry-run, local, or remote.
	Mode RunMode `json:"mode" yaml:"mode"`

	// LocalDir is the output directory for local mode.
	LocalDir string `json:"local_dir" yaml:"local_dir"`

	// Parquet controls whether columnar artifacts are written alongside CSV.
	Parquet bool `json:"parquet" yaml:"parquet"`

	// ReportPath, when set, writes the YAML run report to this file.
	ReportPath string `json:"report_path" yaml:"report_path"`
}

// CatalogConfig locates the local run ledger.
type CatalogConfig struct {
	// StateDir is the directory holding the catalog database (default ".health-etl").
	StateDir string `json:"state_dir" yaml:"state_dir"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Extract ExtractConfig `json:"extract" yaml:"extract"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
}

// DefaultAges are the HBSC survey age groups.
var DefaultAges = []int{11, 13, 15}

const (
	// DefaultActivityPrefix matches the WHO activity export file names.
	DefaultActivityPrefix = "Percentages of physically active children among"

	// DefaultObesityPrefix matches the WHO overweight export file names.
	DefaultObesityPrefix = "Prevalence of overweight (including obesity) among"
)
