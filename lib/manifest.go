package lib

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest records the metadata of a generation run next to its artifacts so
// that downstream consumers can tell which parameters produced the tables.
type Manifest struct {
	RunID                 string    `yaml:"run_id"`
	Name                  string    `yaml:"name"`
	CreatedAt             time.Time `yaml:"created_at"`
	NofPatients           int       `yaml:"n_patients"`
	NofTreatments         int       `yaml:"n_treatments"`
	TreatmentIntervalDays int       `yaml:"treatment_interval_days"`
	RandomSeed            int64     `yaml:"random_seed"`
	TargetFailureRate     float64   `yaml:"target_failure_rate"`
	RealizedFailureRate   float64   `yaml:"realized_failure_rate"`
	Artifacts             []string  `yaml:"artifacts"`
}

// ManifestFileName is the name of the run metadata file.
const ManifestFileName = "run.yaml"

// WriteManifest writes the run manifest to the output directory.
func WriteManifest(path string, m *Manifest) {
	out, err := yaml.Marshal(m)
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(path, ManifestFileName), out, 0600); err != nil {
		panic(err)
	}
}
