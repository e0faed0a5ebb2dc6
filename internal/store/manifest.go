package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const manifestFile = "manifest.json"

// Manifest records metadata about a built data directory, including how many
// products took each normalization path.
type Manifest struct {
	BuildTime     time.Time        `json:"build_time"`
	DumpSource    string           `json:"dump_source"`
	ProductCount  int64            `json:"product_count"`
	IndexedCount  int64            `json:"indexed_count"`
	SkippedCount  int64            `json:"skipped_count"`
	SchemaVersion int              `json:"schema_version"`
	SkipReasons   map[string]int64 `json:"skip_reasons,omitempty"`
	Outcomes      map[string]int64 `json:"outcomes,omitempty"`
	Corrections   map[string]int64 `json:"corrections,omitempty"` // by plausibility reason
}

// NewManifest returns a manifest for the current schema with empty counters.
func NewManifest(dumpSource string) *Manifest {
	return &Manifest{
		DumpSource:    dumpSource,
		SchemaVersion: schemaVersion,
		SkipReasons:   make(map[string]int64),
		Outcomes:      make(map[string]int64),
		Corrections:   make(map[string]int64),
	}
}

// Skip counts a record that was not stored.
func (m *Manifest) Skip(reason string) {
	m.SkippedCount++
	m.SkipReasons[reason]++
}

// ReadManifest loads the manifest.json from the given data directory.
func ReadManifest(dataDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.SchemaVersion != schemaVersion {
		return &m, fmt.Errorf("manifest schema version %d, want %d", m.SchemaVersion, schemaVersion)
	}
	return &m, nil
}

// WriteManifest serialises m to manifest.json inside dataDir.
func WriteManifest(dataDir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dataDir, manifestFile), append(data, '\n'), 0o644)
}
