package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HeaderSchemaVersion tracks the schema version for replay header documents.
const HeaderSchemaVersion = 1

// TerrainParameters captures the field and physics tuning a match was played with.
type TerrainParameters map[string]float64

// Clone returns a copy of the terrain parameters map.
func (p TerrainParameters) Clone() TerrainParameters {
	if len(p) == 0 {
		return nil
	}
	clone := make(TerrainParameters, len(p))
	for key, value := range p {
		clone[key] = value
	}
	return clone
}

// Header is the metadata persisted alongside a replay bundle.
type Header struct {
	SchemaVersion int               `json:"schema_version"`
	MatchID       string            `json:"match_id"`
	MatchSeed     string            `json:"match_seed"`
	Mode          string            `json:"mode,omitempty"`
	Players       []string          `json:"players,omitempty"`
	Rounds        int               `json:"rounds"`
	Winner        string            `json:"winner,omitempty"`
	TerrainParams TerrainParameters `json:"terrain_params,omitempty"`
	FilePointer   string            `json:"file_pointer"`
}

// Validate ensures the header contains enough information for tooling to open the bundle.
func (h Header) Validate() error {
	if h.SchemaVersion <= 0 {
		return fmt.Errorf("schema_version must be positive")
	}
	//1.- Tooling locates the manifest through the file pointer.
	if strings.TrimSpace(h.FilePointer) == "" {
		return fmt.Errorf("file_pointer must not be empty")
	}
	return nil
}

// WriteHeader persists the supplied header to the provided file path.
func WriteHeader(path string, header Header) error {
	if err := header.Validate(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}

// ReadHeader loads and decodes a replay header from disk.
func ReadHeader(path string) (Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, err
	}
	var header Header
	if err := json.Unmarshal(data, &header); err != nil {
		return Header{}, fmt.Errorf("decode header %s: %w", path, err)
	}
	if err := header.Validate(); err != nil {
		return Header{}, err
	}
	return header, nil
}
