package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BundleSchemaVersion tracks the schema version for bundle header documents.
const BundleSchemaVersion = 1

// BundleHeader is the metadata persisted alongside an exported replay bundle.
type BundleHeader struct {
	SchemaVersion int    `json:"schema_version"`
	GameID        uint32 `json:"game_id"`
	GameName      string `json:"game_name"`
	MapID         uint32 `json:"map_id"`
	Days          int    `json:"days"`
	Turns         int    `json:"turns"`
	FilePointer   string `json:"file_pointer"`
}

// Validate ensures the header contains enough information for catalogue tooling.
func (h BundleHeader) Validate() error {
	if h.SchemaVersion <= 0 {
		return fmt.Errorf("schema_version must be positive")
	}
	//1.- Ensure catalogue tooling can locate the bundle artefacts reliably.
	if strings.TrimSpace(h.FilePointer) == "" {
		return fmt.Errorf("file_pointer must not be empty")
	}
	return nil
}

// WriteBundleHeader persists the supplied header to the provided file path.
func WriteBundleHeader(path string, header BundleHeader) error {
	if err := header.Validate(); err != nil {
		return err
	}
	//1.- Encode using indented JSON so manual inspection remains readable.
	payload, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	//2.- Ensure the directory hierarchy exists even when tooling supplies nested paths.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	//3.- Terminate with a newline so POSIX tooling can append easily.
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}

// ReadBundleHeader loads and decodes a bundle header from disk.
func ReadBundleHeader(path string) (BundleHeader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BundleHeader{}, err
	}
	var header BundleHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return BundleHeader{}, err
	}
	//1.- Reuse validation so callers receive consistent error semantics.
	if err := header.Validate(); err != nil {
		return BundleHeader{}, err
	}
	return header, nil
}
