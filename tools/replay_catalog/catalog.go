package replaycatalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"awbrn/engine/internal/replay"
)

// Entry is one catalogued replay, either a raw archive or an exported bundle.
type Entry struct {
	Path     string `json:"path"`
	Source   string `json:"source"`
	GameID   uint32 `json:"game_id"`
	GameName string `json:"game_name"`
	MapID    uint32 `json:"map_id"`
	Players  int    `json:"players,omitempty"`
	Days     int    `json:"days"`
	Turns    int    `json:"turns"`
}

// List walks the directory tree and catalogues every replay it can decode.
func List(root string) ([]Entry, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root directory must be provided")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root must be a directory")
	}

	var entries []Entry
	//1.- Bundle headers and replay archives are both catalogued in one walk.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case d.Name() == "header.json":
			header, err := replay.ReadBundleHeader(path)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{
				Path:     filepath.Dir(path),
				Source:   "bundle",
				GameID:   header.GameID,
				GameName: header.GameName,
				MapID:    header.MapID,
				Days:     header.Days,
				Turns:    header.Turns,
			})
		case strings.EqualFold(filepath.Ext(path), ".zip"):
			record, err := replay.ReadFile(path)
			if err != nil {
				//2.- Skip archives that are not replays instead of aborting the walk.
				return nil
			}
			entries = append(entries, Entry{
				Path:     path,
				Source:   "archive",
				GameID:   record.Games[0].ID,
				GameName: record.Games[0].Name,
				MapID:    record.Games[0].MapID,
				Players:  len(record.Games[0].Players),
				Days:     len(record.Games),
				Turns:    len(record.Turns),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GameID == entries[j].GameID {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].GameID < entries[j].GameID
	})
	return entries, nil
}

// Refresh exports every archive under root into cacheDir as a bundle, skipping
// games that already have a cached bundle, and returns the cache contents.
func Refresh(root, cacheDir string) ([]Entry, error) {
	archives, err := List(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, err
	}
	cached, err := List(cacheDir)
	if err != nil {
		return nil, err
	}
	have := make(map[uint32]bool, len(cached))
	for _, entry := range cached {
		if entry.Source == "bundle" {
			have[entry.GameID] = true
		}
	}

	exporter, err := replay.NewExporter(cacheDir, nil)
	if err != nil {
		return nil, err
	}
	for _, entry := range archives {
		if entry.Source != "archive" || have[entry.GameID] {
			continue
		}
		//1.- Decode again for export; List only kept the summary fields.
		record, err := replay.ReadFile(entry.Path)
		if err != nil {
			return nil, err
		}
		if _, err := exporter.Export(record); err != nil {
			return nil, err
		}
	}
	return List(cacheDir)
}

// MarshalEntries produces a stable JSON representation of the entries for CLI output.
func MarshalEntries(entries []Entry) ([]byte, error) {
	//1.- Marshal with indentation to keep CLI output legible for operators.
	return json.MarshalIndent(entries, "", "  ")
}
