package replay

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Exporter streams decoded replays into compressed bundles on disk.
type Exporter struct {
	mu         sync.Mutex
	root       string
	now        func() time.Time
	exports    int64
	lastExport time.Time
	lastPath   string
}

// ExportStats summarises exporter activity for monitoring endpoints.
type ExportStats struct {
	Exports        int64
	LastExportPath string
	LastExportTime time.Time
}

// NewExporter constructs an exporter that writes bundles under root.
func NewExporter(root string, clock func() time.Time) (*Exporter, error) {
	if root == "" {
		return nil, fmt.Errorf("bundle root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Exporter{root: root, now: clock}, nil
}

// Export writes the replay's actions and day snapshots into a fresh bundle
// and returns the bundle directory.
func (e *Exporter) Export(replay *Replay) (string, error) {
	if e == nil {
		return "", fmt.Errorf("exporter not configured")
	}
	if replay == nil || len(replay.Games) == 0 {
		return "", fmt.Errorf("no replay data to export")
	}

	first := replay.Games[0]
	writer, _, err := NewBundleWriter(e.root, first.Name, e.now)
	if err != nil {
		return "", err
	}
	writer.SetGameMetadata(first.ID, first.Name, first.MapID)

	//1.- Persist each day snapshot so playback can seek without re-deriving state.
	for _, game := range replay.Games {
		payload, err := json.Marshal(game)
		if err != nil {
			writer.Close()
			return "", err
		}
		if err := writer.AppendDay(game.Day, payload); err != nil {
			writer.Close()
			return "", err
		}
	}

	//2.- Flatten every turn's actions into the ordered action log.
	for idx, turn := range replay.Turns {
		for _, action := range turn.Actions {
			payload, err := json.Marshal(action)
			if err != nil {
				writer.Close()
				return "", err
			}
			if err := writer.AppendAction(idx, turn.Player, turn.Day, action.Kind, payload); err != nil {
				writer.Close()
				return "", err
			}
		}
	}

	if err := writer.Close(); err != nil {
		return "", err
	}

	e.mu.Lock()
	//3.- Track the export so monitoring endpoints can report recent activity.
	e.exports++
	e.lastExport = e.now().UTC()
	e.lastPath = writer.Directory()
	e.mu.Unlock()
	return writer.Directory(), nil
}

// Snapshot returns statistics describing the exporter state.
func (e *Exporter) Snapshot() ExportStats {
	if e == nil {
		return ExportStats{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	//1.- Copy the counters so monitoring endpoints avoid racing with exports.
	return ExportStats{
		Exports:        e.exports,
		LastExportPath: e.lastPath,
		LastExportTime: e.lastExport,
	}
}
