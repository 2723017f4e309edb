package replay

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

var bundleNameCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// actionRecord is one exported action line in the bundle's JSONL stream.
type actionRecord struct {
	Turn       int    `json:"turn"`
	Player     uint32 `json:"player"`
	Day        uint32 `json:"day"`
	Kind       string `json:"kind"`
	PayloadB64 string `json:"payload_b64"`
}

// BundleWriter streams a decoded replay to disk as a compact bundle: a
// snappy-compressed action log and a zstd stream of day snapshots.
type BundleWriter struct {
	mu           sync.Mutex
	dir          string
	now          func() time.Time
	actionFile   *os.File
	actionStream *snappy.Writer
	dayFile      *os.File
	dayStream    *zstd.Encoder
	gameID       uint32
	gameName     string
	mapID        uint32
	turns        int
	days         int
}

// BundleManifest describes the bundle layout so tooling can locate artefacts.
type BundleManifest struct {
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
	ActionsPath string `json:"actions_path"`
	DaysPath    string `json:"days_path"`
}

// NewBundleWriter prepares the bundle directory and opens compressed sinks.
func NewBundleWriter(root, gameName string, clock func() time.Time) (*BundleWriter, BundleManifest, error) {
	if root == "" {
		return nil, BundleManifest{}, fmt.Errorf("bundle root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := bundleNameCleaner.ReplaceAllString(gameName, "")
	if cleaned == "" {
		cleaned = "game"
	}
	created := clock().UTC()
	folder := fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z"))
	path := filepath.Join(root, folder)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, BundleManifest{}, err
	}

	actionsPath := filepath.Join(path, "actions.jsonl.sz")
	daysPath := filepath.Join(path, "days.bin.zst")
	manifestPath := filepath.Join(path, "manifest.json")

	actionFile, err := os.Create(actionsPath)
	if err != nil {
		return nil, BundleManifest{}, err
	}
	actionStream := snappy.NewBufferedWriter(actionFile)

	dayFile, err := os.Create(daysPath)
	if err != nil {
		actionFile.Close()
		return nil, BundleManifest{}, err
	}
	dayStream, err := zstd.NewWriter(dayFile)
	if err != nil {
		actionStream.Close()
		actionFile.Close()
		dayFile.Close()
		return nil, BundleManifest{}, err
	}

	manifest := BundleManifest{
		Version:     1,
		CreatedAt:   created.Format(time.RFC3339Nano),
		ActionsPath: "actions.jsonl.sz",
		DaysPath:    "days.bin.zst",
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		dayStream.Close()
		dayFile.Close()
		actionStream.Close()
		actionFile.Close()
		return nil, BundleManifest{}, err
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		dayStream.Close()
		dayFile.Close()
		actionStream.Close()
		actionFile.Close()
		return nil, BundleManifest{}, err
	}

	writer := &BundleWriter{
		dir:          path,
		now:          clock,
		actionFile:   actionFile,
		actionStream: actionStream,
		dayFile:      dayFile,
		dayStream:    dayStream,
	}

	return writer, manifest, nil
}

// Directory exposes the directory backing the bundle.
func (w *BundleWriter) Directory() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// SetGameMetadata configures the header persisted alongside the bundle.
func (w *BundleWriter) SetGameMetadata(gameID uint32, gameName string, mapID uint32) {
	if w == nil {
		return
	}
	w.mu.Lock()
	//1.- Cache the identity fields for header emission when the writer closes.
	w.gameID = gameID
	w.gameName = gameName
	w.mapID = mapID
	w.mu.Unlock()
}

// AppendAction writes one action line to the compressed action log.
func (w *BundleWriter) AppendAction(turn int, player, day uint32, kind ActionKind, payload []byte) error {
	if w == nil {
		return fmt.Errorf("bundle writer not initialised")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	//1.- Encode the action with its position so playback tooling can seek by turn.
	record := actionRecord{
		Turn:       turn,
		Player:     player,
		Day:        day,
		Kind:       kind.String(),
		PayloadB64: base64.StdEncoding.EncodeToString(payload),
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := w.actionStream.Write(line); err != nil {
		return err
	}
	if _, err := w.actionStream.Write([]byte("\n")); err != nil {
		return err
	}
	w.turns = turn + 1
	return w.actionStream.Flush()
}

// AppendDay writes one length-prefixed day snapshot to the zstd stream.
func (w *BundleWriter) AppendDay(day uint32, payload []byte) error {
	if w == nil {
		return fmt.Errorf("bundle writer not initialised")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	//1.- Length-prefix the snapshot so replayers can step day by day.
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], day)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))
	if _, err := w.dayStream.Write(header); err != nil {
		return err
	}
	if _, err := w.dayStream.Write(payload); err != nil {
		return err
	}
	w.days++
	return nil
}

// Close flushes all buffers, writes the bundle header, and releases handles.
func (w *BundleWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	//1.- Persist the metadata header before dismantling the streaming sinks.
	var firstErr error
	headerPath := filepath.Join(w.dir, "header.json")
	header := BundleHeader{
		SchemaVersion: BundleSchemaVersion,
		GameID:        w.gameID,
		GameName:      w.gameName,
		MapID:         w.mapID,
		Days:          w.days,
		Turns:         w.turns,
		FilePointer:   "manifest.json",
	}
	if err := WriteBundleHeader(headerPath, header); err != nil && firstErr == nil {
		firstErr = err
	}
	//2.- Attempt every flush/close and surface the first failure for callers to inspect.
	if err := w.actionStream.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.actionStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.actionFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.dayStream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.dayFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
