package replay

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// BundleAction is a single rehydrated action from an exported bundle.
type BundleAction struct {
	Turn    int
	Player  uint32
	Day     uint32
	Kind    string
	Payload json.RawMessage
}

// BundleDay is a single rehydrated day snapshot from an exported bundle.
type BundleDay struct {
	Day     uint32
	Payload json.RawMessage
}

// BundleLoader rehydrates compressed bundle artefacts for catalogue tooling.
type BundleLoader struct {
	header  BundleHeader
	actions []BundleAction
	days    []BundleDay
}

// LoadBundle constructs a loader from the provided bundle directory.
func LoadBundle(dir string) (*BundleLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("bundle directory must be provided")
	}

	header, err := ReadBundleHeader(filepath.Join(dir, "header.json"))
	if err != nil {
		return nil, err
	}

	manifestData, err := os.ReadFile(filepath.Join(dir, header.FilePointer))
	if err != nil {
		return nil, err
	}
	var manifest BundleManifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, err
	}

	actions, err := loadActionLog(filepath.Join(dir, manifest.ActionsPath))
	if err != nil {
		return nil, err
	}
	days, err := loadDayStream(filepath.Join(dir, manifest.DaysPath))
	if err != nil {
		return nil, err
	}

	return &BundleLoader{header: header, actions: actions, days: days}, nil
}

// Header exposes the bundle metadata.
func (l *BundleLoader) Header() BundleHeader {
	if l == nil {
		return BundleHeader{}
	}
	return l.header
}

// Actions returns a defensive copy of the rehydrated action log.
func (l *BundleLoader) Actions() []BundleAction {
	if l == nil {
		return nil
	}
	out := make([]BundleAction, len(l.actions))
	copy(out, l.actions)
	return out
}

// Days returns a defensive copy of the rehydrated day snapshots.
func (l *BundleLoader) Days() []BundleDay {
	if l == nil {
		return nil
	}
	out := make([]BundleDay, len(l.days))
	copy(out, l.days)
	return out
}

// Walk iterates over the loaded actions in export order.
func (l *BundleLoader) Walk(apply func(BundleAction) error) error {
	if l == nil {
		return fmt.Errorf("bundle loader not initialised")
	}
	if apply == nil {
		return fmt.Errorf("walk callback must be provided")
	}
	for _, action := range l.actions {
		//1.- Invoke the callback per action so callers can drive playback directly.
		if err := apply(action); err != nil {
			return err
		}
	}
	return nil
}

func loadActionLog(path string) ([]BundleAction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var actions []BundleAction
	scanner := bufio.NewScanner(snappy.NewReader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record actionRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("parse action record: %w", err)
		}
		//1.- Decode the embedded payload so callers receive plain JSON again.
		payload, err := base64.StdEncoding.DecodeString(record.PayloadB64)
		if err != nil {
			return nil, fmt.Errorf("decode action payload: %w", err)
		}
		actions = append(actions, BundleAction{
			Turn:    record.Turn,
			Player:  record.Player,
			Day:     record.Day,
			Kind:    record.Kind,
			Payload: payload,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return actions, nil
}

func loadDayStream(path string) ([]BundleDay, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return nil, err
	}
	defer decoder.Close()

	var days []BundleDay
	for {
		//1.- Each frame is a day id and payload length followed by the snapshot bytes.
		header := make([]byte, 8)
		if _, err := io.ReadFull(decoder, header); err != nil {
			if err == io.EOF {
				return days, nil
			}
			return nil, fmt.Errorf("read day frame header: %w", err)
		}
		day := binary.LittleEndian.Uint32(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])
		payload := make([]byte, size)
		if _, err := io.ReadFull(decoder, payload); err != nil {
			return nil, fmt.Errorf("read day frame payload: %w", err)
		}
		days = append(days, BundleDay{Day: day, Payload: payload})
	}
}
