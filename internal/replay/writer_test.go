package replay

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestBundleWriterRoundTrip(t *testing.T) {
	root := t.TempDir()
	writer, manifest, err := NewBundleWriter(root, "Test Match!", fixedClock())
	if err != nil {
		t.Fatalf("new bundle writer: %v", err)
	}
	if manifest.ActionsPath != "actions.jsonl.sz" || manifest.DaysPath != "days.bin.zst" {
		t.Fatalf("unexpected manifest layout: %+v", manifest)
	}
	if !strings.Contains(writer.Directory(), "TestMatch-") {
		t.Fatalf("expected cleaned game name in directory, got %s", writer.Directory())
	}

	writer.SetGameMetadata(42, "Test Match", 12345)
	if err := writer.AppendDay(1, []byte(`{"day":1}`)); err != nil {
		t.Fatalf("append day: %v", err)
	}
	if err := writer.AppendDay(2, []byte(`{"day":2}`)); err != nil {
		t.Fatalf("append day: %v", err)
	}
	if err := writer.AppendAction(0, 1001, 1, ActionMove, []byte(`{"dist":1}`)); err != nil {
		t.Fatalf("append action: %v", err)
	}
	if err := writer.AppendAction(0, 1001, 1, ActionEnd, []byte(`{"day":2}`)); err != nil {
		t.Fatalf("append action: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	loader, err := LoadBundle(writer.Directory())
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	header := loader.Header()
	if header.GameID != 42 || header.MapID != 12345 || header.Days != 2 {
		t.Fatalf("unexpected header: %+v", header)
	}

	days := loader.Days()
	if len(days) != 2 || days[0].Day != 1 || days[1].Day != 2 {
		t.Fatalf("unexpected day frames: %+v", days)
	}
	var snapshot struct {
		Day uint32 `json:"day"`
	}
	if err := json.Unmarshal(days[1].Payload, &snapshot); err != nil || snapshot.Day != 2 {
		t.Fatalf("unexpected snapshot payload: %s (%v)", days[1].Payload, err)
	}

	actions := loader.Actions()
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}
	if actions[0].Kind != "Move" || actions[1].Kind != "End" {
		t.Fatalf("unexpected action kinds: %s, %s", actions[0].Kind, actions[1].Kind)
	}
	if actions[0].Player != 1001 || actions[0].Day != 1 {
		t.Fatalf("unexpected action position: %+v", actions[0])
	}

	//1.- Walk must visit the actions in export order.
	var seen []string
	if err := loader.Walk(func(action BundleAction) error {
		seen = append(seen, action.Kind)
		return nil
	}); err != nil {
		t.Fatalf("walk bundle: %v", err)
	}
	if len(seen) != 2 || seen[0] != "Move" {
		t.Fatalf("unexpected walk order: %v", seen)
	}
}

func TestNewBundleWriterRequiresRoot(t *testing.T) {
	if _, _, err := NewBundleWriter("", "match", nil); err == nil {
		t.Fatal("expected error for empty root")
	}
}

func TestLoadBundleRequiresHeader(t *testing.T) {
	if _, err := LoadBundle(t.TempDir()); err == nil {
		t.Fatal("expected error for missing header")
	}
	if _, err := LoadBundle(""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
