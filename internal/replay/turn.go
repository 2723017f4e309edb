package replay

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// TurnHeader is the framing prefix of one turn entry: the acting player, the
// game day, and the PHP-serialized action payload that follows.
type TurnHeader struct {
	Player  uint32
	Day     uint32
	Payload []byte
}

// ParseTurnHeader splits a "p:<player>;d:<day>;a:<payload>" turn entry. The
// payload bytes are returned verbatim, trailing separators included.
func ParseTurnHeader(path string, data []byte) (TurnHeader, error) {
	if !bytes.HasPrefix(data, []byte("p:")) {
		return TurnHeader{}, turnDataError(path, fmt.Errorf("missing player prefix"))
	}
	rest := data[2:]

	//1.- The player id runs until the day marker; the separator may be glued on.
	dayAt := bytes.IndexByte(rest, 'd')
	if dayAt < 0 || !bytes.HasPrefix(rest[dayAt:], []byte("d:")) {
		return TurnHeader{}, turnDataError(path, fmt.Errorf("missing day marker"))
	}
	playerField := bytes.TrimSuffix(rest[:dayAt], []byte(";"))
	player, err := strconv.ParseUint(string(playerField), 10, 32)
	if err != nil {
		return TurnHeader{}, turnDataError(path, fmt.Errorf("player id %q: %w", playerField, err))
	}
	rest = rest[dayAt+2:]

	//2.- The day runs until the action marker, after which everything is payload.
	actionAt := bytes.IndexByte(rest, 'a')
	if actionAt < 0 || !bytes.HasPrefix(rest[actionAt:], []byte("a:")) {
		return TurnHeader{}, turnDataError(path, fmt.Errorf("missing action marker"))
	}
	dayField := bytes.TrimSuffix(rest[:actionAt], []byte(";"))
	day, err := strconv.ParseUint(string(dayField), 10, 32)
	if err != nil {
		return TurnHeader{}, turnDataError(path, fmt.Errorf("day %q: %w", dayField, err))
	}

	return TurnHeader{
		Player:  uint32(player),
		Day:     uint32(day),
		Payload: rest[actionAt+2:],
	}, nil
}

// actionBlobs unpacks the PHP-serialized turn payload into its JSON action
// strings. The payload is an integer-keyed array whose elements are either
// bare integers or a nested array of encoded actions; the first nested array
// carries the turn's actions.
func actionBlobs(path string, payload []byte) ([][]byte, error) {
	arr, err := unserializeArray(path, payload)
	if err != nil {
		return nil, err
	}

	keys := make([]int64, 0, len(arr))
	for key := range arr {
		n, ok := asInt(key)
		if !ok {
			return nil, turnDataError(path, fmt.Errorf("non-integer turn element key %v", key))
		}
		keys = append(keys, n)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, key := range keys {
		value := lookupIntKey(arr, key)
		nested, ok := asPHPArray(value)
		if !ok {
			// Bare integers are bookkeeping entries with no actions attached.
			continue
		}
		//1.- Flatten the nested index-to-action array preserving action order.
		return orderedActionData(path, nested)
	}
	return nil, nil
}

func orderedActionData(path string, arr phpArray) ([][]byte, error) {
	keys := make([]int64, 0, len(arr))
	for key := range arr {
		n, ok := asInt(key)
		if !ok {
			return nil, turnDataError(path, fmt.Errorf("non-integer action key %v", key))
		}
		keys = append(keys, n)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	blobs := make([][]byte, 0, len(keys))
	for _, key := range keys {
		value := lookupIntKey(arr, key)
		text, ok := asString(value)
		if !ok {
			return nil, turnDataError(path, fmt.Errorf("action %d: expected string, got %T", key, value))
		}
		blobs = append(blobs, []byte(text))
	}
	return blobs, nil
}
