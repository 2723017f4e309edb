package replay

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
)

const (
	localFileHeaderSig = 0x04034b50
	dataDescriptorSig  = 0x08074b50

	methodDeflated = 8

	flagDataDescriptor = 0x0008
)

// Turn is one player turn with its decoded actions.
type Turn struct {
	Player  uint32
	Day     uint32
	Actions []Action
}

// Replay is the decoded contents of an AWBW replay archive: one game snapshot
// per day plus the ordered turns between them.
type Replay struct {
	Games []Game
	Turns []Turn
}

// ReadFile opens and decodes a replay archive from disk.
func ReadFile(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError(err)
	}
	return Read(data)
}

// Read decodes a replay archive held in memory. The archive carries deflated
// entries whose inflated bodies are concatenated gzip members; the first
// member of each entry tells game snapshots apart from turn logs.
func Read(data []byte) (*Replay, error) {
	replay := &Replay{}
	br := bytes.NewReader(data)

	for {
		entry, done, err := nextEntry(br)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if entry.body == nil {
			// Directory or skipped entry, nothing to decode.
			continue
		}
		if err := replay.decodeEntry(entry.name, entry.body); err != nil {
			return nil, err
		}
	}

	if len(replay.Games) == 0 {
		return nil, zipError(fmt.Errorf("archive contains no game snapshots"))
	}
	return replay, nil
}

type zipEntry struct {
	name string
	body []byte
}

// nextEntry walks one local file header and inflates its payload in place.
func nextEntry(br *bytes.Reader) (zipEntry, bool, error) {
	var sig uint32
	if err := binary.Read(br, binary.LittleEndian, &sig); err != nil {
		if err == io.EOF {
			return zipEntry{}, true, nil
		}
		return zipEntry{}, false, zipError(err)
	}
	if sig != localFileHeaderSig {
		//1.- The central directory marks the end of the local entries.
		return zipEntry{}, true, nil
	}

	var fixed struct {
		Version      uint16
		Flags        uint16
		Method       uint16
		ModTime      uint16
		ModDate      uint16
		CRC32        uint32
		CompressedSz uint32
		RawSz        uint32
		NameLen      uint16
		ExtraLen     uint16
	}
	if err := binary.Read(br, binary.LittleEndian, &fixed); err != nil {
		return zipEntry{}, false, zipError(fmt.Errorf("truncated local header: %w", err))
	}

	name := make([]byte, int(fixed.NameLen)+int(fixed.ExtraLen))
	if _, err := io.ReadFull(br, name); err != nil {
		return zipEntry{}, false, zipError(fmt.Errorf("truncated entry name: %w", err))
	}
	entry := zipEntry{name: string(name[:fixed.NameLen])}
	streamed := fixed.Flags&flagDataDescriptor != 0

	switch fixed.Method {
	case methodDeflated:
		//2.- Deflate streams self-terminate, so the size fields are not needed.
		inflater := flate.NewReader(br)
		var body bytes.Buffer
		if _, err := io.Copy(&body, inflater); err != nil {
			inflater.Close()
			return zipEntry{}, false, zipError(fmt.Errorf("inflate %s: %w", entry.name, err))
		}
		inflater.Close()
		if streamed {
			if err := skipDataDescriptor(br); err != nil {
				return zipEntry{}, false, err
			}
		} else if sum := crc32.ChecksumIEEE(body.Bytes()); sum != fixed.CRC32 {
			//3.- The header checksum covers the inflated body.
			return zipEntry{}, false, zipError(fmt.Errorf("entry %s checksum mismatch: got %08x want %08x", entry.name, sum, fixed.CRC32))
		}
		if !strings.HasSuffix(entry.name, "/") && body.Len() > 0 {
			entry.body = body.Bytes()
		}
		return entry, false, nil
	default:
		if streamed {
			return zipEntry{}, false, zipError(fmt.Errorf("entry %s uses method %d with unknown length", entry.name, fixed.Method))
		}
		//4.- Entries not using deflate are skipped; replays only deflate their payloads.
		if _, err := br.Seek(int64(fixed.CompressedSz), io.SeekCurrent); err != nil {
			return zipEntry{}, false, zipError(err)
		}
		return entry, false, nil
	}
}

// skipDataDescriptor consumes the optional trailing descriptor after a
// streamed entry. The leading signature word is itself optional.
func skipDataDescriptor(br *bytes.Reader) error {
	var first uint32
	if err := binary.Read(br, binary.LittleEndian, &first); err != nil {
		return zipError(fmt.Errorf("truncated data descriptor: %w", err))
	}
	remaining := 8
	if first == dataDescriptorSig {
		remaining = 12
	}
	if _, err := br.Seek(int64(remaining), io.SeekCurrent); err != nil {
		return zipError(err)
	}
	return nil
}

// decodeEntry peels the concatenated gzip members of one archive entry and
// routes them to the game or turn decoder based on the first member.
func (r *Replay) decodeEntry(name string, body []byte) error {
	members, err := gzipMembers(name, body)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	//1.- Turn logs announce themselves with the player prefix on the first member.
	if bytes.HasPrefix(members[0], []byte("p:")) {
		for _, member := range members {
			turn, err := decodeTurn(name, member)
			if err != nil {
				return err
			}
			r.Turns = append(r.Turns, turn)
		}
		return nil
	}

	//2.- Game entries carry one serialized snapshot per day.
	for _, member := range members {
		game, err := DecodeGame(name, member)
		if err != nil {
			return err
		}
		r.Games = append(r.Games, game)
	}
	return nil
}

func gzipMembers(name string, body []byte) ([][]byte, error) {
	br := bytes.NewReader(body)
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, ioError(fmt.Errorf("entry %s: %w", name, err))
	}
	defer zr.Close()

	var members [][]byte
	for {
		zr.Multistream(false)
		var member bytes.Buffer
		if _, err := io.Copy(&member, zr); err != nil {
			return nil, ioError(fmt.Errorf("entry %s: %w", name, err))
		}
		members = append(members, member.Bytes())

		//1.- Reset advances to the next concatenated member until the entry ends.
		if err := zr.Reset(br); err != nil {
			if err == io.EOF {
				return members, nil
			}
			return nil, ioError(fmt.Errorf("entry %s: %w", name, err))
		}
	}
}

func decodeTurn(name string, member []byte) (Turn, error) {
	header, err := ParseTurnHeader(name, member)
	if err != nil {
		return Turn{}, err
	}
	blobs, err := actionBlobs(name, header.Payload)
	if err != nil {
		return Turn{}, err
	}

	turn := Turn{Player: header.Player, Day: header.Day}
	for _, blob := range blobs {
		action, err := DecodeAction(name, blob)
		if err != nil {
			return Turn{}, err
		}
		turn.Actions = append(turn.Actions, action)
	}
	return turn, nil
}
