package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/sigurn/crc8"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrCorrupted   = errors.New("file is corrupted")
	ErrInvalidName = errors.New("invalid file name")
)

// Store persists named byte payloads. Implementations must be safe for use
// from several goroutines.
type Store interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
	Close() error
}

// Watcher is implemented by stores that can report outside modifications.
// onChange runs on a goroutine owned by the store.
type Watcher interface {
	Watch(onChange func(name string)) error
}

const (
	tmpPrefix = ".cala-tmp-"
	version   = 1
)

var (
	magic      = []byte("CALA")
	checksumT  = crc8.MakeTable(crc8.CRC8)
	headerSize = len(magic) + 1
)

// encode frames a payload: magic, version, payload, crc8 of the payload.
func encode(data []byte) []byte {
	out := make([]byte, 0, headerSize+len(data)+1)
	out = append(out, magic...)
	out = append(out, version)
	out = append(out, data...)
	return append(out, crc8.Checksum(data, checksumT))
}

func decode(framed []byte) ([]byte, error) {
	if len(framed) < headerSize+1 {
		return nil, fmt.Errorf("%w: short payload", ErrCorrupted)
	}
	if !bytes.Equal(framed[:len(magic)], magic) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupted)
	}
	if v := framed[len(magic)]; v != version {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCorrupted, v)
	}
	data := framed[headerSize : len(framed)-1]
	if sum := framed[len(framed)-1]; sum != crc8.Checksum(data, checksumT) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupted)
	}
	return bytes.Clone(data), nil
}

// cleanName validates a slash separated relative name and returns it in
// canonical form.
func cleanName(name string) (string, error) {
	if name == "" || strings.Contains(name, "\\") || path.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if strings.HasPrefix(path.Base(clean), tmpPrefix) {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return clean, nil
}
