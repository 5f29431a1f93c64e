package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Sentinel errors.
var (
	// ErrNoState is returned when no state file exists yet.
	ErrNoState = errors.New("no saved state")
	// ErrUnknownCodec is returned by CodecByName.
	ErrUnknownCodec = errors.New("unknown codec")
)

const statePerm = 0o600

// StatePath returns the file path used for basename under dir.
func StatePath(dir, basename string, codec Codec) string {
	return filepath.Join(dir, basename+codec.Extension())
}

// SaveState writes state atomically: it encodes into a temporary file in dir
// and renames it over the target, so readers see the old or the new state.
func SaveState(dir, basename string, codec Codec, state any) error {
	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+basename+"-*")
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}

	tmpName := tmp.Name()

	err = codec.Encode(tmp, state)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("encode state: %w", err)
	}

	err = tmp.Chmod(statePerm)
	if err == nil {
		err = tmp.Close()
	} else {
		_ = tmp.Close()
	}

	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("close state file: %w", err)
	}

	err = os.Rename(tmpName, StatePath(dir, basename, codec))
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// LoadState loads state from dir. The state parameter must be a pointer.
// A missing file yields ErrNoState.
func LoadState(dir, basename string, codec Codec, state any) error {
	file, err := os.Open(StatePath(dir, basename, codec))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNoState
	}

	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	err = codec.Decode(file, state)
	if err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}

// RemoveState deletes the state file. A missing file is not an error.
func RemoveState(dir, basename string, codec Codec) error {
	err := os.Remove(StatePath(dir, basename, codec))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state file: %w", err)
	}

	return nil
}

// Persister handles I/O for a specific state type using a Codec.
type Persister[T any] struct {
	dir      string
	basename string
	codec    Codec
}

// NewPersister creates a persister rooted at dir.
func NewPersister[T any](dir, basename string, codec Codec) *Persister[T] {
	return &Persister[T]{
		dir:      dir,
		basename: basename,
		codec:    codec,
	}
}

// Path returns the state file path.
func (p *Persister[T]) Path() string {
	return StatePath(p.dir, p.basename, p.codec)
}

// Save writes state.
func (p *Persister[T]) Save(state *T) error {
	return SaveState(p.dir, p.basename, p.codec, state)
}

// Load reads state. It returns ErrNoState when nothing was saved.
func (p *Persister[T]) Load() (*T, error) {
	var state T

	err := LoadState(p.dir, p.basename, p.codec, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// Remove deletes the saved state.
func (p *Persister[T]) Remove() error {
	return RemoveState(p.dir, p.basename, p.codec)
}
