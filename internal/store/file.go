package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemtable/internal/game"
)

const snapshotExt = ".json"

// File stores one JSON document per table in a directory. Writes go through
// a temp file and rename, so a reader sees either the old snapshot or the new
// one and never a partial write.
type File struct {
	dir    string
	logger *log.Logger
}

// NewFile creates the directory if needed and returns a repository over it
func NewFile(dir string, logger *log.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &File{dir: dir, logger: logger.WithPrefix("store")}, nil
}

func (f *File) path(tableID string) string {
	return filepath.Join(f.dir, tableID+snapshotExt)
}

func (f *File) Load(ctx context.Context, tableID string) (game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return game.Snapshot{}, err
	}
	if err := validateID(tableID); err != nil {
		return game.Snapshot{}, err
	}
	data, err := os.ReadFile(f.path(tableID))
	if errors.Is(err, fs.ErrNotExist) {
		return game.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, tableID)
	}
	if err != nil {
		return game.Snapshot{}, fmt.Errorf("read snapshot %s: %w", tableID, err)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", tableID, err)
	}
	return snap, nil
}

func (f *File) Save(ctx context.Context, tableID string, snap game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(tableID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", tableID, err)
	}
	if err := writeFileAtomic(f.path(tableID), data, 0o600); err != nil {
		return fmt.Errorf("save snapshot %s: %w", tableID, err)
	}
	f.logger.Debug("Saved snapshot", "table", tableID, "hand", snap.HandNumber, "stage", snap.Stage)
	return nil
}

func (f *File) Delete(ctx context.Context, tableID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(tableID); err != nil {
		return err
	}
	err := os.Remove(f.path(tableID))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, tableID)
	}
	return err
}

func (f *File) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapshotExt) || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, snapshotExt))
	}
	slices.Sort(ids)
	return ids, nil
}

// writeFileAtomic writes to a temp file in the same directory, syncs it and
// renames it over filename. The rename is atomic on POSIX filesystems.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
