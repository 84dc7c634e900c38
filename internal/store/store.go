// Package store persists table snapshots between actions so a table can be
// rebuilt after a restart.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/lox/holdemtable/internal/game"
)

var (
	ErrNotFound  = errors.New("table snapshot not found")
	ErrInvalidID = errors.New("invalid table id")
)

// Repository loads and saves table snapshots by table id
type Repository interface {
	Load(ctx context.Context, tableID string) (game.Snapshot, error)
	Save(ctx context.Context, tableID string, snap game.Snapshot) error
	Delete(ctx context.Context, tableID string) error
	List(ctx context.Context) ([]string, error)
}

func validateID(tableID string) error {
	if tableID == "" || strings.ContainsAny(tableID, `/\`) || strings.HasPrefix(tableID, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, tableID)
	}
	return nil
}

// Memory keeps snapshots in process. Snapshots are stored encoded so callers
// can never alias the stored copy.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory returns an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, tableID string) (game.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return game.Snapshot{}, err
	}
	m.mu.RLock()
	data, ok := m.items[tableID]
	m.mu.RUnlock()
	if !ok {
		return game.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, tableID)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", tableID, err)
	}
	return snap, nil
}

func (m *Memory) Save(ctx context.Context, tableID string, snap game.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateID(tableID); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", tableID, err)
	}
	m.mu.Lock()
	m.items[tableID] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, tableID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[tableID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, tableID)
	}
	delete(m.items, tableID)
	return nil
}

func (m *Memory) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids, nil
}
