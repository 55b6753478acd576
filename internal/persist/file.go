package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileGateway keeps one JSON file per collection under a data directory,
// matching the layout the system has always persisted to. Writes go through
// a temp file and rename so a crash mid-write never truncates a collection.
type FileGateway struct {
	dir string
}

func NewFileGateway(dir string) (*FileGateway, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileGateway{dir: dir}, nil
}

func (g *FileGateway) Save(_ context.Context, collection string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", collection, err)
	}

	path := g.path(collection)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", collection, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit %s snapshot: %w", collection, err)
	}
	return nil
}

func (g *FileGateway) LoadAll(_ context.Context) (*Snapshot, error) {
	var snap Snapshot

	if err := g.load(CollectionUsers, &snap.Users); err != nil {
		return nil, err
	}
	if err := g.load(CollectionLaptops, &snap.Laptops); err != nil {
		return nil, err
	}
	if err := g.load(CollectionBookings, &snap.Bookings); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (g *FileGateway) Close() {}

// load reads one collection file. A missing file is an empty collection,
// not an error: first boot has nothing on disk yet.
func (g *FileGateway) load(collection string, out any) error {
	data, err := os.ReadFile(g.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s snapshot: %w", collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s snapshot: %w", collection, err)
	}
	return nil
}

func (g *FileGateway) path(collection string) string {
	return filepath.Join(g.dir, collection+".json")
}
