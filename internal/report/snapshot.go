package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"
	"github.com/vmihailenco/msgpack/v5"

	"callprof/internal/stats"
	"callprof/internal/trace"
)

// Current schema version - increment when SnapshotPayload format changes
const snapshotSchemaVersion uint16 = 1

// SnapshotPayload is the on-disk form of a results snapshot.
type SnapshotPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	// Session identity and capture time
	Session string
	SavedAt time.Time

	Entries []SnapshotEntry
}

// SnapshotEntry описывает один агрегат в сериализованном снапшоте.
type SnapshotEntry struct {
	Kind      uint8
	ID        uint64
	Namespace string
	Name      string
	Calls     uint64
	TotalNS   int64
	MinNS     int64
	MaxNS     int64
}

// NewSession mints a fresh session identifier for snapshot stamping.
func NewSession() string { return xid.New().String() }

// WriteSnapshot serializes snap to path. The write goes through a temp file
// and an atomic rename, so readers never observe a torn snapshot.
func WriteSnapshot(path, session string, snap stats.Snapshot) error {
	payload := SnapshotPayload{
		Schema:  snapshotSchemaVersion,
		Session: session,
		SavedAt: time.Now().UTC(),
		Entries: make([]SnapshotEntry, 0, len(snap)),
	}
	for id, e := range snap {
		payload.Entries = append(payload.Entries, SnapshotEntry{
			Kind:      uint8(id.Kind),
			ID:        id.N,
			Namespace: e.Namespace,
			Name:      e.Name,
			Calls:     e.Calls,
			TotalNS:   int64(e.Total),
			MinNS:     int64(e.Min),
			MaxNS:     int64(e.Max),
		})
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// ReadSnapshot loads a snapshot file written by WriteSnapshot. Files with a
// foreign schema version are rejected rather than misread.
func ReadSnapshot(path string) (stats.Snapshot, SnapshotPayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, SnapshotPayload{}, err
	}
	defer f.Close()

	var payload SnapshotPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, SnapshotPayload{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if payload.Schema != snapshotSchemaVersion {
		return nil, SnapshotPayload{}, fmt.Errorf("snapshot %s: schema %d, expected %d", path, payload.Schema, snapshotSchemaVersion)
	}

	snap := make(stats.Snapshot, len(payload.Entries))
	for _, e := range payload.Entries {
		id := trace.FuncID{Kind: trace.FuncKind(e.Kind), N: e.ID}
		snap[id] = stats.Entry{
			Namespace: e.Namespace,
			Name:      e.Name,
			FuncStats: stats.FuncStats{
				Calls: e.Calls,
				Total: time.Duration(e.TotalNS),
				Min:   time.Duration(e.MinNS),
				Max:   time.Duration(e.MaxNS),
			},
		}
	}
	return snap, payload, nil
}
