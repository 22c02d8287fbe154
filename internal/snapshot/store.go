package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/core"
)

// Marshal renders the snapshot as indented JSON.
func Marshal(snap core.UsageSnapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return append(data, '\n'), nil
}

// Write stores the snapshot at path. The file is written next to its final
// location and renamed into place, so readers see either the old or the
// new snapshot.
func Write(path string, snap core.UsageSnapshot) error {
	data, err := Marshal(snap)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// WriteFiles writes the configured state file and, when set, its mirror.
func WriteFiles(cfg config.Config, snap core.UsageSnapshot) error {
	if err := Write(cfg.General.StateFile, snap); err != nil {
		return err
	}
	if cfg.General.WindowsStatePath != "" {
		if err := Write(cfg.General.WindowsStatePath, snap); err != nil {
			return fmt.Errorf("snapshot: mirror: %w", err)
		}
	}
	return nil
}

func Read(path string) (core.UsageSnapshot, error) {
	var snap core.UsageSnapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("snapshot: read: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	if snap.Providers == nil {
		snap.Providers = []core.ProviderSnapshot{}
	}
	return snap, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: create tmp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: write tmp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: sync tmp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close tmp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("snapshot: chmod tmp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("snapshot: rename tmp file: %w", err)
	}
	return nil
}
