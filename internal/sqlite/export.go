package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Export writes a consistent snapshot of the whole database into basePath
// and returns the snapshot's path. VACUUM INTO produces a compacted copy
// while readers keep working, which doubles as the athlete's data takeout.
func (db *Database) Export(ctx context.Context, basePath string) (string, error) {
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	exportPath := filepath.Join(basePath,
		fmt.Sprintf("formcoach-%s.sqlite3", time.Now().UTC().Format("20060102-150405")))

	// VACUUM INTO fails if the target exists, a unique timestamped name
	// avoids clobbering earlier snapshots.
	if _, err := os.Stat(exportPath); err == nil {
		return "", fmt.Errorf("export target already exists: %s", exportPath)
	}

	// The read pool runs with query_only, so the snapshot has to go through
	// the writer.
	if _, err := db.ReadWrite.ExecContext(ctx, `VACUUM INTO ?`, exportPath); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", exportPath, err)
	}

	return exportPath, nil
}
