package fsutil

import (
	"context"
	"fmt"
)

// BackupSuffix is the suffix used for sidecar backup files.
const BackupSuffix = ".gitmilk.bak"

// BackupPath returns the sidecar backup path for the given file.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// CreateBackup copies the file at path to its sidecar backup.
// Returns true if a backup was written, false if the original does not exist.
//
// An existing backup is overwritten, so it always reflects the content
// immediately before the most recent in-place rewrite.
func CreateBackup(ctx context.Context, path string) (bool, error) {
	content, info, err := ReadFile(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("read original for backup: %w", err)
	}

	if err := WriteAtomic(ctx, BackupPath(path), content, info.Mode.Perm()); err != nil {
		return false, fmt.Errorf("write backup: %w", err)
	}

	return true, nil
}

// RestoreBackup restores a file from its sidecar backup.
// Returns true if the file was restored, false if no backup exists.
func RestoreBackup(ctx context.Context, path string) (bool, error) {
	content, info, err := ReadFile(ctx, BackupPath(path))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("read backup: %w", err)
	}

	if err := WriteAtomic(ctx, path, content, info.Mode.Perm()); err != nil {
		return false, fmt.Errorf("restore from backup: %w", err)
	}

	return true, nil
}
