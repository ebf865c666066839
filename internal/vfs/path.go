package vfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// fullPath resolves name against the root directory and normalizes it
// lexically. Symlinks are deliberately not resolved; normalization only
// folds "." and ".." components so two spellings of the same name share
// one lock table entry.
func fullPath(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty file name")
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(root, name)
	}
	return filepath.Clean(name), nil
}

// shmPath returns the shared-memory sidecar name for a database path.
func shmPath(path string) string {
	return path + "-shm"
}

// tempFilename builds temporary names in the host temp dir, unique per
// process and per counter value.
func tempFilename(n int64) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("etilqs_%x_%x.db", os.Getpid(), n))
}
