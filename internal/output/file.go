package output

import (
	"fmt"
	"os"
	"path/filepath"

	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
	"github.com/roelfdiedericks/pplxmodels/internal/models"
	"github.com/roelfdiedericks/pplxmodels/internal/paths"
)

// WriteFile saves list as JSON at path, replacing any existing file only
// once the new content is fully on disk.
func WriteFile(path string, list []models.ModelInfo) error {
	path, err := paths.ExpandTilde(path)
	if err != nil {
		return err
	}
	data, err := MarshalJSON(list)
	if err != nil {
		return err
	}
	if err := AtomicWrite(path, data, 0644); err != nil {
		return err
	}
	L_debug("output: saved", "path", path, "models", len(list))
	return nil
}

// AtomicWrite writes data to path via a temp file in the same directory and
// a rename.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := paths.EnsureParentDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pplxmodels-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp to %s: %w", path, err)
	}
	success = true
	return nil
}
