package transform

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/ijcnam/internal/model"
)

// WriteCSV writes the dataset to path: a header line, then one line per
// record. The file is written under a temporary name and renamed into place.
func WriteCSV(path string, d *model.Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(d.Header()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	for i := range d.Records {
		if err := w.Write(d.Row(i)); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
