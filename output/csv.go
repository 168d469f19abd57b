package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/use-agent/mapscout/models"
)

// CSVSink writes one delimited-text file per query under Dir.
type CSVSink struct {
	Dir string
}

func (s *CSVSink) Write(query string, batch models.RecordBatch) error {
	if err := ensureDir(s.Dir); err != nil {
		return err
	}

	path := filepath.Join(s.Dir, BatchName(query)+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for _, rec := range batch {
		if err := w.Write(row(rec)); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}
