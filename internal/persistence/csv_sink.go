package persistence

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/IliaW/lead-hunter/internal/model"
)

// CsvSink is the local fallback store. The header is written once when the file is created
// and existing rows are never rewritten.
type CsvSink struct {
	path string
	mu   sync.Mutex
}

func NewCsvSink(path string) *CsvSink {
	return &CsvSink{path: path}
}

func (s *CsvSink) Name() string {
	return "csv"
}

func (s *CsvSink) Path() string {
	return s.path
}

func (s *CsvSink) Append(_ context.Context, app *model.ScoredApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv store: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv store: %w", err)
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err = w.Write(model.ApplicationColumns); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err = w.Write(app.Row()); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()

	return w.Error()
}

// ReadAll returns every stored row keyed by column name. A missing file is an empty store.
func (s *CsvSink) ReadAll() ([]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []map[string]string{}, nil
		}
		return nil, fmt.Errorf("open csv store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []map[string]string{}, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	rows := make([]map[string]string, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
