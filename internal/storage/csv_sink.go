package storage

import (
	"deck-crawler/pkg/models"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// RowFilter decides whether a row is written.
type RowFilter interface {
	Filter(row models.Row) bool
}

// CSVSink implements engine.Sink for the flat CSV artifact.
// The header is written up front; each Save appends the rows the filter keeps.
type CSVSink struct {
	writer  *csv.Writer
	filter  RowFilter
	written int
	dropped int
}

func NewCSVSink(w io.Writer, filter RowFilter) (*CSVSink, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(models.Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &CSVSink{writer: writer, filter: filter}, nil
}

func (s *CSVSink) Save(batch []models.Row) error {
	for _, row := range batch {
		if !s.filter.Filter(row) {
			s.dropped++
			continue
		}
		if err := s.writer.Write(row.Record()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		s.written++
	}
	return nil
}

// Flush pushes buffered records to the underlying writer.
func (s *CSVSink) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

// Written is the number of data rows written so far.
func (s *CSVSink) Written() int { return s.written }

// Dropped is the number of rows the filter rejected.
func (s *CSVSink) Dropped() int { return s.dropped }

// FileSink writes a CSVSink into a temporary file next to the destination.
// Commit renames it into place; Abort removes it, so a failed run leaves no artifact.
type FileSink struct {
	*CSVSink
	file *os.File
	path string
	done bool
}

func CreateFileSink(path string, filter RowFilter) (*FileSink, error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w", path, err)
	}
	if err := file.Chmod(0o644); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, err
	}

	sink, err := NewCSVSink(file, filter)
	if err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, err
	}
	return &FileSink{CSVSink: sink, file: file, path: path}, nil
}

// Commit flushes, closes and moves the artifact to its destination.
func (f *FileSink) Commit() error {
	if f.done {
		return fmt.Errorf("sink for %s already finished", f.path)
	}
	f.done = true

	if err := f.Flush(); err != nil {
		f.discard()
		return fmt.Errorf("flush %s: %w", f.path, err)
	}
	if err := f.file.Close(); err != nil {
		os.Remove(f.file.Name())
		return fmt.Errorf("close %s: %w", f.path, err)
	}
	if err := os.Rename(f.file.Name(), f.path); err != nil {
		os.Remove(f.file.Name())
		return fmt.Errorf("move artifact to %s: %w", f.path, err)
	}
	return nil
}

// Abort discards everything written. It is a no-op after Commit.
func (f *FileSink) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.discard()
}

func (f *FileSink) discard() {
	f.file.Close()
	os.Remove(f.file.Name())
}
