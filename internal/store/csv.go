// Package store holds the two local persistence pieces: the canonical CSV of
// leads and the sqlite cache used by enrichment.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/audreymhoughton/lead-lab/internal/domain"
)

// CSV is the canonical local lead store. Rows are raw header->value maps on
// the way out; validation is the ingestion pipeline's job, not the file's.
type CSV struct {
	path string
	lk   *flock.Flock
}

func NewCSV(path string) *CSV {
	return &CSV{path: path, lk: flock.New(path + ".lock")}
}

func (s *CSV) Path() string { return s.path }

// Acquire takes the advisory file lock for the duration of a batch run.
// Single-operator tool, so contention means a second invocation is running.
func (s *CSV) Acquire(ctx context.Context) (release func(), err error) {
	locked, err := s.lk.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", s.lk.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: held by another run", s.lk.Path())
	}
	return func() { _ = s.lk.Unlock() }, nil
}

// Init creates the CSV with the canonical header if it does not exist.
func (s *CSV) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return s.writeAll(nil)
}

// Load reads every data row as a header->value map. A missing or headerless
// file is repaired to an empty store rather than treated as an error. Columns
// the file does not carry come back blank; extra columns are dropped.
func (s *CSV) Load() ([]map[string]string, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		// file exists but is empty: rewrite the header
		return nil, s.writeAll(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read header %s: %w", s.path, err)
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.path, err)
		}
		row := make(map[string]string, len(domain.Columns))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Save persists the full lead set atomically: temp file in the same directory,
// then rename. A failed save never leaves a half-written store behind.
func (s *CSV) Save(leads []domain.Lead) error {
	return s.writeAll(leads)
}

func (s *CSV) writeAll(leads []domain.Lead) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".leads-*.csv")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(domain.Columns); err != nil {
		return err
	}
	for _, l := range leads {
		if err := w.Write(l.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
