package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/audreymhoughton/lead-lab/internal/domain"
	"github.com/audreymhoughton/lead-lab/internal/logging"
)

// Mock is the no-network backend: the "remote" sheet is a CSV at ExportPath.
// It reads its own previous export back, so repeated exports behave like a
// real remote store (second identical run is all Skips).
type Mock struct {
	ExportPath string
}

func NewMock(exportPath string) *Mock {
	return &Mock{ExportPath: exportPath}
}

func (m *Mock) FetchAll(ctx context.Context) (map[string]domain.Lead, error) {
	out := map[string]domain.Lead{}

	f, err := os.Open(m.ExportPath)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil // first export
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read export: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		lead := domain.FromRowMap(row)
		if lead.Key != "" {
			out[lead.Key] = lead
		}
	}
	return out, nil
}

// Upsert merges the outbound rows into the export file keyed by Key and
// rewrites it whole. One logical write, mirroring the live client's batch.
func (m *Mock) Upsert(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		logging.Info().Msg("mock export: no rows to write")
		return nil
	}

	existing, err := m.FetchAll(ctx)
	if err != nil {
		return err
	}

	var order []string
	seen := map[string]bool{}
	appendKey := func(k string) {
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}

	// stable output: keep prior export order, new keys append
	prior, err := m.keyOrder()
	if err != nil {
		return err
	}
	for _, k := range prior {
		appendKey(k)
	}
	for _, l := range leads {
		existing[l.Key] = l
		appendKey(l.Key)
	}

	if err := os.MkdirAll(filepath.Dir(m.ExportPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(m.ExportPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(domain.Columns); err != nil {
		return err
	}
	for _, k := range order {
		if l, ok := existing[k]; ok {
			if err := w.Write(l.Record()); err != nil {
				return err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	logging.Info().Int("rows", len(leads)).Str("path", m.ExportPath).Msg("mock export wrote rows")
	return nil
}

// keyOrder lists the keys in the current export file, in file order.
func (m *Mock) keyOrder() ([]string, error) {
	f, err := os.Open(m.ExportPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	keyIdx := -1
	for i, h := range header {
		if h == "Key" {
			keyIdx = i
		}
	}
	if keyIdx < 0 {
		return nil, nil
	}

	var keys []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if keyIdx < len(rec) && rec[keyIdx] != "" {
			keys = append(keys, rec[keyIdx])
		}
	}
	return keys, nil
}

func (m *Mock) SetupSchema(ctx context.Context) error {
	logging.Info().Msg("mock backend: setup-sheets is a no-op")
	return nil
}

func (m *Mock) EnsureBucketsTab(ctx context.Context) error {
	logging.Info().Msg("mock backend: buckets tab is a no-op")
	return nil
}
