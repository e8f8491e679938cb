// Package sheets holds the two remote-store backends: the live Google Sheets
// client and a mock that writes a local CSV export instead of making network
// calls. The env switch SHEETS_BACKEND picks one.
package sheets

import (
	"context"
	"fmt"

	"github.com/audreymhoughton/lead-lab/internal/config"
	"github.com/audreymhoughton/lead-lab/internal/domain"
)

// Client is the remote store surface. Schema setup is a no-op on the mock.
type Client interface {
	FetchAll(ctx context.Context) (map[string]domain.Lead, error)
	Upsert(ctx context.Context, leads []domain.Lead) error
	SetupSchema(ctx context.Context) error
	EnsureBucketsTab(ctx context.Context) error
}

// New picks the backend from settings. MOCK is the default so a fresh clone
// can run everything without credentials.
func New(ctx context.Context, settings config.Settings) (Client, error) {
	switch settings.Backend {
	case config.BackendSheets:
		return NewLive(ctx, settings)
	case config.BackendMock:
		return NewMock(settings.ExportCSV), nil
	default:
		return nil, fmt.Errorf("unknown SHEETS_BACKEND %q (want SHEETS or MOCK)", settings.Backend)
	}
}
