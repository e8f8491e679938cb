package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Backend names for the remote store switch.
const (
	BackendSheets = "SHEETS"
	BackendMock   = "MOCK"
)

// Settings is the env-level configuration: paths, backend switch, and the
// live spreadsheet coordinates. Everything that tunes enrichment behavior
// lives in the yaml Config instead.
type Settings struct {
	Backend            string // SHEETS or MOCK
	SpreadsheetID      string
	WorksheetName      string
	ServiceAccountJSON string
	DataDir            string
	LocalCSV           string
	ExportCSV          string
	CacheDB            string
	LogLevel           string
}

// LoadSettings reads .env (if present) and the process environment.
func LoadSettings() Settings {
	_ = godotenv.Load()

	dataDir := envOr("LEADLAB_DATA_DIR", "data")

	s := Settings{
		Backend:            strings.ToUpper(envOr("SHEETS_BACKEND", BackendMock)),
		SpreadsheetID:      os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
		WorksheetName:      envOr("GOOGLE_SHEETS_WORKSHEET_NAME", "Leads"),
		ServiceAccountJSON: envOr("GOOGLE_SERVICE_ACCOUNT_JSON", "./service_account.json"),
		DataDir:            dataDir,
		LocalCSV:           envOr("LOCAL_CSV", filepath.Join(dataDir, "leads.csv")),
		ExportCSV:          envOr("EXPORT_CSV", filepath.Join(dataDir, "exports", "latest_export.csv")),
		CacheDB:            envOr("CACHE_DB", filepath.Join(dataDir, "leadlab.db")),
		LogLevel:           envOr("LOG_LEVEL", "info"),
	}
	return s
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
