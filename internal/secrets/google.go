package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups this tool's secrets in the OS keychain.
	KeyringService = "lead-lab"

	// GoogleAccount is the keychain entry holding the service-account JSON
	// for the live Sheets backend.
	GoogleAccount = "google-service-account"
)

// GoogleCredentials returns the service-account JSON: keychain first, then
// the file path from GOOGLE_SERVICE_ACCOUNT_JSON.
func GoogleCredentials(fallbackPath string) ([]byte, error) {
	if raw, err := keyring.Get(KeyringService, GoogleAccount); err == nil && strings.TrimSpace(raw) != "" {
		return []byte(raw), nil
	}

	if strings.TrimSpace(fallbackPath) != "" {
		b, err := os.ReadFile(fallbackPath)
		if err == nil {
			return b, nil
		}
	}

	return nil, errors.New("google credentials not found (run `leadlab secret set` or set GOOGLE_SERVICE_ACCOUNT_JSON)")
}

func SetGoogleCredentials(jsonBlob string) error {
	if strings.TrimSpace(jsonBlob) == "" {
		return errors.New("credentials are empty")
	}
	return keyring.Set(KeyringService, GoogleAccount, jsonBlob)
}

func DeleteGoogleCredentials() error {
	return keyring.Delete(KeyringService, GoogleAccount)
}
