// Package credentials loads the Google service account used for the sheets.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

// Default locations.
const (
	DefaultSecretsFile = ".streamlit/secrets.toml"
	SecretsTable       = "google_service_account"
)

// ErrNoCredentials is returned when no source yields a service account.
var ErrNoCredentials = errors.New("no google service account credentials found")

// Sources lists where to look, in order. Empty paths are skipped.
type Sources struct {
	// SecretsFile is a TOML file with a [google_service_account] table.
	SecretsFile string
	// KeyFile is a service-account JSON key file.
	KeyFile string
}

// Load returns the service account as JSON. The TOML table wins over the key
// file; a missing file falls through to the next source while a malformed one
// is an error.
func Load(src Sources) ([]byte, error) {
	if src.SecretsFile != "" {
		data, err := fromSecrets(src.SecretsFile)
		if err != nil {
			return nil, err
		}

		if data != nil {
			return data, nil
		}
	}

	if src.KeyFile != "" {
		data, err := fromKeyFile(src.KeyFile)
		if err != nil {
			return nil, err
		}

		if data != nil {
			return data, nil
		}
	}

	return nil, ErrNoCredentials
}

func fromSecrets(path string) ([]byte, error) {
	var secrets map[string]any

	_, err := toml.DecodeFile(path, &secrets)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read secrets %s: %w", path, err)
	}

	account, ok := secrets[SecretsTable].(map[string]any)
	if !ok || len(account) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("encode service account: %w", err)
	}

	return data, nil
}

func fromKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read key file %s: %w", path, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("key file %s: not valid JSON", path)
	}

	return data, nil
}
