package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
)

// TokenStorage keeps the device flow token in a JSON file so later runs skip
// the authorization prompt.
type TokenStorage struct {
	configDir string
}

func NewTokenStorage() *TokenStorage {
	return NewTokenStorageAt(defaultConfigDir())
}

// NewTokenStorageAt stores the token under configDir instead of the user's
// config directory.
func NewTokenStorageAt(configDir string) *TokenStorage {
	return &TokenStorage{
		configDir: configDir,
	}
}

func defaultConfigDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "octastat")
}

func (s *TokenStorage) tokenPath() string {
	return filepath.Join(s.configDir, "token.json")
}

type tokenData struct {
	AccessToken string `json:"access_token"`
}

func (s *TokenStorage) SaveToken(ctx context.Context, token string) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return domain.ErrConfiguration.Wrap(err)
	}

	data, err := json.MarshalIndent(tokenData{AccessToken: token}, "", "  ")
	if err != nil {
		return domain.ErrConfiguration.Wrap(err)
	}

	path := s.tokenPath()
	err = withFileLock(path, true, func() error {
		return os.WriteFile(path, data, 0600)
	})
	if err != nil {
		return goerr.Wrap(domain.ErrConfiguration.Wrap(err), "failed to save token", goerr.V("path", path))
	}

	ctxlog.From(ctx).Debug("saved token", slog.String("path", path))
	return nil
}

// GetToken returns the stored token, or an empty string when none was saved
func (s *TokenStorage) GetToken(ctx context.Context) (string, error) {
	path := s.tokenPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}

	var data []byte
	err := withFileLock(path, false, func() error {
		var err error
		data, err = os.ReadFile(path) // #nosec G304 - path is inside the config directory
		return err
	})
	if err != nil {
		return "", goerr.Wrap(domain.ErrConfiguration.Wrap(err), "failed to read token", goerr.V("path", path))
	}

	var token tokenData
	if err := json.Unmarshal(data, &token); err != nil {
		return "", goerr.Wrap(domain.ErrConfiguration.Wrap(err), "broken token file", goerr.V("path", path))
	}
	return token.AccessToken, nil
}
