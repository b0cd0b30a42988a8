package warehouse

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	apperrors "viewdeploy/pkg/errors"
)

// KeyringService is the OS keyring service holding warehouse passwords
const KeyringService = "viewdeploy"

// ResolvePassword returns the configured password, falling back to the OS
// keyring entry for the user
func ResolvePassword(configured, username string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	secret, err := keyring.Get(KeyringService, username)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", apperrors.ConfigError(fmt.Sprintf("No password configured for %s", username), "snowflake.password").
			WithSuggestions(fmt.Sprintf("Store it with: viewdeploy login --user %s", username))
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Failed to read password from keyring")
	}
	return secret, nil
}

// StorePassword saves a password for the user in the OS keyring
func StorePassword(username, password string) error {
	if err := keyring.Set(KeyringService, username, password); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to store password in keyring")
	}
	return nil
}
