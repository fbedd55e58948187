// Package keyring keeps the API session token and the PostgreSQL connection
// string in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/fastwell/internal/constants"
)

var (
	// ErrNotFound is returned when nothing is stored under the key
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetToken returns the stored API session token
func GetToken() (string, error) {
	return get(constants.DefaultKeyringUser)
}

// SetToken stores the API session token
func SetToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	return set(constants.DefaultKeyringUser, token)
}

// DeleteToken removes the API session token. Deleting a missing token
// returns ErrNotFound.
func DeleteToken() error {
	return remove(constants.DefaultKeyringUser)
}

// GetConnectionString returns the stored database connection string
func GetConnectionString() (string, error) {
	return get(constants.KeyringConnUser)
}

func SetConnectionString(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	return set(constants.KeyringConnUser, connStr)
}

func DeleteConnectionString() error {
	return remove(constants.KeyringConnUser)
}

// IsAvailable is a best-effort check that the OS keyring can be read
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func get(user string) (string, error) {
	v, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func set(user, value string) error {
	if err := keyring.Set(constants.AppName, user, value); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func remove(user string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}
