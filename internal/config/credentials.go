package config

import (
	"errors"
	"fmt"
	"strings"

	"espritjobs/internal/session"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the scraper's secrets in the OS keychain.
const KeyringService = "espritjobs"

var ErrMissingCredentials = errors.New("credentials not configured, set ESPRIT_EMAIL and ESPRIT_PASSWORD or store the password with `espritjobs credentials set`")

// ResolveCredentials returns the login credentials. The password comes from
// the environment or config file first and from the OS keyring otherwise.
func (c Config) ResolveCredentials() (session.Credentials, error) {
	email := strings.TrimSpace(c.Credentials.Email)
	if email == "" {
		return session.Credentials{}, ErrMissingCredentials
	}

	password := c.Credentials.Password
	if password == "" {
		stored, err := keyring.Get(KeyringService, email)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return session.Credentials{}, fmt.Errorf("read keyring: %w", err)
		}
		password = stored
	}
	if strings.TrimSpace(password) == "" {
		return session.Credentials{}, ErrMissingCredentials
	}
	return session.Credentials{Email: email, Password: password}, nil
}

func StorePassword(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, email, password)
}

func DeletePassword(email string) error {
	err := keyring.Delete(KeyringService, email)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
