package account

import (
	"context"
	"errors"
	"strings"
)

// ErrNoAccount is returned when no local account is configured.
var ErrNoAccount = errors.New("no account configured")

// Account identifies the author of locally created records.
type Account struct {
	Name string
	URI  string
}

// Config holds the static account settings.
type Config struct {
	// Name is the author display name stamped on new records.
	Name string `mapstructure:"name" default:""`
	// URI is the author profile uri on the remote service.
	URI string `mapstructure:"uri" default:""`
}

// Provider resolves the current account.
type Provider interface {
	Current(ctx context.Context) (Account, error)
}

// Static is a Provider backed by configuration.
type Static struct {
	account Account
}

// NewStatic creates a provider for cfg.
func NewStatic(cfg Config) *Static {
	return &Static{account: Account{Name: strings.TrimSpace(cfg.Name), URI: strings.TrimSpace(cfg.URI)}}
}

// Current returns the configured account, or ErrNoAccount when neither field is set.
func (s *Static) Current(ctx context.Context) (Account, error) {
	if s.account.Name == "" && s.account.URI == "" {
		return Account{}, ErrNoAccount
	}
	return s.account, nil
}
