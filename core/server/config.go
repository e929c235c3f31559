package server

import "fmt"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitKB caps request bodies.
	BodyLimitKB int `mapstructure:"body_limit_kb" default:"512"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// BodyLimit returns the request body cap in bytes, falling back to 512 KiB.
func (c Config) BodyLimit() int {
	if c.BodyLimitKB <= 0 {
		return 512 * 1024
	}
	return c.BodyLimitKB * 1024
}
