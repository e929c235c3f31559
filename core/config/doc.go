// Package config provides configuration management for postcard-sync.
//
// It uses Viper for loading configuration from environment variables and an
// optional .env file loaded with godotenv.
//
// # Configuration Structure
//
// The Config struct is divided into sections, each owned by the package that
// reads it:
//   - Server: HTTP port and API key
//   - Database: local record store driver and connection details
//   - Storage: MinIO credentials, bucket and card media prefix
//   - Log: logging level and format
//   - Remote: base URL, token, timeout and retries of the remote API
//   - Account: author name and uri stamped on new cards
//   - Sync: conflict policy and the untitled display text
//
// Defaults come from `default:` struct tags. Environment variables map to
// nested keys by replacing dots with underscores, so SYNC_CONFLICT_POLICY sets
// sync.conflict_policy.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Remote.BaseURL)
package config
