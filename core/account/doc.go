// Package account resolves the local author stamped on new records.
package account
