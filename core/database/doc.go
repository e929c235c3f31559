// Package database handles database connections and schema inspection.
//
// It wraps GORM to open the local record store. The default driver is sqlite
// (gorm.io/driver/sqlite), which suits an offline device store; mysql is
// supported for shared deployments.
//
// # Connect
//
// Connect builds the DSN for the configured driver, applies pool settings and
// pings the database within Config.TimeoutSeconds. A sqlite pool is limited to
// one connection; ":memory:" maps to a shared-cache in-memory database.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns (PRAGMA table_info on sqlite, SHOW
// COLUMNS on mysql). MissingColumns compares them against the columns a feature
// expects, which the card store checks after migrating.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "cards", []string{"uuid", "title"})
package database
