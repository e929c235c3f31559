package checks

import (
	"sort"

	"postcard-sync/core/database"

	"gorm.io/gorm"
)

// CheckSchema returns, per table, the required columns absent from db.
// Tables with nothing missing are left out.
func CheckSchema(db *gorm.DB, required map[string][]string) (map[string][]string, error) {
	tables := make([]string, 0, len(required))
	for t := range required {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	missing := make(map[string][]string)
	for _, table := range tables {
		cols, err := database.MissingColumns(db, table, required[table])
		if err != nil {
			return nil, err
		}
		if len(cols) > 0 {
			missing[table] = cols
		}
	}
	return missing, nil
}
