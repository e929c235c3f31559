// Package models defines the gorm models of the card feature.
//
// Card maps to the `cards` table and CardMedia to `card_media`. Nullable
// columns are pointers so that an unset value stays distinguishable from an
// empty one; the sync layer never publishes unset values.
package models
