package reconcile

// Local field names used by the shared mixins.
const (
	FieldTitle    = "title"
	FieldPrivacy  = "privacy"
	FieldLocation = "location"
)

// TitledMixin syncs a record title.
func TitledMixin() Source {
	return Mixin("titled",
		Field(FieldTitle, "title", TypeString),
	)
}

// AuthorshipMixin syncs the privacy setting of an authored record.
// Author identity is stamped at creation and is never part of a directive table.
func AuthorshipMixin() Source {
	return Mixin("authorship",
		Field(FieldPrivacy, "privacy", TypePrivacy),
	)
}

// GeolocationMixin syncs a point location as a GeoJSON-ordered pair.
func GeolocationMixin() Source {
	return Mixin("geolocation",
		Field(FieldLocation, "location", TypeGeoPoint),
	)
}
