package card

import (
	"postcard-sync/core/reconcile"
	"postcard-sync/feature/card/models"
)

// fieldsFromCard builds the sync buffer of a card. Nil columns are unset.
func fieldsFromCard(c *models.Card) reconcile.Fields {
	f := reconcile.Fields{
		FieldTitle:       c.Title,
		FieldPrivacy:     string(c.Privacy),
		FieldTiming:      c.Timing,
		FieldLocation:    nil,
		FieldWebURL:      deref(c.WebURL),
		FieldMediaURL:    deref(c.MediaURL),
		FieldAnimRender:  deref(c.AnimRender),
		FieldVideoRender: deref(c.VideoRender),
		FieldVideoType:   deref(c.VideoType),
		FieldCoverPhoto:  deref(c.CoverPhoto),
		FieldThumbnail:   deref(c.Thumbnail),
	}
	if c.Latitude != nil && c.Longitude != nil {
		f[FieldLocation] = reconcile.GeoPoint{Latitude: *c.Latitude, Longitude: *c.Longitude}
	}
	return f
}

// columnsFromFields maps a sync buffer back to card columns for an update.
// Only keys present in f produce columns.
func columnsFromFields(f reconcile.Fields) map[string]any {
	cols := make(map[string]any, len(f)+1)
	for key, v := range f {
		switch key {
		case FieldTitle:
			s, _ := v.(string)
			cols[key] = s
		case FieldPrivacy:
			s, _ := v.(string)
			if s == "" {
				s = string(models.PrivacyProtected)
			}
			cols[key] = s
		case FieldTiming:
			n, ok := v.(int)
			if !ok {
				n = models.DefaultTiming
			}
			cols[key] = n
		case FieldLocation:
			if p, ok := v.(reconcile.GeoPoint); ok {
				cols["latitude"] = p.Latitude
				cols["longitude"] = p.Longitude
			} else {
				cols["latitude"] = nil
				cols["longitude"] = nil
			}
		case FieldWebURL, FieldMediaURL, FieldAnimRender, FieldVideoRender, FieldVideoType, FieldCoverPhoto, FieldThumbnail:
			cols[key] = stringPtr(v)
		}
	}
	return cols
}

// mediaColumns maps a photo's staged fields to card_media columns.
func mediaColumns(f reconcile.Fields) map[string]any {
	cols := make(map[string]any, len(f))
	for key, v := range f {
		switch key {
		case PhotoFieldURI, PhotoFieldMediaURL, PhotoFieldMimeType:
			cols[key] = stringPtr(v)
		}
	}
	return cols
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
