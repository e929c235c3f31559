package card

import (
	"postcard-sync/core/reconcile"
)

// Local field names of a card. They match the column names of models.Card.
const (
	FieldTitle       = reconcile.FieldTitle
	FieldPrivacy     = reconcile.FieldPrivacy
	FieldLocation    = reconcile.FieldLocation
	FieldTiming      = "timing"
	FieldWebURL      = "web_url"
	FieldMediaURL    = "media_url"
	FieldAnimRender  = "anim_render"
	FieldVideoRender = "video_render"
	FieldVideoType   = "video_type"
	FieldCoverPhoto  = "cover_photo"
	FieldThumbnail   = "thumbnail"
	FieldAuthorName  = "author_name"
	FieldAuthorURI   = "author_uri"
)

// Local field names of a card photo.
const (
	PhotoFieldURI      = "uri"
	PhotoFieldMediaURL = "media_url"
	PhotoFieldMimeType = "mime_type"
)

// NewSchema builds the sync schema of a card.
func NewSchema() *reconcile.Schema {
	table := reconcile.MustCompose("card",
		reconcile.TitledMixin(),
		reconcile.AuthorshipMixin(),
		reconcile.GeolocationMixin(),
		reconcile.Mixin("card",
			reconcile.Field(FieldTiming, "frame_delay", reconcile.TypePositiveInteger),
			reconcile.PullOnly(FieldWebURL, "url", reconcile.TypeString),
			reconcile.PullOnly(FieldMediaURL, "media_url", reconcile.TypeString),
		),
	)

	resources := reconcile.NewResourceSet(
		reconcile.ResourceField{RemoteKey: "animated_render", LocalField: FieldAnimRender},
		reconcile.ResourceField{RemoteKey: "video_render", LocalField: FieldVideoRender, TypeKey: "video_render_type", TypeField: FieldVideoType},
		reconcile.ResourceField{RemoteKey: "cover_photo", LocalField: FieldCoverPhoto},
		reconcile.ResourceField{RemoteKey: "thumbnail", LocalField: FieldThumbnail},
	)

	photos := reconcile.MustCompose("card_media",
		reconcile.Mixin("card_media",
			reconcile.PullOnly(PhotoFieldURI, "uri", reconcile.TypeString),
			reconcile.PullOnly(PhotoFieldMediaURL, "media_url", reconcile.TypeString),
			reconcile.PullOnly(PhotoFieldMimeType, "mime_type", reconcile.TypeString),
		),
	)

	return &reconcile.Schema{
		Table:     table,
		Resources: resources,
		Children:  reconcile.NewChildRelation("photos", PhotoFieldURI, photos, "uuid", "uri"),
		Protected: []string{FieldAuthorName, FieldAuthorURI},
	}
}
