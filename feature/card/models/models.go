package models

import (
	"time"

	"postcard-sync/core/reconcile"
)

// Privacy is the sharing level of a card.
type Privacy string

const (
	// PrivacyProtected limits editing to the author.
	PrivacyProtected Privacy = reconcile.PrivacyProtected
	// PrivacyPublic opens the card to collaborators.
	PrivacyPublic Privacy = reconcile.PrivacyPublic
)

// DefaultTiming is the frame delay of a new card in milliseconds.
const DefaultTiming = 300

// Card is a locally stored postcard.
type Card struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	UUID string `gorm:"column:uuid;size:36;uniqueIndex;not null" json:"uuid"`

	Title  string `gorm:"column:title;size:255;not null" json:"title"`
	Timing int    `gorm:"column:timing;not null" json:"timing"`

	// Derived assets, only ever written from the remote _resources sub-document.
	AnimRender  *string `gorm:"column:anim_render" json:"anim_render,omitempty"`
	VideoRender *string `gorm:"column:video_render" json:"video_render,omitempty"`
	VideoType   *string `gorm:"column:video_type;size:64" json:"video_type,omitempty"`
	CoverPhoto  *string `gorm:"column:cover_photo" json:"cover_photo,omitempty"`
	Thumbnail   *string `gorm:"column:thumbnail" json:"thumbnail,omitempty"`

	MediaURL *string `gorm:"column:media_url" json:"media_url,omitempty"`
	WebURL   *string `gorm:"column:web_url" json:"web_url,omitempty"`

	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`

	Privacy    Privacy `gorm:"column:privacy;size:16;not null" json:"privacy"`
	AuthorName string  `gorm:"column:author_name;size:255" json:"author_name"`
	AuthorURI  string  `gorm:"column:author_uri;size:255" json:"author_uri"`

	Draft bool `gorm:"column:draft;not null;index" json:"draft"`
	Dirty bool `gorm:"column:dirty;not null" json:"dirty"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`

	Media []CardMedia `gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE" json:"photos"`
}

// TableName overrides the table name used by Card to `cards`.
func (Card) TableName() string {
	return "cards"
}

// CardMedia is one photo of a card, in remote order.
type CardMedia struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	CardID uint `gorm:"column:card_id;not null;index:idx_card_media_position" json:"-"`

	// RemoteKey correlates the row with its remote descriptor.
	RemoteKey string `gorm:"column:remote_key;size:255;not null" json:"key"`

	URI      *string `gorm:"column:uri" json:"uri,omitempty"`
	MediaURL *string `gorm:"column:media_url" json:"media_url,omitempty"`
	MimeType *string `gorm:"column:mime_type;size:64" json:"mime_type,omitempty"`

	Position int `gorm:"column:position;not null;index:idx_card_media_position" json:"position"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides the table name used by CardMedia to `card_media`.
func (CardMedia) TableName() string {
	return "card_media"
}

// IsCollaborative reports whether the card is open to collaborators.
func (c *Card) IsCollaborative() bool {
	return c.Privacy == PrivacyPublic
}
