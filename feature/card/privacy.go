package card

import (
	"context"

	"postcard-sync/core/reconcile"
	"postcard-sync/feature/card/models"
)

// columnUpdater is the storage half the privacy controller needs.
type columnUpdater interface {
	UpdateColumns(ctx context.Context, uuid string, cols map[string]any) error
}

// Privacy toggles whether a card is open to collaborators.
type Privacy struct {
	store columnUpdater
}

// NewPrivacy creates a privacy controller over store.
func NewPrivacy(store columnUpdater) *Privacy {
	return &Privacy{store: store}
}

// SetCollaborative writes the privacy column and marks the card dirty in the same
// update, so a later pull carrying privacy goes through the conflict policy.
// Draft state is left as it is.
func (p *Privacy) SetCollaborative(ctx context.Context, uuid string, on bool) error {
	privacy := models.PrivacyProtected
	if on {
		privacy = models.PrivacyPublic
	}
	return p.store.UpdateColumns(ctx, uuid, map[string]any{
		FieldPrivacy:         string(privacy),
		reconcile.FieldDirty: true,
	})
}

// IsCollaborative reports whether c is public.
func IsCollaborative(c *models.Card) bool {
	return c.IsCollaborative()
}
