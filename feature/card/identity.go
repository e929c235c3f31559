package card

import (
	"context"
	"errors"

	"postcard-sync/core/account"
	"postcard-sync/core/reconcile"
	"postcard-sync/feature/card/models"

	"github.com/google/uuid"
)

// NewCard holds the initial attributes of a card.
type NewCard struct {
	Title    string              `json:"title"`
	Timing   int                 `json:"timing,omitempty"`
	Location *reconcile.GeoPoint `json:"location,omitempty"`
}

// creator is the storage half the assigner needs.
type creator interface {
	Create(ctx context.Context, c *models.Card) error
}

// Assigner stamps identity and initial lifecycle state on new cards.
type Assigner struct {
	store    creator
	accounts account.Provider
	newUUID  func() string
}

// NewAssigner creates an assigner writing through store.
func NewAssigner(store creator, accounts account.Provider) *Assigner {
	return &Assigner{store: store, accounts: accounts, newUUID: uuid.NewString}
}

// Create inserts a new draft card authored by the current account.
// A missing account leaves the author fields empty. Any storage failure
// is returned as *reconcile.CreationError; nothing is written in that case.
func (a *Assigner) Create(ctx context.Context, in NewCard) (*models.Card, error) {
	timing := in.Timing
	if timing <= 0 {
		timing = models.DefaultTiming
	}

	c := &models.Card{
		UUID:    a.newUUID(),
		Title:   in.Title,
		Timing:  timing,
		Privacy: models.PrivacyProtected,
		Draft:   true,
	}
	if in.Location != nil {
		lat, lon := in.Location.Latitude, in.Location.Longitude
		c.Latitude, c.Longitude = &lat, &lon
	}

	if a.accounts != nil {
		acc, err := a.accounts.Current(ctx)
		switch {
		case err == nil:
			c.AuthorName, c.AuthorURI = acc.Name, acc.URI
		case !errors.Is(err, account.ErrNoAccount):
			return nil, &reconcile.CreationError{Err: err}
		}
	}

	if err := a.store.Create(ctx, c); err != nil {
		return nil, &reconcile.CreationError{Err: err}
	}
	return c, nil
}
