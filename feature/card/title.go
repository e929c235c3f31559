package card

import "postcard-sync/feature/card/models"

// DefaultUntitled is the display title of a card without one.
const DefaultUntitled = "Untitled"

// DisplayTitle returns the card title as stored, or untitled when it is empty.
// A title of only spaces is still a title.
func DisplayTitle(c *models.Card, untitled string) string {
	if c.Title != "" {
		return c.Title
	}
	if untitled == "" {
		return DefaultUntitled
	}
	return untitled
}
