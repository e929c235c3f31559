package card

import (
	"errors"
	"fmt"
	"net/url"

	"postcard-sync/feature/card/models"
)

// ErrNotPublished is returned when a card has no web URL to share yet.
var ErrNotPublished = errors.New("card has no web url")

// ShareLink is what a user sends to share one card.
type ShareLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Linker turns the web_url a card receives on pull into an absolute link.
type Linker struct {
	base *url.URL
}

// NewLinker creates a linker resolving against base, the remote API root.
func NewLinker(base string) (*Linker, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid share base %q: %w", base, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("share base %q is not an absolute url", base)
	}
	return &Linker{base: u}, nil
}

// Resolve returns webURL made absolute. An absolute webURL is returned as is.
func (l *Linker) Resolve(webURL string) (string, error) {
	ref, err := url.Parse(webURL)
	if err != nil {
		return "", fmt.Errorf("%w: web url %q: %v", ErrInvalid, webURL, err)
	}
	return l.base.ResolveReference(ref).String(), nil
}

// Link builds the share link of c titled with title.
func (l *Linker) Link(c *models.Card, title string) (*ShareLink, error) {
	if c.WebURL == nil || *c.WebURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, c.UUID)
	}
	u, err := l.Resolve(*c.WebURL)
	if err != nil {
		return nil, err
	}
	return &ShareLink{URL: u, Title: title}, nil
}
