package card

import (
	"context"
	"errors"
	"fmt"
	"io"

	"postcard-sync/core/account"
	"postcard-sync/core/reconcile"
	"postcard-sync/feature/card/models"
	"postcard-sync/feature/media"

	"go.uber.org/zap"
)

// ErrInvalid is returned for edits that fail validation.
var ErrInvalid = errors.New("invalid card input")

// Edit is a local change to a card. Nil fields are left unchanged.
type Edit struct {
	Title         *string             `json:"title,omitempty"`
	Timing        *int                `json:"timing,omitempty"`
	Location      *reconcile.GeoPoint `json:"location,omitempty"`
	ClearLocation bool                `json:"clear_location,omitempty"`
}

// SyncOutcome is the result of one record in a batch pull.
type SyncOutcome struct {
	UUID   string            `json:"uuid"`
	Result *reconcile.Result `json:"result,omitempty"`
	Err    error             `json:"-"`
}

// Service implements the card operations.
type Service struct {
	store    *Store
	assigner *Assigner
	privacy  *Privacy
	engine   *reconcile.Engine
	media    *media.Resolver
	linker   *Linker
	untitled string
	logger   *zap.Logger
}

// NewService wires the card operations. resolver may be nil when no object storage
// is configured, and linker may be nil when share links are not offered.
func NewService(store *Store, engine *reconcile.Engine, accounts account.Provider, resolver *media.Resolver, linker *Linker, untitled string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		assigner: NewAssigner(store, accounts),
		privacy:  NewPrivacy(store),
		engine:   engine,
		media:    resolver,
		linker:   linker,
		untitled: untitled,
		logger:   logger,
	}
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger { return s.logger }

// Create stores a new draft card.
func (s *Service) Create(ctx context.Context, in NewCard) (*models.Card, error) {
	if in.Timing < 0 {
		return nil, fmt.Errorf("%w: timing must be positive", ErrInvalid)
	}
	c, err := s.assigner.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Created card", zap.String("uuid", c.UUID), zap.String("author", c.AuthorName))
	return c, nil
}

// Get returns a card with its photos.
func (s *Service) Get(ctx context.Context, uuid string) (*models.Card, error) {
	return s.store.Get(ctx, uuid)
}

// List returns cards newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.Card, error) {
	return s.store.List(ctx, opts)
}

// Edit applies a local change and marks the card as having unpublished edits.
func (s *Service) Edit(ctx context.Context, uuid string, e Edit) (*models.Card, error) {
	cols := map[string]any{}
	if e.Title != nil {
		cols[FieldTitle] = *e.Title
	}
	if e.Timing != nil {
		if *e.Timing <= 0 {
			return nil, fmt.Errorf("%w: timing must be positive", ErrInvalid)
		}
		cols[FieldTiming] = *e.Timing
	}
	switch {
	case e.Location != nil && e.ClearLocation:
		return nil, fmt.Errorf("%w: location and clear_location are exclusive", ErrInvalid)
	case e.Location != nil:
		if !e.Location.Valid() {
			return nil, fmt.Errorf("%w: location out of range", ErrInvalid)
		}
		cols["latitude"] = e.Location.Latitude
		cols["longitude"] = e.Location.Longitude
	case e.ClearLocation:
		cols["latitude"] = nil
		cols["longitude"] = nil
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: nothing to change", ErrInvalid)
	}
	cols[reconcile.FieldDirty] = true

	if err := s.store.UpdateColumns(ctx, uuid, cols); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, uuid)
}

// Share returns the absolute link of a pulled card, titled with its display title.
func (s *Service) Share(ctx context.Context, uuid string) (*ShareLink, error) {
	if s.linker == nil {
		return nil, errors.New("share links are not configured")
	}
	c, err := s.store.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return s.linker.Link(c, s.DisplayTitle(c))
}

// SetCollaborative makes the card public or protected.
func (s *Service) SetCollaborative(ctx context.Context, uuid string, on bool) (*models.Card, error) {
	if err := s.privacy.SetCollaborative(ctx, uuid, on); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, uuid)
}

// DisplayTitle returns the title shown for c.
func (s *Service) DisplayTitle(c *models.Card) string {
	return DisplayTitle(c, s.untitled)
}

// Pull reconciles the card with its remote document.
// Stored content of photos the remote list dropped is pruned afterwards; a
// pruning failure is logged and does not fail the pull.
func (s *Service) Pull(ctx context.Context, uuid string) (*reconcile.Result, error) {
	res, err := s.engine.Pull(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if s.media != nil && res.Children != nil && res.Children.Deleted > 0 {
		s.pruneMedia(ctx, uuid)
	}
	return res, nil
}

func (s *Service) pruneMedia(ctx context.Context, uuid string) {
	c, err := s.store.Get(ctx, uuid)
	if err != nil {
		s.logger.Warn("Skipped media pruning", zap.String("uuid", uuid), zap.Error(err))
		return
	}
	keys := make([]string, 0, len(c.Media))
	for _, m := range c.Media {
		keys = append(keys, m.RemoteKey)
	}
	if _, err := s.media.Prune(ctx, uuid, keys); err != nil {
		s.logger.Warn("Media pruning failed", zap.String("uuid", uuid), zap.Error(err))
	}
}

// Push publishes the card's local state.
func (s *Service) Push(ctx context.Context, uuid string) (*reconcile.Result, error) {
	return s.engine.Push(ctx, uuid)
}

// PullAll pulls every card in turn. A failed card does not stop the batch.
func (s *Service) PullAll(ctx context.Context) ([]SyncOutcome, error) {
	cards, err := s.store.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]SyncOutcome, 0, len(cards))
	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := s.Pull(ctx, c.UUID)
		out = append(out, SyncOutcome{UUID: c.UUID, Result: res, Err: err})
	}
	return out, nil
}

// OpenPhoto streams the stored content of one photo of a card.
func (s *Service) OpenPhoto(ctx context.Context, uuid, key string) (*media.Object, error) {
	if err := s.ensurePhoto(ctx, uuid, key); err != nil {
		return nil, err
	}
	return s.media.Open(ctx, uuid, key)
}

// StorePhoto saves the content of one photo of a card.
func (s *Service) StorePhoto(ctx context.Context, uuid, key string, body io.Reader, size int64, contentType string) error {
	if err := s.ensurePhoto(ctx, uuid, key); err != nil {
		return err
	}
	return s.media.Put(ctx, uuid, key, body, size, contentType)
}

func (s *Service) ensurePhoto(ctx context.Context, uuid, key string) error {
	if s.media == nil {
		return media.ErrNotFound
	}
	c, err := s.store.Get(ctx, uuid)
	if err != nil {
		return err
	}
	for _, m := range c.Media {
		if m.RemoteKey == key {
			return nil
		}
	}
	return fmt.Errorf("card %s has no photo %q: %w", uuid, key, reconcile.ErrNotFound)
}
