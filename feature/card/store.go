package card

import (
	"context"
	"errors"
	"fmt"

	"postcard-sync/core/database"
	"postcard-sync/core/reconcile"
	"postcard-sync/feature/card/models"

	"gorm.io/gorm"
)

// Store persists cards with gorm. It implements reconcile.Store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// syncedColumns are the card columns the sync schema reads and writes.
var syncedColumns = []string{
	"uuid", "title", "timing", "privacy", "latitude", "longitude",
	"web_url", "media_url", "anim_render", "video_render", "video_type",
	"cover_photo", "thumbnail", "draft", "dirty",
}

// mediaColumnNames are the photo columns the sync schema reads and writes.
var mediaColumnNames = []string{"card_id", "remote_key", "uri", "media_url", "mime_type", "position"}

// RequiredColumns lists, per table, the columns the card store relies on.
func RequiredColumns() map[string][]string {
	return map[string][]string{
		models.Card{}.TableName():      syncedColumns,
		models.CardMedia{}.TableName(): mediaColumnNames,
	}
}

// Migrate creates or updates the card tables and verifies the synced columns exist.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.Card{}, &models.CardMedia{}); err != nil {
		return fmt.Errorf("failed to migrate card tables: %w", err)
	}
	for _, table := range []string{models.Card{}.TableName(), models.CardMedia{}.TableName()} {
		missing, err := database.MissingColumns(s.db, table, RequiredColumns()[table])
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("table %s is missing columns %v", table, missing)
		}
	}
	return nil
}

// Create inserts a card and its photos in one statement group.
func (s *Store) Create(ctx context.Context, c *models.Card) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// Get loads a card with its photos in remote order.
func (s *Store) Get(ctx context.Context, uuid string) (*models.Card, error) {
	var c models.Card
	err := s.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Where("uuid = ?", uuid).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, reconcile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load card %s: %w", uuid, err)
	}
	return &c, nil
}

// ListOptions filters List.
type ListOptions struct {
	// PublishedOnly hides drafts.
	PublishedOnly bool
	// Limit caps the result; zero means no limit.
	Limit int
}

// List returns cards newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]models.Card, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if opts.PublishedOnly {
		q = q.Where("draft = ?", false)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	var cards []models.Card
	if err := q.Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// PhotoKeys returns the photo keys of every card in remote order, keyed by card uuid.
func (s *Store) PhotoKeys(ctx context.Context) (map[string][]string, error) {
	var rows []struct {
		UUID      string
		RemoteKey string
	}
	err := s.db.WithContext(ctx).
		Table(models.CardMedia{}.TableName()).
		Select("cards.uuid AS uuid, card_media.remote_key AS remote_key").
		Joins("JOIN cards ON cards.id = card_media.card_id").
		Order("cards.id ASC, card_media.position ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photo keys: %w", err)
	}
	keys := make(map[string][]string)
	for _, r := range rows {
		keys[r.UUID] = append(keys[r.UUID], r.RemoteKey)
	}
	return keys, nil
}

// UpdateColumns applies a single update statement to the card identified by uuid.
func (s *Store) UpdateColumns(ctx context.Context, uuid string, cols map[string]any) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := cardID(tx, uuid)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Card{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return fmt.Errorf("failed to update card %s: %w", uuid, err)
		}
		return nil
	})
}

// Snapshot implements reconcile.Store.
func (s *Store) Snapshot(ctx context.Context, uuid string) (*reconcile.Snapshot, error) {
	c, err := s.Get(ctx, uuid)
	if err != nil {
		return nil, err
	}
	snap := &reconcile.Snapshot{
		ID:     c.ID,
		UUID:   c.UUID,
		Draft:  c.Draft,
		Dirty:  c.Dirty,
		Fields: fieldsFromCard(c),
	}
	for _, m := range c.Media {
		snap.Children = append(snap.Children, reconcile.ChildRef{ID: m.ID, Key: m.RemoteKey, Order: m.Position})
	}
	return snap, nil
}

// Commit implements reconcile.Store. The card row and its photos change in one transaction.
func (s *Store) Commit(ctx context.Context, c reconcile.Commit) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := cardID(tx, c.UUID)
		if err != nil {
			return err
		}
		if c.ID != 0 && id != c.ID {
			return fmt.Errorf("card %s has id %d, commit targets %d", c.UUID, id, c.ID)
		}

		cols := map[string]any{}
		if c.Fields != nil {
			cols = columnsFromFields(c.Fields)
		}
		cols["draft"] = false
		if c.ClearDirty {
			cols["dirty"] = false
		}
		// RowsAffected is not checked: mysql reports zero for an unchanged row.
		if err := tx.Model(&models.Card{}).Where("id = ?", id).Updates(cols).Error; err != nil {
			return fmt.Errorf("failed to update card %s: %w", c.UUID, err)
		}

		if c.Children == nil {
			return nil
		}
		if err := applyPlan(tx, id, c.Children); err != nil {
			return &reconcile.ChildReconcileError{UUID: c.UUID, Reason: "cannot apply photo list", Err: err}
		}
		return nil
	})
}

func applyPlan(tx *gorm.DB, cardID uint, plan *reconcile.ChildPlan) error {
	var ids []uint
	if err := tx.Model(&models.CardMedia{}).Where("card_id = ?", cardID).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to load photos: %w", err)
	}
	owned := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		owned[id] = struct{}{}
	}

	for _, a := range plan.Actions {
		switch a.Type {
		case reconcile.ChildDelete:
			if _, ok := owned[a.ID]; !ok {
				return fmt.Errorf("photo %d (%s) does not belong to card %d", a.ID, a.Key, cardID)
			}
			if err := tx.Delete(&models.CardMedia{}, a.ID).Error; err != nil {
				return fmt.Errorf("failed to delete photo %s: %w", a.Key, err)
			}
		case reconcile.ChildUpdate:
			if _, ok := owned[a.ID]; !ok {
				return fmt.Errorf("photo %d (%s) does not belong to card %d", a.ID, a.Key, cardID)
			}
			cols := mediaColumns(a.Fields)
			cols["position"] = a.Position
			if err := tx.Model(&models.CardMedia{}).Where("id = ?", a.ID).Updates(cols).Error; err != nil {
				return fmt.Errorf("failed to update photo %s: %w", a.Key, err)
			}
		case reconcile.ChildInsert:
			cols := mediaColumns(a.Fields)
			m := models.CardMedia{CardID: cardID, RemoteKey: a.Key, Position: a.Position}
			m.URI, _ = cols[PhotoFieldURI].(*string)
			m.MediaURL, _ = cols[PhotoFieldMediaURL].(*string)
			m.MimeType, _ = cols[PhotoFieldMimeType].(*string)
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("failed to insert photo %s: %w", a.Key, err)
			}
		default:
			return fmt.Errorf("unknown photo action %q", a.Type)
		}
	}
	return nil
}

func cardID(tx *gorm.DB, uuid string) (uint, error) {
	var c models.Card
	err := tx.Select("id").Where("uuid = ?", uuid).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, reconcile.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load card %s: %w", uuid, err)
	}
	return c.ID, nil
}
