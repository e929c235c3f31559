package integrity

import (
	"context"
	"fmt"

	"postcard-sync/core/storage"
	"postcard-sync/feature/integrity/checks"
	"postcard-sync/feature/media"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PhotoLister returns the photo keys of every card, keyed by card uuid.
type PhotoLister interface {
	PhotoKeys(ctx context.Context) (map[string][]string, error)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Storage storage.Client
	Bucket  string
	Region  string
	DB      *gorm.DB
	// Columns lists the required columns per table.
	Columns map[string][]string
	Photos  PhotoLister
	Media   *media.Resolver
	Logger  *zap.Logger
}

// Service handles integrity checks.
type Service struct {
	client  storage.Client
	bucket  string
	region  string
	db      *gorm.DB
	columns map[string][]string
	photos  PhotoLister
	media   *media.Resolver
	logger  *zap.Logger
}

// NewService creates a new integrity service.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		client:  d.Storage,
		bucket:  d.Bucket,
		region:  d.Region,
		db:      d.DB,
		columns: d.Columns,
		photos:  d.Photos,
		media:   d.Media,
		logger:  d.Logger,
	}
}

// CheckStorage reports whether the media bucket exists.
func (s *Service) CheckStorage(ctx context.Context) (bool, error) {
	return checks.CheckBucket(ctx, s.client, s.bucket)
}

// FixStorage creates the media bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	return storage.EnsureBucket(ctx, s.client, s.bucket, s.region)
}

// CheckSchema returns the required columns missing from the database.
func (s *Service) CheckSchema() (map[string][]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not connected")
	}
	return checks.CheckSchema(s.db, s.columns)
}

// CheckMedia compares stored photo content with the photos of every card.
func (s *Service) CheckMedia(ctx context.Context) (*checks.MediaReport, error) {
	keys, err := s.photos.PhotoKeys(ctx)
	if err != nil {
		return nil, err
	}
	var expected []string
	for uuid, ks := range keys {
		for _, k := range ks {
			expected = append(expected, s.media.ObjectName(uuid, k))
		}
	}

	stored, err := s.media.Objects(ctx)
	if err != nil {
		return nil, err
	}
	report := checks.CompareMedia(expected, stored)
	return &report, nil
}

// FixMedia removes the orphans of report and returns how many were removed.
func (s *Service) FixMedia(ctx context.Context, report *checks.MediaReport) (int, error) {
	n, err := s.media.Remove(ctx, report.Orphans)
	if err != nil {
		return n, fmt.Errorf("failed to remove orphaned media: %w", err)
	}
	s.logger.Info("Removed orphaned media", zap.Int("count", n))
	return n, nil
}
