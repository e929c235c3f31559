package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"postcard-sync/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no stored content exists for a photo.
var ErrNotFound = errors.New("media not found")

// Object is an open media stream. Close it when done.
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
	ETag        string
}

// Resolver maps card photos to objects in the media bucket.
type Resolver struct {
	client storage.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewResolver creates a resolver storing objects under prefix in bucket.
func NewResolver(client storage.Client, bucket, prefix string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Resolver{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// ObjectName returns the object holding the content of photo key of card cardUUID.
func (r *Resolver) ObjectName(cardUUID, key string) string {
	return r.cardPrefix(cardUUID) + url.PathEscape(strings.Trim(key, "/"))
}

func (r *Resolver) cardPrefix(cardUUID string) string {
	return r.prefix + path.Clean(cardUUID) + "/"
}

// Open streams the stored content of a photo.
func (r *Resolver) Open(ctx context.Context, cardUUID, key string) (*Object, error) {
	name := r.ObjectName(cardUUID, key)
	info, err := r.client.StatObject(ctx, r.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}

	body, err := r.client.GetObject(ctx, r.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return &Object{ReadCloser: body, Size: info.Size, ContentType: info.ContentType, ETag: info.ETag}, nil
}

// Put stores the content of a photo. A negative size streams until EOF.
func (r *Resolver) Put(ctx context.Context, cardUUID, key string, body io.Reader, size int64, contentType string) error {
	name := r.ObjectName(cardUUID, key)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := r.client.PutObject(ctx, r.bucket, name, body, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// Prune removes the stored content of every photo of cardUUID whose key is not in keep.
// It returns the number of objects removed.
func (r *Resolver) Prune(ctx context.Context, cardUUID string, keep []string) (int, error) {
	wanted := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		wanted[r.ObjectName(cardUUID, k)] = struct{}{}
	}

	stored, err := r.list(ctx, r.cardPrefix(cardUUID))
	if err != nil {
		return 0, fmt.Errorf("failed to list media of %s: %w", cardUUID, err)
	}
	var stale []string
	for _, name := range stored {
		if _, ok := wanted[name]; !ok {
			stale = append(stale, name)
		}
	}

	removed, err := r.Remove(ctx, stale)
	if err != nil {
		return removed, fmt.Errorf("failed to prune media of %s: %w", cardUUID, err)
	}
	if removed > 0 {
		r.logger.Debug("Pruned card media", zap.String("uuid", cardUUID), zap.Int("removed", removed))
	}
	return removed, nil
}

// Objects lists every stored media object name.
func (r *Resolver) Objects(ctx context.Context) ([]string, error) {
	names, err := r.list(ctx, r.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return names, nil
}

func (r *Resolver) list(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range r.client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Remove deletes the named objects and returns how many were removed.
func (r *Resolver) Remove(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	// RemoveObjects may not drain the channel before reporting, so fill it first
	objects := make(chan minio.ObjectInfo, len(names))
	for _, name := range names {
		objects <- minio.ObjectInfo{Key: name}
	}
	close(objects)

	var errs []error
	for rerr := range r.client.RemoveObjects(ctx, r.bucket, objects, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	if len(errs) > 0 {
		return len(names) - len(errs), errors.Join(errs...)
	}
	return len(names), nil
}
