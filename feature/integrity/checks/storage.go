package checks

import (
	"context"
	"fmt"

	"postcard-sync/core/storage"
)

// CheckBucket reports whether bucket exists.
func CheckBucket(ctx context.Context, client storage.Client, bucket string) (bool, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	return exists, nil
}
