// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so that card media
// handling can be tested against core/storage/mocks. It works with both AWS S3
// and self-hosted MinIO.
//
// # Operations
//
//   - BucketExists, MakeBucket: bucket provisioning, bundled in EnsureBucket.
//   - PutObject, GetObject, StatObject: single object access.
//   - ListObjects, RemoveObjects: prefix listing and bulk pruning.
//
// IsNotFound classifies missing-key and missing-bucket responses.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
