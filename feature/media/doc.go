// Package media resolves card photos to byte streams in object storage.
//
// The content of photo key of card uuid lives at
// {media_prefix}{uuid}/{escaped key} in the media bucket. Photos arrive as
// references through reconciliation; their bytes are cached or captured
// separately with Put and read back with Open. Prune drops the objects of
// photos the latest photo list no longer contains.
package media
