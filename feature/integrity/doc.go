// Package integrity checks that the card store and its media bucket agree.
//
// # Checks Provided
//
//   - Storage: the media bucket exists (?fix=true creates it).
//   - Schema: every column the card store relies on exists in the database.
//   - Media: every photo has stored content and every stored object belongs to a photo
//     (?fix=true removes the orphans).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the bucket check.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/media : Runs the media check.
package integrity
