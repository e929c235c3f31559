// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the card API.
//   - rayid: tags every request with a RayID, stored in the context locals and
//     echoed in the X-Ray-ID response header for tracing.
//
// Both are registered globally by the start command; rayid must come first so
// that every log line of a request carries its RayID.
package middleware
