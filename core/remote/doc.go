// Package remote is the HTTP transport to the remote record API.
//
// Client implements reconcile.Remote with resty. A record lives at
// {base_url}/{collection}/{uuid}/: GET returns its JSON document and PUT
// replaces its writable keys.
//
// Transport errors, 429 and 5xx responses are retried with exponential
// backoff (cenkalti/backoff) up to Config.MaxRetries times. Other 4xx
// responses, undecodable bodies and context cancellation fail immediately.
// Non-2xx responses surface as *StatusError.
package remote
