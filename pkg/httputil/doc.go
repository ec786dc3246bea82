// Package httputil fetches remote resources for the renderer.
//
// # Overview
//
// Entity images may be http(s) URLs. Before a frame is rendered with
// embedded images, each URL is fetched once through a [Client]:
//
//   - [Client.Get]: GET with size limit, retry and caching
//   - [Retry]: exponential backoff for errors wrapped in [RetryableError]
//
// # Caching
//
// A Client created with [WithCache] stores every successful response in a
// cache.Cache under the keyer's HTTP key, so repeated renders of the same
// dataset do not touch the network:
//
//	c := httputil.NewClient(httputil.WithCache(store, cache.NewDefaultKeyer(), cache.TTLAsset))
//	res, err := c.Get(ctx, "https://example.com/logo.png")
//
// # Retry
//
// Transport errors, 5xx and 429 responses are retried up to three times with
// a 1s, 2s backoff. 404 is reported as NOT_FOUND and is never retried.
package httputil
