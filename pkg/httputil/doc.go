// Package httputil fetches chart documents over HTTP.
//
// [Fetcher] downloads a document with retries for transient failures
// (network errors, 5xx and 429 responses) and can keep response bodies in
// any byte cache with the Get/Set shape of the render cache, so repeated
// renders of a remote chart do not hit the network:
//
//	f := httputil.NewFetcher(fileCache)
//	doc, err := f.Fetch(ctx, "https://example.com/plans/release.yaml")
//	c, err := pipeline.Parse(doc.Body, doc.ContentType)
//
// [Retry] is the backoff loop behind Fetcher; the render cache reuses it for
// Redis calls.
package httputil
