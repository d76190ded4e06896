// Package http provides an HTTP client configured for the NOAA ISD file server.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Request timeouts
//   - Bounded retry with backoff for transport errors, 429 and 5xx responses
//   - Streamed file downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Fetch a year directory listing
//	html, err := client.GetString(ctx, "https://www1.ncdc.noaa.gov/pub/data/noaa/2000/")
//
//	// Download an archive with progress callback
//	client.DownloadFile(ctx, archiveURL, "/path/to/file.gz", func(written, total int64) {
//	    fmt.Printf("%d bytes\n", written)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
