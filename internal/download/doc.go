// Package download provides the orchestration logic for fetching a
// station's ISD archives.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Resolve the station name against the registry
//  2. Reject records without an identifier or year range
//  3. Fetch each year's directory listing, oldest first
//  4. Download every matching archive
//  5. Decompress it and remove the compressed file
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	if err := manager.Initialize(ctx, "CHICAGO"); err != nil {
//	    log.Fatal(err) // station not found or has invalid year data
//	}
//
//	if err := manager.StartDownloads(ctx); err != nil {
//	    log.Fatal(err) // only on cancellation
//	}
//
// # Error Handling
//
// Initialize errors are fatal. During StartDownloads a failed year listing or
// a failed archive is reported as a LevelError event and skipped; the run
// continues with the next archive or year.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// GetProgress returns counters that are safe to read from another goroutine.
//
// # Retry Logic
//
// Each request is bounded by settings.RequestTimeout and transient failures
// are retried up to settings.MaxRetries times with backoff.
package download
