package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultChunkSize is the buffer size used when streaming downloads to disk.
const DefaultChunkSize = 1024

// Options configures a Client.
type Options struct {
	// Timeout bounds each request, including reading the body. Zero disables it.
	Timeout time.Duration

	// RetryCount is how many times a failed request is retried.
	// Transport errors, 429 and 5xx responses are retried; other statuses are not.
	RetryCount int

	// RetryWaitTime is the initial backoff between retries.
	RetryWaitTime time.Duration

	// RetryMaxWaitTime caps the backoff between retries.
	RetryMaxWaitTime time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// ChunkSize is the buffer size for streamed downloads.
	ChunkSize int
}

// DefaultOptions returns the options used by NewClient when none are given.
func DefaultOptions() Options {
	return Options{
		Timeout:          60 * time.Second,
		RetryCount:       3,
		RetryWaitTime:    500 * time.Millisecond,
		RetryMaxWaitTime: 8 * time.Second,
		UserAgent:        "ISDDownloader",
		ChunkSize:        DefaultChunkSize,
	}
}

// Client wraps HTTP operations against the NOAA ISD file server.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - Bounded retry with backoff for transient failures
//   - Streamed file download with progress tracking
//
// Example usage:
//
//	client := NewClient(DefaultOptions())
//
//	// Fetch the station registry
//	registry, err := client.GetString(ctx, "https://www1.ncdc.noaa.gov/pub/data/noaa/isd-history.txt")
//
//	// Download an archive with progress
//	n, err := client.DownloadFile(ctx, archiveURL, "/data/725300-99999-2000.gz", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
type Client struct {
	resty     *resty.Client
	chunkSize int
}

// NewClient creates a new HTTP client from opts.
func NewClient(opts Options) *Client {
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.RetryCount)
	client.SetRetryWaitTime(opts.RetryWaitTime)
	client.SetRetryMaxWaitTime(opts.RetryMaxWaitTime)
	client.AddRetryCondition(isTransient)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &Client{
		resty:     client,
		chunkSize: chunkSize,
	}
}

// isTransient reports whether a request outcome is worth retrying.
func isTransient(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// Negative when unknown.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails after all retries
//   - The response status is not 200 OK
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.resty.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.Status())
	}

	return resp.Body(), nil
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for fetching text content like the
// station registry or a directory listing.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadFile streams a file to destPath with optional progress callback.
//
// The body is copied in ChunkSize pieces as it arrives; it is never buffered
// whole. destPath is created (or truncated). On failure destPath may hold a
// partial file; callers that need atomicity should download to a staging path.
//
// Returns the number of bytes written.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) (int64, error) {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return 0, err
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), resp.Status())
	}

	file, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	// ProgressWriter hides os.File.ReadFrom, so the copy goes through buf.
	writer := &ProgressWriter{
		Writer:   file,
		Total:    resp.RawResponse.ContentLength,
		OnUpdate: onProgress,
	}

	buf := make([]byte, c.chunkSize)
	if _, err := io.CopyBuffer(writer, body, buf); err != nil {
		return writer.Written, err
	}

	return writer.Written, file.Close()
}
