package isd

import (
	"bufio"
	"context"
	"strings"

	"github.com/handiism/isd-downloader/internal/model"
)

// Registry column layout of isd-history.txt, as byte offsets [start, end).
// These must match the upstream fixed-width format exactly.
const (
	colIDStart        = 0
	colIDEnd          = 6
	colCountryStart   = 43
	colCountryEnd     = 46
	colStartYearStart = 82
	colStartYearEnd   = 86
	colEndYearStart   = 90
	colEndYearEnd     = 95
)

// Fetcher retrieves remote text documents.
type Fetcher interface {
	GetString(ctx context.Context, url string) (string, error)
}

// Registry resolves station names against the ISD station history file.
//
// The registry is a fixed-width text file with one station per line.
// Registry downloads it in a single request and returns the first line that
// contains the query anywhere in its raw text.
//
// Example usage:
//
//	registry := NewRegistry(client, "https://www1.ncdc.noaa.gov/pub/data/noaa/isd-history.txt")
//
//	station, err := registry.Resolve(ctx, "CHICAGO")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(station.ID, station.StartYear, station.EndYear)
type Registry struct {
	client Fetcher
	url    string
}

// NewRegistry creates a Registry reading from url.
func NewRegistry(client Fetcher, url string) *Registry {
	return &Registry{
		client: client,
		url:    url,
	}
}

// Resolve looks up query in the registry.
//
// The match is a literal, case-sensitive substring test against each line in
// document order; the first matching line wins and later lines are not
// examined. A matched line whose year columns are blank or non-numeric is
// returned as-is with absent years; use RequireComplete to reject it.
//
// Returns a *ResolveError with:
//   - KindTransport if the registry could not be fetched
//   - KindNotFound if query is empty or no line contains it
func (r *Registry) Resolve(ctx context.Context, query string) (model.StationRecord, error) {
	if query == "" {
		return model.StationRecord{}, &ResolveError{Kind: KindNotFound, Query: query}
	}

	text, err := r.client.GetString(ctx, r.url)
	if err != nil {
		return model.StationRecord{}, &ResolveError{Kind: KindTransport, Query: query, Cause: err}
	}

	station, ok := FindStation(text, query)
	if !ok {
		return model.StationRecord{}, &ResolveError{Kind: KindNotFound, Query: query}
	}

	return station, nil
}

// FindStation scans registry text and parses the first line containing query.
func FindStation(text, query string) (model.StationRecord, bool) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), len(text)+1)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, query) {
			return ParseRegistryLine(line), true
		}
	}

	return model.StationRecord{}, false
}

// ParseRegistryLine extracts a StationRecord from one fixed-width registry line.
//
// Fields are read by position and trimmed:
//
//	ID         [0:6]
//	Country    [43:46]
//	Start year [82:86]
//	End year   [90:95]
//
// Short lines yield empty fields rather than an error.
func ParseRegistryLine(line string) model.StationRecord {
	return model.StationRecord{
		ID:        column(line, colIDStart, colIDEnd),
		Country:   column(line, colCountryStart, colCountryEnd),
		StartYear: model.ParseYear(column(line, colStartYearStart, colStartYearEnd)),
		EndYear:   model.ParseYear(column(line, colEndYearStart, colEndYearEnd)),
	}
}

// column returns line[start:end] trimmed, clamped to the line length.
func column(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[start:end])
}
