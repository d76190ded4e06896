package isd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/handiism/isd-downloader/internal/model"
)

// ArchiveLink is one archive found in a year directory listing.
type ArchiveLink struct {
	// Filename is the href exactly as it appeared in the listing.
	Filename string

	// URL is Filename resolved against the listing URL.
	URL string
}

// Archives finds a station's archives in the per-year directory listings.
//
// The ISD file server publishes one directory per year
// ({baseURL}{year}/) containing an HTML index of gzip archives named
// "{usaf}-{wban}-{year}.gz".
//
// Example usage:
//
//	archives := NewArchives(client, "https://www1.ncdc.noaa.gov/pub/data/noaa/")
//
//	links, err := archives.List(ctx, station, 2000)
//	for _, link := range links {
//	    fmt.Println(link.URL)
//	}
type Archives struct {
	client  Fetcher
	baseURL string
}

// NewArchives creates an Archives lookup rooted at baseURL.
//
// A trailing slash is added to baseURL if missing.
func NewArchives(client Fetcher, baseURL string) *Archives {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Archives{
		client:  client,
		baseURL: baseURL,
	}
}

// YearURL returns the directory listing URL for year.
func (a *Archives) YearURL(year int) string {
	return a.baseURL + strconv.Itoa(year) + "/"
}

// List fetches the listing for year and returns the station's archives in
// document order.
//
// Only links whose target starts with station.ArchivePrefix(year) are
// returned; the comparison is case-sensitive.
//
// Returns an error if the listing cannot be fetched or parsed.
func (a *Archives) List(ctx context.Context, station model.StationRecord, year int) ([]ArchiveLink, error) {
	yearURL := a.YearURL(year)

	page, err := a.client.GetString(ctx, yearURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing %s: %w", yearURL, err)
	}

	hrefs, err := ParseListing(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", yearURL, err)
	}

	base, err := url.Parse(yearURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL %s: %w", yearURL, err)
	}

	var links []ArchiveLink
	for _, name := range MatchArchives(hrefs, station.ArchivePrefix(year)) {
		links = append(links, ArchiveLink{
			Filename: name,
			URL:      resolveLink(base, name),
		})
	}

	return links, nil
}

// ParseListing returns the href of every anchor in an HTML page, in document order.
//
// Anchors without an href attribute are skipped. Entity references in the
// attribute value are decoded.
func ParseListing(page string) ([]string, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(page))

	var hrefs []string
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return nil, err
			}
			return hrefs, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "href" {
					hrefs = append(hrefs, attr.Val)
					break
				}
			}
		}
	}
}

// MatchArchives keeps the hrefs that start with prefix, preserving order.
func MatchArchives(hrefs []string, prefix string) []string {
	var matches []string
	for _, href := range hrefs {
		if strings.HasPrefix(href, prefix) {
			matches = append(matches, href)
		}
	}
	return matches
}

// resolveLink turns an href into an absolute URL relative to base.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return base.String() + href
	}
	return base.ResolveReference(ref).String()
}
