package isd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/handiism/isd-downloader/internal/model"
)

// registryLine lays out a line in isd-history.txt column format.
func registryLine(usaf, wban, name, country, begin, end string) string {
	return fmt.Sprintf("%-6s %-5s %-29s %-4s %-2s %-5s %-7s %-8s %-7s %-8s %-8s",
		usaf, wban, name, country, "", "", "", "", "", begin, end)
}

const registryHeader = "USAF   WBAN  STATION NAME                  CTRY ST CALL  LAT      LON      ELEV(M) BEGIN    END"

// stubFetcher serves canned documents keyed by URL.
type stubFetcher struct {
	pages    map[string]string
	err      error
	requests []string
}

func (s *stubFetcher) GetString(ctx context.Context, url string) (string, error) {
	s.requests = append(s.requests, url)
	if s.err != nil {
		return "", s.err
	}
	page, ok := s.pages[url]
	if !ok {
		return "", fmt.Errorf("HTTP 404: 404 Not Found")
	}
	return page, nil
}

func TestRegistryLineLayout(t *testing.T) {
	line := registryLine("725300", "94846", "CHICAGO OHARE INTL AP", "US", "20000101", "20011231")

	require.GreaterOrEqual(t, len(line), 99)
	assert.Equal(t, "725300", line[0:6])
	assert.Equal(t, "US ", line[43:46])
	assert.Equal(t, "2000", line[82:86])
	assert.Equal(t, " 2001", line[90:95])
}

func TestParseRegistryLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.StationRecord
	}{
		{
			name: "full line",
			line: registryLine("725300", "94846", "CHICAGO OHARE INTL AP", "US", "20000101", "20011231"),
			want: model.StationRecord{
				ID:        "725300",
				Country:   "US",
				StartYear: model.Year{Value: 2000, Valid: true},
				EndYear:   model.Year{Value: 2001, Valid: true},
			},
		},
		{
			name: "non-numeric end year",
			line: registryLine("725300", "94846", "CHICAGO", "US", "20000101", "ABCDEFGH"),
			want: model.StationRecord{
				ID:        "725300",
				Country:   "US",
				StartYear: model.Year{Value: 2000, Valid: true},
			},
		},
		{
			name: "blank years",
			line: registryLine("010010", "99999", "JAN MAYEN", "NO", "", ""),
			want: model.StationRecord{ID: "010010", Country: "NO"},
		},
		{
			name: "short line",
			line: "725300 94846 CHICAGO",
			want: model.StationRecord{ID: "725300"},
		},
		{
			name: "empty line",
			line: "",
			want: model.StationRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRegistryLine(tt.line))
		})
	}
}

func TestFindStation_FirstMatchWins(t *testing.T) {
	text := strings.Join([]string{
		registryHeader,
		registryLine("010010", "99999", "JAN MAYEN", "NO", "19310101", "20240101"),
		registryLine("725300", "94846", "CHICAGO OHARE INTL AP", "US", "20000101", "20011231"),
		registryLine("725340", "14819", "CHICAGO MIDWAY INTL ARPT", "US", "19730101", "20240101"),
	}, "\r\n")

	station, ok := FindStation(text, "CHICAGO")
	require.True(t, ok)
	assert.Equal(t, "725300", station.ID)
	assert.Equal(t, 2000, station.StartYear.Value)
	assert.Equal(t, 2001, station.EndYear.Value)
}

func TestFindStation_MatchesAnywhereInLine(t *testing.T) {
	text := registryLine("725300", "94846", "CHICAGO OHARE INTL AP", "US", "20000101", "20011231")

	station, ok := FindStation(text, "94846")
	require.True(t, ok)
	assert.Equal(t, "725300", station.ID)
}

func TestFindStation_CaseSensitive(t *testing.T) {
	text := registryLine("725300", "94846", "CHICAGO OHARE INTL AP", "US", "20000101", "20011231")

	_, ok := FindStation(text, "chicago")
	assert.False(t, ok)
}

func TestFindStation_NoMatch(t *testing.T) {
	_, ok := FindStation(registryHeader, "ATLANTIS")
	assert.False(t, ok)
}

func TestRegistry_Resolve(t *testing.T) {
	const url = "http://registry/isd-history.txt"
	text := strings.Join([]string{
		registryHeader,
		registryLine("725300", "94846", "CHICAGO OHARE INTL AP", "US", "20000101", "20011231"),
		registryLine("999999", "99999", "BROKEN", "US", "20000101", "NODATA"),
	}, "\n")

	tests := []struct {
		name     string
		fetcher  *stubFetcher
		query    string
		wantID   string
		wantErr  error
		wantKind Kind
	}{
		{
			name:    "found",
			fetcher: &stubFetcher{pages: map[string]string{url: text}},
			query:   "CHICAGO",
			wantID:  "725300",
		},
		{
			name:    "incomplete record still resolves",
			fetcher: &stubFetcher{pages: map[string]string{url: text}},
			query:   "BROKEN",
			wantID:  "999999",
		},
		{
			name:     "not found",
			fetcher:  &stubFetcher{pages: map[string]string{url: text}},
			query:    "ATLANTIS",
			wantErr:  ErrStationNotFound,
			wantKind: KindNotFound,
		},
		{
			name:     "empty query",
			fetcher:  &stubFetcher{pages: map[string]string{url: text}},
			query:    "",
			wantErr:  ErrStationNotFound,
			wantKind: KindNotFound,
		},
		{
			name:     "transport failure",
			fetcher:  &stubFetcher{err: errors.New("connection refused")},
			query:    "CHICAGO",
			wantErr:  ErrRegistryUnavailable,
			wantKind: KindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry(tt.fetcher, url)
			station, err := registry.Resolve(context.Background(), tt.query)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "station not found or has invalid year data")

				var rerr *ResolveError
				require.ErrorAs(t, err, &rerr)
				assert.Equal(t, tt.wantKind, rerr.Kind)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, station.ID)
		})
	}
}

func TestRegistry_ResolveFetchesOnce(t *testing.T) {
	const url = "http://registry/isd-history.txt"
	fetcher := &stubFetcher{pages: map[string]string{url: registryHeader}}

	_, _ = NewRegistry(fetcher, url).Resolve(context.Background(), "CHICAGO")
	assert.Equal(t, []string{url}, fetcher.requests)
}

func TestResolveError_TransportUnwrapsCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &ResolveError{Kind: KindTransport, Query: "X", Cause: cause}

	assert.ErrorIs(t, err, ErrRegistryUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrStationNotFound)
}

func TestRequireComplete(t *testing.T) {
	complete := model.StationRecord{ID: "725300", StartYear: model.ParseYear("2000"), EndYear: model.ParseYear("2001")}
	assert.NoError(t, RequireComplete("CHICAGO", complete))

	missingEnd := model.StationRecord{ID: "725300", StartYear: model.ParseYear("2000")}
	err := RequireComplete("CHICAGO", missingEnd)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteRecord)
	assert.Contains(t, err.Error(), "725300")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "incomplete_record", KindIncompleteRecord.String())
}

func TestParseListing(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "apache index",
			html: `<html><body><pre>
<a href="?C=N;O=D">Name</a>
<a href="/pub/data/noaa/">Parent Directory</a>
<a href="725300-94846-2000.gz">725300-94846-2000.gz</a>
<a href="725300-99999-2000.gz">725300-99999-2000.gz</a>
</pre></body></html>`,
			want: []string{"?C=N;O=D", "/pub/data/noaa/", "725300-94846-2000.gz", "725300-99999-2000.gz"},
		},
		{
			name: "anchor without href",
			html: `<a name="top">top</a><A HREF="x.gz">x</A>`,
			want: []string{"x.gz"},
		},
		{
			name: "entity decoded",
			html: `<a href="a&amp;b.gz">a</a>`,
			want: []string{"a&b.gz"},
		},
		{
			name: "no anchors",
			html: `<html><body>empty</body></html>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListing(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchArchives(t *testing.T) {
	hrefs := []string{
		"725300-99999-2001.gz",
		"725300-94846-2000.gz",
		"725300-99999-2000.gz",
		"725300-99999-2000-extra.gz",
		"x725300-99999-2000.gz",
		"725300-99999-200.gz",
	}

	got := MatchArchives(hrefs, "725300-99999-2000")
	assert.Equal(t, []string{"725300-99999-2000.gz", "725300-99999-2000-extra.gz"}, got)
	assert.Empty(t, MatchArchives(hrefs, "725301-99999-2000"))
}

func TestArchives_List(t *testing.T) {
	station := model.StationRecord{ID: "725300", StartYear: model.ParseYear("2000"), EndYear: model.ParseYear("2001")}
	fetcher := &stubFetcher{pages: map[string]string{
		"http://data/noaa/2000/": `<a href="725300-99999-2000.gz">a</a><a href="725340-99999-2000.gz">b</a>`,
	}}

	archives := NewArchives(fetcher, "http://data/noaa")
	assert.Equal(t, "http://data/noaa/2000/", archives.YearURL(2000))

	links, err := archives.List(context.Background(), station, 2000)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "725300-99999-2000.gz", links[0].Filename)
	assert.Equal(t, "http://data/noaa/2000/725300-99999-2000.gz", links[0].URL)
}

func TestArchives_ListFetchError(t *testing.T) {
	station := model.StationRecord{ID: "725300"}
	archives := NewArchives(&stubFetcher{pages: map[string]string{}}, "http://data/noaa/")

	_, err := archives.List(context.Background(), station, 1999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://data/noaa/1999/")
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) GetString(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func TestArchives_ListRequestsYearDirectoryOnce(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("GetString", mock.Anything, "http://data/noaa/2000/").
		Return(`<a href="725300-99999-2000.gz">725300-99999-2000.gz</a>`, nil).
		Once()

	station := model.StationRecord{ID: "725300", StartYear: model.ParseYear("2000"), EndYear: model.ParseYear("2000")}
	links, err := NewArchives(fetcher, "http://data/noaa").List(context.Background(), station, 2000)

	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "http://data/noaa/2000/725300-99999-2000.gz", links[0].URL)
	fetcher.AssertExpectations(t)
	fetcher.AssertNumberOfCalls(t, "GetString", 1)
}

func TestRegistry_ResolveTransportViaMock(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("GetString", mock.Anything, "http://registry").Return("", errors.New("timeout")).Once()

	_, err := NewRegistry(fetcher, "http://registry").Resolve(context.Background(), "CHICAGO")

	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, KindTransport, rerr.Kind)
	fetcher.AssertExpectations(t)
}
