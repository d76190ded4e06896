package model

import (
	"path/filepath"
	"testing"
)

func TestParseYear(t *testing.T) {
	tests := []struct {
		input string
		want  Year
	}{
		{"2000", Year{Value: 2000, Valid: true}},
		{" 1973 ", Year{Value: 1973, Valid: true}},
		{"", Year{}},
		{"    ", Year{}},
		{"19x3", Year{}},
		{"NA", Year{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseYear(tt.input); got != tt.want {
				t.Errorf("ParseYear(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestStationRecord_Complete(t *testing.T) {
	tests := []struct {
		name    string
		station StationRecord
		want    bool
	}{
		{"complete", StationRecord{ID: "725300", StartYear: ParseYear("2000"), EndYear: ParseYear("2001")}, true},
		{"missing id", StationRecord{StartYear: ParseYear("2000"), EndYear: ParseYear("2001")}, false},
		{"missing start", StationRecord{ID: "725300", EndYear: ParseYear("2001")}, false},
		{"missing end", StationRecord{ID: "725300", StartYear: ParseYear("2000")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.station.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStationRecord_Years(t *testing.T) {
	station := StationRecord{ID: "725300", StartYear: ParseYear("1999"), EndYear: ParseYear("2002")}

	years := station.Years()
	want := []int{1999, 2000, 2001, 2002}
	if len(years) != len(want) {
		t.Fatalf("Years() = %v, want %v", years, want)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Errorf("Years()[%d] = %d, want %d", i, years[i], want[i])
		}
	}

	inverted := StationRecord{ID: "725300", StartYear: ParseYear("2002"), EndYear: ParseYear("2001")}
	if got := inverted.Years(); got != nil {
		t.Errorf("Years() on inverted range = %v, want nil", got)
	}

	if got := (StationRecord{ID: "725300"}).Years(); got != nil {
		t.Errorf("Years() on incomplete record = %v, want nil", got)
	}
}

func TestStationRecord_ArchivePrefix(t *testing.T) {
	station := StationRecord{ID: "725300"}
	if got := station.ArchivePrefix(2000); got != "725300-99999-2000" {
		t.Errorf("ArchivePrefix(2000) = %q, want %q", got, "725300-99999-2000")
	}
}

func TestNewArchiveFile(t *testing.T) {
	tests := []struct {
		name             string
		filename         string
		ext              string
		wantCompressed   string
		wantDecompressed string
	}{
		{"strip gz", "725300-99999-2000.gz", "", "725300-99999-2000.gz", "725300-99999-2000"},
		{"txt extension", "725300-99999-2000.gz", ".txt", "725300-99999-2000.gz", "725300-99999-2000.txt"},
		{"no gz suffix", "725300-99999-2000", "", "725300-99999-2000", "725300-99999-2000.txt"},
		{"link with path", "sub/725300-99999-2000.gz", "", "725300-99999-2000.gz", "725300-99999-2000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &ArchiveConfig{OutputDirectory: "/data", DecompressedExtension: tt.ext}
			archive := NewArchiveFile("https://example.com/"+tt.filename, tt.filename, cfg)

			if want := filepath.Join("/data", tt.wantCompressed); archive.CompressedPath != want {
				t.Errorf("CompressedPath = %q, want %q", archive.CompressedPath, want)
			}
			if want := filepath.Join("/data", tt.wantDecompressed); archive.DecompressedPath != want {
				t.Errorf("DecompressedPath = %q, want %q", archive.DecompressedPath, want)
			}
			if archive.Filename != tt.filename {
				t.Errorf("Filename = %q, want %q", archive.Filename, tt.filename)
			}
		})
	}
}
