package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Year is an optional calendar year read from the station registry.
//
// The registry leaves the BEGIN/END columns blank (or fills them with
// placeholder text) for some stations, so a year may be absent. The zero
// value is an absent year.
type Year struct {
	Value int
	Valid bool
}

// ParseYear converts registry column text to a Year.
//
// Parsing is permissive: surrounding whitespace is ignored, and anything that
// is not an integer yields an absent Year instead of an error.
//
// Example:
//
//	ParseYear(" 1973") // Year{Value: 1973, Valid: true}
//	ParseYear("")      // Year{}
//	ParseYear("19x3")  // Year{}
func ParseYear(s string) Year {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Year{}
	}
	return Year{Value: v, Valid: true}
}

// String returns the year digits, or "n/a" when absent.
func (y Year) String() string {
	if !y.Valid {
		return "n/a"
	}
	return strconv.Itoa(y.Value)
}

// StationRecord identifies one station in the ISD registry.
//
// StationRecord contains:
//   - ID: the 6 character USAF identifier
//   - Country: the 3 character country code (may be blank)
//   - StartYear and EndYear: the station's active period
//
// A StationRecord is produced once by the registry parser and is never
// modified afterwards; it is passed by value into the download stage.
//
// Example:
//
//	station := StationRecord{
//	    ID:        "725300",
//	    Country:   "US",
//	    StartYear: Year{Value: 2000, Valid: true},
//	    EndYear:   Year{Value: 2001, Valid: true},
//	}
//	station.Years() // [2000 2001]
type StationRecord struct {
	// ID is the USAF station identifier (registry columns 1-6).
	ID string

	// Country is the FIPS country code (registry columns 44-46).
	Country string

	// StartYear is the first year with observations.
	StartYear Year

	// EndYear is the last year with observations.
	EndYear Year
}

// Complete reports whether the record carries everything the download stage
// needs: a non-empty identifier and both years.
func (s StationRecord) Complete() bool {
	return s.ID != "" && s.StartYear.Valid && s.EndYear.Valid
}

// Years returns the inclusive, ascending list of years the station was active.
//
// Returns nil if the record is incomplete or the range is inverted.
func (s StationRecord) Years() []int {
	if !s.Complete() || s.EndYear.Value < s.StartYear.Value {
		return nil
	}

	years := make([]int, 0, s.EndYear.Value-s.StartYear.Value+1)
	for y := s.StartYear.Value; y <= s.EndYear.Value; y++ {
		years = append(years, y)
	}
	return years
}

// ArchivePrefix returns the filename prefix of the station's archives for a year.
//
// ISD archives are named "{usaf}-{wban}-{year}.gz". Stations resolved by
// USAF identifier are looked up with the fixed WBAN placeholder 99999.
func (s StationRecord) ArchivePrefix(year int) string {
	return fmt.Sprintf("%s-99999-%d", s.ID, year)
}

// String formats the record for display.
func (s StationRecord) String() string {
	return fmt.Sprintf("%s (country %q, %s-%s)", s.ID, s.Country, s.StartYear, s.EndYear)
}
