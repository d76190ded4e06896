package isd

import (
	"errors"
	"fmt"

	"github.com/handiism/isd-downloader/internal/model"
)

// Sentinel errors for station resolution. A *ResolveError matches exactly one
// of them with errors.Is.
var (
	// ErrRegistryUnavailable means the registry could not be fetched.
	ErrRegistryUnavailable = errors.New("station registry unavailable")

	// ErrStationNotFound means no registry line contains the query.
	ErrStationNotFound = errors.New("no registry line matches the query")

	// ErrIncompleteRecord means the matched line lacks an identifier or a year.
	ErrIncompleteRecord = errors.New("station record is missing its identifier or year range")
)

// Kind classifies a resolution failure.
type Kind int

const (
	// KindNotFound: the registry was read but nothing matched.
	KindNotFound Kind = iota

	// KindTransport: the registry could not be fetched.
	KindTransport

	// KindIncompleteRecord: a line matched but cannot drive a download.
	KindIncompleteRecord
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindIncompleteRecord:
		return "incomplete_record"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrRegistryUnavailable
	case KindIncompleteRecord:
		return ErrIncompleteRecord
	default:
		return ErrStationNotFound
	}
}

// ResolveError reports why a station query could not be turned into a
// downloadable StationRecord.
//
// Every ResolveError is fatal to a run. The message always starts with
// "station not found or has invalid year data" and then names the cause:
//
//	var rerr *isd.ResolveError
//	if errors.As(err, &rerr) && rerr.Kind == isd.KindTransport {
//	    // network problem, worth trying again later
//	}
type ResolveError struct {
	// Kind is the failure class.
	Kind Kind

	// Query is the station name that was searched for.
	Query string

	// Station holds the partially parsed record for KindIncompleteRecord.
	Station model.StationRecord

	// Cause is the underlying transport error for KindTransport.
	Cause error
}

// Error implements error.
func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("station not found or has invalid year data: %q: %v", e.Query, e.Kind.sentinel())
	if e.Kind == KindIncompleteRecord {
		msg += fmt.Sprintf(" (%s)", e.Station)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is matches the sentinel for e.Kind.
func (e *ResolveError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Unwrap returns the underlying cause, if any.
func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// RequireComplete returns a KindIncompleteRecord error unless station can
// drive a download.
func RequireComplete(query string, station model.StationRecord) error {
	if station.Complete() {
		return nil
	}
	return &ResolveError{Kind: KindIncompleteRecord, Query: query, Station: station}
}
