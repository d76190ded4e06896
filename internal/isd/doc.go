// Package isd provides lookup logic for the NOAA Integrated Surface Database
// (ISD) file server.
//
// # Station Registry
//
// Registry resolves a station name to a StationRecord using the fixed-width
// isd-history.txt file:
//
//	registry := isd.NewRegistry(client, registryURL)
//	station, err := registry.Resolve(ctx, "CHICAGO")
//	if err == nil {
//	    err = isd.RequireComplete("CHICAGO", station)
//	}
//
// Resolution failures are *ResolveError values that match one of
// ErrRegistryUnavailable, ErrStationNotFound or ErrIncompleteRecord:
//
//	if errors.Is(err, isd.ErrRegistryUnavailable) {
//	    fmt.Println("registry is down, try again later")
//	}
//
// # Year Listings
//
// Archives reads the per-year directory listing and returns the station's
// archives in page order:
//
//	archives := isd.NewArchives(client, baseDataURL)
//	links, err := archives.List(ctx, station, 2000)
//
// ParseListing and MatchArchives are exposed for working with pages that
// were fetched elsewhere.
package isd
