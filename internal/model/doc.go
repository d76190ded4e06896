// Package model defines the core data structures used throughout
// the isd-downloader application.
//
// # StationRecord
//
// StationRecord is the immutable result of a registry lookup:
//
//	station := model.StationRecord{ID: "725300", StartYear: model.ParseYear("2000"), EndYear: model.ParseYear("2001")}
//	station.Complete()          // true
//	station.Years()             // [2000 2001]
//	station.ArchivePrefix(2000) // "725300-99999-2000"
//
// # ArchiveFile
//
// ArchiveFile carries the remote URL and local paths of one archive:
//
//	archive := model.NewArchiveFile(fileURL, "725300-99999-2000.gz", &model.ArchiveConfig{
//	    OutputDirectory: "data",
//	})
//	fmt.Println(archive.CompressedPath)   // data/725300-99999-2000.gz
//	fmt.Println(archive.DecompressedPath) // data/725300-99999-2000
package model
