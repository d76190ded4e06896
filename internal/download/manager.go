package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/handiism/isd-downloader/internal/config"
	"github.com/handiism/isd-downloader/internal/http"
	ioutils "github.com/handiism/isd-downloader/internal/io"
	"github.com/handiism/isd-downloader/internal/isd"
	"github.com/handiism/isd-downloader/internal/metrics"
	"github.com/handiism/isd-downloader/internal/model"
)

// ErrNotInitialized is returned by StartDownloads before a successful Initialize.
var ErrNotInitialized = errors.New("manager has no resolved station")

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Progress is a snapshot of a run's counters.
type Progress struct {
	YearsDone     int32
	YearsTotal    int32
	FilesDone     int32
	FilesFailed   int32
	BytesReceived int64
}

// Manager coordinates station resolution and archive downloads.
type Manager struct {
	settings   *config.Settings
	httpClient *http.Client
	registry   *isd.Registry
	archives   *isd.Archives
	archiveCfg *model.ArchiveConfig
	metrics    *metrics.Recorder

	station model.StationRecord

	// Read by the TUI while a run is in progress.
	yearsTotal    int32
	yearsDone     int32
	filesDone     int32
	filesFailed   int32
	receivedBytes int64

	onProgress func(ProgressEvent)
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	client := http.NewClient(http.Options{
		Timeout:          settings.Timeout(),
		RetryCount:       settings.MaxRetries,
		RetryWaitTime:    settings.RetryWait(),
		RetryMaxWaitTime: settings.RetryMaxWait(),
		UserAgent:        settings.UserAgent,
		ChunkSize:        settings.DownloadChunkSize,
	})

	return &Manager{
		settings:   settings,
		httpClient: client,
		registry:   isd.NewRegistry(client, settings.RegistryURL),
		archives:   isd.NewArchives(client, settings.BaseDataURL),
		archiveCfg: settings.ToArchiveConfig(),
		metrics:    metrics.NewRecorder(),
		onProgress: onProgress,
	}
}

// Initialize resolves the station and prepares the output directory.
//
// Any error returned here is fatal to the run: no listing or archive request
// is made unless Initialize succeeds. Resolution failures are *isd.ResolveError.
func (m *Manager) Initialize(ctx context.Context, query string) error {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Looking up station %q", query), Level: LevelVerbose})

	station, err := m.registry.Resolve(ctx, query)
	if err == nil {
		err = isd.RequireComplete(query, station)
	}
	if err != nil {
		m.metrics.RunFinished(false)
		return err
	}

	if err := ioutils.EnsureDir(m.archiveCfg.OutputDirectory); err != nil {
		m.metrics.RunFinished(false)
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	m.station = station
	atomic.StoreInt32(&m.yearsTotal, int32(len(station.Years())))

	m.progress(ProgressEvent{Message: fmt.Sprintf("Found station %s", station), Level: LevelInfo})
	return nil
}

// Station returns the resolved station, or the zero record before Initialize.
func (m *Manager) Station() model.StationRecord {
	return m.station
}

// StartDownloads fetches all archives of the resolved station.
func (m *Manager) StartDownloads(ctx context.Context) error {
	if !m.station.Complete() {
		return ErrNotInitialized
	}
	return m.FetchAll(ctx, m.station)
}

// FetchAll downloads and decompresses every archive of station, one year at
// a time in ascending order.
//
// Failures are isolated: a year whose listing cannot be fetched, or an archive
// that fails to download or decompress, is reported and skipped. The only
// error returned is the context's, when the run is cancelled.
func (m *Manager) FetchAll(ctx context.Context, station model.StationRecord) error {
	years := station.Years()
	atomic.StoreInt32(&m.yearsTotal, int32(len(years)))

	for _, year := range years {
		if err := ctx.Err(); err != nil {
			m.metrics.RunFinished(false)
			return err
		}

		m.downloadYear(ctx, station, year)
		atomic.AddInt32(&m.yearsDone, 1)
	}

	if err := ctx.Err(); err != nil {
		m.metrics.RunFinished(false)
		return err
	}

	m.metrics.RunFinished(true)
	return nil
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() Progress {
	return Progress{
		YearsDone:     atomic.LoadInt32(&m.yearsDone),
		YearsTotal:    atomic.LoadInt32(&m.yearsTotal),
		FilesDone:     atomic.LoadInt32(&m.filesDone),
		FilesFailed:   atomic.LoadInt32(&m.filesFailed),
		BytesReceived: atomic.LoadInt64(&m.receivedBytes),
	}
}

// WriteMetrics exports run metrics when a textfile path is configured.
func (m *Manager) WriteMetrics() error {
	if m.settings.MetricsTextfile == "" {
		return nil
	}
	return m.metrics.WriteTextfile(m.settings.MetricsTextfile)
}

func (m *Manager) downloadYear(ctx context.Context, station model.StationRecord, year int) {
	m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching listing for %d", year), Level: LevelVerbose})

	links, err := m.archives.List(ctx, station, year)
	m.metrics.ListingFetched(err)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error accessing data for year %d: %v", year, err), Level: LevelError})
		return
	}

	if len(links) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("No archives for %s in %d", station.ID, year), Level: LevelWarning})
		return
	}

	for _, link := range links {
		if ctx.Err() != nil {
			return
		}

		archive := model.NewArchiveFile(link.URL, link.Filename, m.archiveCfg)
		if err := m.processArchive(ctx, archive); err != nil {
			atomic.AddInt32(&m.filesFailed, 1)
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error processing %s: %v", archive.Filename, err), Level: LevelError})
			continue
		}
		atomic.AddInt32(&m.filesDone, 1)
	}
}

// processArchive runs one download-decompress-cleanup cycle.
//
// The archive is streamed to a staging file and renamed to CompressedPath once
// complete; GunzipFile applies the same discipline to DecompressedPath. The
// compressed file is removed only after decompression succeeds.
func (m *Manager) processArchive(ctx context.Context, archive *model.ArchiveFile) error {
	start := time.Now()

	staging := ioutils.StagingPath(archive.CompressedPath)
	var last int64
	written, err := m.httpClient.DownloadFile(ctx, archive.RemoteURL, staging, func(written, total int64) {
		atomic.AddInt64(&m.receivedBytes, written-last)
		last = written
	})
	if err == nil {
		err = ioutils.Commit(staging, archive.CompressedPath)
	}
	if err != nil {
		_ = ioutils.RemoveQuietly(staging)
		m.metrics.ArchiveFailed("download")
		return fmt.Errorf("download failed: %w", err)
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded %s", archive.CompressedPath), Level: LevelVerbose})

	decompressed, err := ioutils.GunzipFile(ctx, archive.CompressedPath, archive.DecompressedPath)
	if err != nil {
		m.metrics.ArchiveFailed("decompress")
		return err
	}

	if err := os.Remove(archive.CompressedPath); err != nil {
		m.metrics.ArchiveFailed("cleanup")
		return fmt.Errorf("failed to remove %s: %w", archive.CompressedPath, err)
	}

	m.metrics.ArchiveDone(written, decompressed, time.Since(start).Seconds())
	m.progress(ProgressEvent{Message: fmt.Sprintf("Decompressed to %s", archive.DecompressedPath), Level: LevelSuccess})
	return nil
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
