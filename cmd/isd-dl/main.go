package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/isd-downloader/internal/config"
	"github.com/handiism/isd-downloader/internal/download"
)

var errInterrupted = errors.New("interrupted")

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to JSON config file")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag  = flag.Bool("dry-run", false, "Resolve the station without downloading")
		retriesFlag = flag.Int("retries", 0, "Retries per request (overrides config)")
		timeoutFlag = flag.Float64("timeout", 0, "Request timeout in seconds (overrides config)")
		metricsFlag = flag.String("metrics", "", "Write Prometheus metrics to this textfile")
	)

	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Println("ISD Downloader - Download NOAA Integrated Surface Data for a station")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  isd-dl [options] <station-query> <output-dir>")
		fmt.Println()
		fmt.Println("For interactive mode, use: isd-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	query := flag.Arg(0)
	outputDir := flag.Arg(1)

	// Load config: file, then .env files and ISD_* variables, then flags
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading env files: %v\n", err)
		os.Exit(1)
	}
	if err := settings.ApplyEnv(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "retries":
			settings.MaxRetries = *retriesFlag
		case "timeout":
			settings.RequestTimeout = *timeoutFlag
		case "metrics":
			settings.MetricsTextfile = *metricsFlag
		}
	})
	settings.OutputDirectory = outputDir

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Create manager with progress callback
	manager := download.NewManager(settings, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("🌦  ISD Downloader")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	err := run(context.Background(), manager, query, *dryRunFlag)
	if mErr := manager.WriteMetrics(); mErr != nil {
		fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", mErr)
	}

	switch {
	case errors.Is(err, errInterrupted):
		fmt.Println("\nDownload cancelled.")
		os.Exit(130)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *dryRunFlag {
		return
	}

	p := manager.GetProgress()
	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Complete! %d/%d years, %d files (%d failed), %.2f MB\n",
		p.YearsDone, p.YearsTotal, p.FilesDone, p.FilesFailed, float64(p.BytesReceived)/1024/1024)
}

// run resolves the station and downloads its archives while watching for
// SIGINT/SIGTERM. An interrupt cancels the pipeline and yields errInterrupted.
func run(ctx context.Context, manager *download.Manager, query string, dryRun bool) error {
	g, gctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(gctx)
	defer stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	g.Go(func() error {
		select {
		case <-sigCh:
			fmt.Println("\nInterrupted, cancelling...")
			return errInterrupted
		case <-runCtx.Done():
			return nil
		}
	})

	g.Go(func() error {
		defer stop()

		if err := manager.Initialize(runCtx, query); err != nil {
			return err
		}

		station := manager.Station()
		fmt.Printf("   Station: %s\n", station.ID)
		fmt.Printf("   Country: %s\n", station.Country)
		fmt.Printf("   Years:   %s - %s\n", station.StartYear, station.EndYear)

		if dryRun {
			fmt.Println("\n[Dry run - not downloading]")
			return nil
		}

		fmt.Println("\n📥 Starting downloads...")
		fmt.Println()

		return manager.StartDownloads(runCtx)
	})

	return g.Wait()
}
