package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"thirdcoast.systems/reeler/internal/account"
	"thirdcoast.systems/reeler/internal/archive"
	"thirdcoast.systems/reeler/internal/config"
	"thirdcoast.systems/reeler/internal/extract"
	"thirdcoast.systems/reeler/internal/pipeline"
	"thirdcoast.systems/reeler/pkg/utils/format"
	"thirdcoast.systems/reeler/pkg/ytdlp"
)

const (
	exitOK          = 0
	exitConfig      = 1
	exitLookup      = 2
	exitArchive     = 3
	exitInterrupted = 130
)

type options struct {
	account        string
	limit          int
	output         string
	quality        string
	cookies        string
	concurrency    int
	concurrencySet bool
	verbose        bool
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("reeler", flag.ContinueOnError)
	fs.IntVar(&opts.limit, "limit", 0, "Max videos to archive (0 means the whole timeline)")
	fs.StringVar(&opts.output, "output", "", "Archive path (defaults to <account>_videos.zip)")
	fs.StringVar(&opts.quality, "quality", "", "Quality preset 'best' or a raw yt-dlp format selector")
	fs.StringVar(&opts.cookies, "cookies", "", "Netscape cookies file for authenticated timelines")
	fs.IntVar(&opts.concurrency, "concurrency", 0, "Parallel downloads (1-8)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log yt-dlp output and debug details")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: reeler [flags] <account>\n\n")
		fmt.Fprintf(out, "Download every video of an X account timeline into a zip archive.\n")
		fmt.Fprintf(out, "The account may be a handle (nasa, @nasa) or a profile URL.\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nEnvironment:\n")
		fmt.Fprintf(out, "  REELER_QUALITY, REELER_CONCURRENCY, REELER_COOKIES, REELER_YTDLP_PATH,\n")
		fmt.Fprintf(out, "  REELER_MAX_FILESIZE, REELER_EXTRA_ARGS\n")
	}

	// The account may come before or after the flags.
	rest := args
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		opts.account = rest[0]
		rest = rest[1:]
	}
	if err := fs.Parse(rest); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		if opts.account != "" {
			return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
		}
		opts.account = fs.Arg(0)
	default:
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if opts.account == "" {
		fs.Usage()
		return nil, errors.New("missing account")
	}

	limitSet := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "limit":
			limitSet = true
		case "concurrency":
			opts.concurrencySet = true
		}
	})
	if limitSet && opts.limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	return opts, nil
}

// resolveOutput derives the archive path from the handle when none is given
// and makes sure it carries the zip extension either way.
func resolveOutput(handle string, output string) string {
	if output == "" {
		output = handle + "_videos.zip"
	}
	if !strings.HasSuffix(strings.ToLower(output), ".zip") {
		output += ".zip"
	}
	return output
}

func run(opts *options) int {
	if opts.verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitConfig
	}

	handle, err := account.Parse(opts.account)
	if err != nil {
		slog.Error("invalid account", "input", opts.account, "error", err)
		return exitConfig
	}

	cfg.Account = handle
	cfg.Limit = opts.limit
	cfg.Verbose = opts.verbose
	cfg.Output = resolveOutput(handle, opts.output)
	if opts.quality != "" {
		cfg.Quality = opts.quality
	}
	if opts.cookies != "" {
		cfg.CookiesPath = opts.cookies
	}
	if opts.concurrencySet {
		cfg.Concurrency = opts.concurrency
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return exitConfig
	}

	if cfg.CookiesPath != "" {
		if _, err := os.Stat(cfg.CookiesPath); err != nil {
			slog.Warn("cookies file not found, continuing without authentication", "path", cfg.CookiesPath)
			cfg.CookiesPath = ""
		}
	}

	client := &ytdlp.Client{
		Path:        cfg.YTDLPPath,
		CookiesPath: cfg.CookiesPath,
	}
	if cfg.ExtraArgs != "" {
		client.ExtraArgs = strings.Fields(cfg.ExtraArgs)
	}
	if opts.verbose {
		client.LogFunc = func(stream string, line string) {
			slog.Debug("yt-dlp", "stream", stream, "line", line)
		}
	}

	version, err := client.Version(ctx)
	if err != nil {
		slog.Error("yt-dlp is not available, install it and retry", "error", err)
		return exitConfig
	}
	slog.Debug("using yt-dlp", "version", version)

	summary, err := pipeline.Run(ctx, cfg, extract.NewService(client, cfg.Quality, cfg.MaxFilesize))
	if summary != nil {
		for _, failure := range summary.Failures {
			slog.Warn("video skipped", "video_id", failure.Item.ID, "error", failure.Err)
		}
	}
	if err != nil {
		return exitCode(ctx, cfg, err)
	}

	if len(summary.Failures) > 0 {
		fmt.Printf("Archived %d of %s from @%s into %s (%s) in %s; %d failed\n",
			summary.Archived, format.Count(summary.Listed, "video"), summary.Handle,
			summary.ArchivePath, humanize.Bytes(uint64(summary.ArchiveBytes)),
			format.Elapsed(summary.Elapsed), len(summary.Failures))
	} else {
		fmt.Printf("Archived %s from @%s into %s (%s) in %s\n",
			format.Count(summary.Archived, "video"), summary.Handle, summary.ArchivePath,
			humanize.Bytes(uint64(summary.ArchiveBytes)), format.Elapsed(summary.Elapsed))
	}

	return exitOK
}

func exitCode(ctx context.Context, cfg *config.Config, err error) int {
	var lookupErr *pipeline.LookupError
	var writeErr *archive.WriteError

	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		slog.Error("interrupted", "error", err)
		return exitInterrupted
	case errors.As(err, &lookupErr):
		slog.Error("could not archive account videos", "account", lookupErr.Handle, "error", lookupErr.Err)
		if errors.Is(err, extract.ErrAccountUnavailable) && cfg.CookiesPath == "" {
			slog.Info("private or protected accounts need --cookies")
		}
		return exitLookup
	case errors.As(err, &writeErr):
		slog.Error("could not write archive", "path", writeErr.Path, "error", writeErr.Err)
		return exitArchive
	default:
		slog.Error("run failed", "error", err)
		return exitConfig
	}
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "reeler: %v\n", err)
		os.Exit(exitConfig)
	}

	os.Exit(run(opts))
}
