package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/reeler/internal/archive"
	"thirdcoast.systems/reeler/internal/config"
	"thirdcoast.systems/reeler/internal/extract"
	"thirdcoast.systems/reeler/internal/pipeline"
)

func TestParseArgs_AccountFirst(t *testing.T) {
	opts, err := parseArgs([]string{"nasa", "--limit", "5", "--output", "space.zip"})
	require.NoError(t, err)
	require.Equal(t, "nasa", opts.account)
	require.Equal(t, 5, opts.limit)
	require.Equal(t, "space.zip", opts.output)
}

func TestParseArgs_AccountAfterFlags(t *testing.T) {
	opts, err := parseArgs([]string{"--limit", "5", "--cookies", "c.txt", "@nasa"})
	require.NoError(t, err)
	require.Equal(t, "@nasa", opts.account)
	require.Equal(t, 5, opts.limit)
	require.Equal(t, "c.txt", opts.cookies)
}

func TestParseArgs_ConcurrencyTracksExplicitUse(t *testing.T) {
	opts, err := parseArgs([]string{"nasa"})
	require.NoError(t, err)
	require.False(t, opts.concurrencySet)

	opts, err = parseArgs([]string{"nasa", "--concurrency", "4"})
	require.NoError(t, err)
	require.True(t, opts.concurrencySet)
	require.Equal(t, 4, opts.concurrency)
}

func TestParseArgs_Rejections(t *testing.T) {
	cases := [][]string{
		{},
		{"--limit", "5"},
		{"nasa", "--limit", "0"},
		{"nasa", "--limit", "-3"},
		{"nasa", "extra"},
		{"--limit", "5", "nasa", "extra"},
	}

	for _, args := range cases {
		_, err := parseArgs(args)
		require.Error(t, err, "args %v", args)
	}
}

func TestParseArgs_ZeroLimitDefaultMeansEverything(t *testing.T) {
	opts, err := parseArgs([]string{"nasa"})
	require.NoError(t, err)
	require.Zero(t, opts.limit)
}

func TestParseArgs_Help(t *testing.T) {
	_, err := parseArgs([]string{"--help"})
	require.ErrorIs(t, err, flag.ErrHelp)
}

func TestResolveOutput(t *testing.T) {
	require.Equal(t, "nasa_videos.zip", resolveOutput("nasa", ""))
	require.Equal(t, "space.zip", resolveOutput("nasa", "space.zip"))
	require.Equal(t, "space.ZIP", resolveOutput("nasa", "space.ZIP"))
	require.Equal(t, "space.zip", resolveOutput("nasa", "space"))
	require.Equal(t, "clips.tar.zip", resolveOutput("nasa", "clips.tar"))
}

func TestExitCode(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}

	lookupErr := &pipeline.LookupError{Handle: "nasa", Err: extract.ErrRateLimited}
	require.Equal(t, exitLookup, exitCode(ctx, cfg, lookupErr))

	writeErr := &archive.WriteError{Path: "out.zip", Err: errors.New("disk full")}
	require.Equal(t, exitArchive, exitCode(ctx, cfg, writeErr))

	wrapped := fmt.Errorf("run: %w", lookupErr)
	require.Equal(t, exitLookup, exitCode(ctx, cfg, wrapped))

	require.Equal(t, exitConfig, exitCode(ctx, cfg, errors.New("anything else")))
}

func TestExitCode_Interrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Equal(t, exitInterrupted, exitCode(ctx, &config.Config{}, context.Canceled))
	// Interrupt wins even when the pipeline surfaced a different error.
	require.Equal(t, exitInterrupted, exitCode(ctx, &config.Config{}, errors.New("stage removed")))
}
