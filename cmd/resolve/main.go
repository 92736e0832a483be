// Command resolve prints the stream a reference resolves to, without
// playing it. Useful for checking yt-dlp and the resolution cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/tubeplay/internal/config"
	"github.com/llehouerou/tubeplay/internal/logging"
	"github.com/llehouerou/tubeplay/internal/resolver"
	"github.com/llehouerou/tubeplay/internal/state"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("resolve", flag.ContinueOnError)
	flags.SetOutput(stderr)
	useCache := flags.Bool("cache", false, "read and fill the resolution cache")
	verbose := flags.Bool("v", false, "log resolver details")
	timeout := flags.Duration("timeout", time.Minute, "resolution timeout")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger := logging.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}, level)

	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: resolve [-cache] [-v] [-timeout d] <reference>")
		return 2
	}
	reference := flags.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("load config")
		return 1
	}

	var res resolver.Resolver = resolver.NewAuto(
		resolver.NewYtDlp(cfg.Resolver.Command, cfg.Resolver.Format, cfg.Resolver.Args),
	)
	if *useCache && cfg.CacheEnabled() {
		stateMgr, err := state.Open()
		if err != nil {
			logger.Error().Err(err).Msg("open state")
			return 1
		}
		defer stateMgr.Close()
		res = resolver.NewCached(res, stateMgr, cfg.CacheTTL(), logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	start := time.Now()
	stream, err := res.Resolve(ctx, reference)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		logger.Error().Err(err).
			Str(logging.FieldReference, reference).
			Dur("elapsed", elapsed).
			Msg("resolution failed")
		if resolver.IsReason(err, resolver.ReasonInvalid) {
			return 2
		}
		return 1
	}

	logger.Info().
		Str(logging.FieldReference, stream.Reference).
		Str("title", stream.Title).
		Dur("elapsed", elapsed).
		Msg("resolved")
	// The URI alone goes to stdout so it can be piped into a player.
	fmt.Fprintln(stdout, stream.URI)
	return 0
}
