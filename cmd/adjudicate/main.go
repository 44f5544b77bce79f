// Command adjudicate plays scenario files through the adjudicator and
// prints each phase's results.
//
// Usage:
//
//	adjudicate [-json] [-strict] [-max-steps N] [-debug] scenario.yaml...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/dipjudge/internal/config"
	"github.com/freeeve/dipjudge/internal/logger"
	"github.com/freeeve/dipjudge/internal/scenario"
)

func main() {
	cfg := config.Load()

	jsonOut := flag.Bool("json", cfg.Output == "json", "print results as JSON")
	strict := flag.Bool("strict", cfg.StrictAdjustments, "reject adjustment orders instead of applying civil disorder")
	maxSteps := flag.Int("max-steps", cfg.MaxSteps, "resolver step cap per movement phase")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] scenario.yaml...\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	logger.Init(logger.Options{Level: level, File: cfg.LogFile, Dev: cfg.Dev})

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	opts := scenario.Options{MaxSteps: *maxSteps, Strict: *strict}
	failed := false
	for _, path := range flag.Args() {
		if err := runFile(ctx, path, opts, *jsonOut); err != nil {
			log.Error().Err(err).Str("file", path).Msg("Scenario failed")
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func runFile(ctx context.Context, path string, opts scenario.Options, jsonOut bool) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	log.Debug().Str("file", path).Str("name", sc.Name).Int("phases", len(sc.Phases)).Msg("Scenario loaded")

	report, runErr := scenario.Run(ctx, sc, opts)
	if report == nil {
		return runErr
	}
	// A failed expectation still prints the board it was checked against.
	if runErr != nil && !errors.Is(runErr, scenario.ErrExpectationFailed) {
		return runErr
	}

	if jsonOut {
		err = scenario.WriteJSON(os.Stdout, report)
	} else {
		err = scenario.WriteText(os.Stdout, report)
	}
	if err != nil {
		return err
	}
	return runErr
}
