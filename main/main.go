// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ava-labs/atlasgo/config"
	"github.com/ava-labs/atlasgo/database"
	"github.com/ava-labs/atlasgo/database/leveldb"
	"github.com/ava-labs/atlasgo/database/memdb"
	"github.com/ava-labs/atlasgo/engine"
	"github.com/ava-labs/atlasgo/graph/canonical"
	sinksocket "github.com/ava-labs/atlasgo/sink/socket"
	"github.com/ava-labs/atlasgo/snapshot"
	sourcesocket "github.com/ava-labs/atlasgo/source/socket"
	"github.com/ava-labs/atlasgo/utils/logging"
	"github.com/ava-labs/atlasgo/version"
)

func main() {
	var (
		rootNodeID        string
		hashSeed          uint64
		cacheEntryCap     int
		assertionsEnabled bool
		dbPath            string
		sourceURL         string
		publishURL        string
		logLevel          string
	)

	cmd := &cobra.Command{
		Use:     "atlasgo",
		Short:   "Atlas topology processor",
		Version: version.Current.String(),
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.Build(
				rootNodeID,
				hashSeed,
				cacheEntryCap,
				assertionsEnabled,
				dbPath,
				sourceURL,
				publishURL,
				logLevel,
			)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&rootNodeID, config.RootNodeIDKey, "", "designated canonical graph root")
	flags.Uint64Var(&hashSeed, config.HashSeedKey, 0, "tree hasher seed; 0 selects the fixed default")
	flags.IntVar(&cacheEntryCap, config.CacheEntryCapKey, 0, "transitive cache bound; 0 means unbounded")
	flags.BoolVar(&assertionsEnabled, config.AssertionsEnabledKey, false, "check internal invariants after every event")
	flags.StringVar(&dbPath, config.DBPathKey, "", "snapshot database directory; empty keeps snapshots in memory")
	flags.StringVar(&sourceURL, config.SourceURLKey, "ipc:///tmp/atlas-events.sock", "socket the topology stream is pulled from")
	flags.StringVar(&publishURL, config.PublishURLKey, "", "socket canonical graphs are published on; empty logs emits")
	flags.StringVar(&logLevel, config.LogLevelKey, "info", "log verbosity: fatal, error, warn, info, debug, verbo")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log := logging.NewLogger("atlas", cfg.LogLevel)
	defer log.Stop()
	log.Info("%s starting with root %s", version.Current, cfg.RootNodeID)

	var (
		db  database.Database
		err error
	)
	if cfg.DBPath == "" {
		db = memdb.New()
	} else if db, err = leveldb.New(cfg.DBPath); err != nil {
		return fmt.Errorf("couldn't open snapshot database: %w", err)
	}
	defer func() { _ = db.Close() }()

	source, err := sourcesocket.New(log, cfg.SourceURL)
	if err != nil {
		return fmt.Errorf("couldn't open source socket: %w", err)
	}
	defer func() { _ = source.Close() }()

	var sink engine.Sink = &logSink{log: log}
	if cfg.PublishURL != "" {
		s, err := sinksocket.NewSink(log, cfg.PublishURL)
		if err != nil {
			return fmt.Errorf("couldn't open publish socket: %w", err)
		}
		defer func() { _ = s.Close() }()
		sink = s
	}

	eng, err := engine.New(
		engine.Config{
			RootNodeID:        cfg.RootNodeID,
			HashSeed:          cfg.HashSeed,
			CacheEntryCap:     cfg.CacheEntryCap,
			AssertionsEnabled: cfg.AssertionsEnabled,
			Namespace:         "atlas",
		},
		log,
		prometheus.NewRegistry(),
		source,
		sink,
		nil,
	)
	if err != nil {
		return err
	}

	store := snapshot.New(db)
	state, lastHash, hasLastHash, cursor, found, err := store.Load()
	if err != nil {
		return fmt.Errorf("couldn't load snapshot: %w", err)
	}
	if found {
		eng.Restore(state, lastHash, hasLastHash, cursor)
		log.Info("resuming from snapshot at cursor %q", cursor)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		log.Info("shutdown signalled")
		cancel()
	}()

	dispatchErr := eng.Dispatch(ctx)
	if dispatchErr != nil && !errors.Is(dispatchErr, context.Canceled) {
		log.Error("dispatch halted: %s", dispatchErr)
	}

	state, lastHash, hasLastHash, cursor = eng.Snapshot()
	if err := store.Save(state, lastHash, hasLastHash, cursor); err != nil {
		return fmt.Errorf("couldn't save snapshot: %w", err)
	}
	log.Info("snapshot saved at cursor %q", cursor)

	if errors.Is(dispatchErr, context.Canceled) {
		return nil
	}
	return dispatchErr
}

// logSink is the emit target when no publish socket is configured
type logSink struct {
	log logging.Logger
}

func (s *logSink) Emit(_ context.Context, g *canonical.Graph) error {
	s.log.Info("canonical graph changed: root %s, %d nodes", g.Root, g.Flat.Len())
	return nil
}
