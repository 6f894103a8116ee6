// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"

	"github.com/ava-labs/atlasgo/ids"
	"github.com/ava-labs/atlasgo/utils/logging"
)

var errNoRoot = errors.New("root-node-id is required")

// Config holds every recognized option of the processor
type Config struct {
	// RootNodeID is the designated canonical graph root; immutable for a
	// process lifetime
	RootNodeID ids.NodeID

	// HashSeed seeds the tree hasher; zero selects the fixed default so
	// hashes are reproducible across processes
	HashSeed uint64

	// CacheEntryCap bounds the transitive cache; zero means unbounded
	CacheEntryCap int

	// AssertionsEnabled runs internal consistency checks after every event
	AssertionsEnabled bool

	// DBPath locates the snapshot database; empty selects an in-memory one
	DBPath string

	// SourceURL is the socket the topology stream is pulled from
	SourceURL string

	// PublishURL is the socket canonical graphs are published on; empty
	// logs emits instead
	PublishURL string

	// LogLevel is the display verbosity
	LogLevel logging.Level
}

// Build validates raw option strings into a Config
func Build(
	rootNodeID string,
	hashSeed uint64,
	cacheEntryCap int,
	assertionsEnabled bool,
	dbPath string,
	sourceURL string,
	publishURL string,
	logLevel string,
) (Config, error) {
	if rootNodeID == "" {
		return Config{}, errNoRoot
	}
	root, err := ids.NodeIDFromString(rootNodeID)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't parse %s: %w", RootNodeIDKey, err)
	}
	level, err := logging.ToLevel(logLevel)
	if err != nil {
		return Config{}, fmt.Errorf("couldn't parse %s: %w", LogLevelKey, err)
	}
	if cacheEntryCap < 0 {
		return Config{}, fmt.Errorf("%s must be >= 0", CacheEntryCapKey)
	}
	return Config{
		RootNodeID:        root,
		HashSeed:          hashSeed,
		CacheEntryCap:     cacheEntryCap,
		AssertionsEnabled: assertionsEnabled,
		DBPath:            dbPath,
		SourceURL:         sourceURL,
		PublishURL:        publishURL,
		LogLevel:          level,
	}, nil
}
