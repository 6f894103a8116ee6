// (c) 2019-2020, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	RootNodeIDKey        = "root-node-id"
	HashSeedKey          = "hash-seed"
	CacheEntryCapKey     = "cache-entry-cap"
	AssertionsEnabledKey = "assertions-enabled"
	DBPathKey            = "db-dir"
	SourceURLKey         = "source-url"
	PublishURLKey        = "publish-url"
	LogLevelKey          = "log-level"
)
