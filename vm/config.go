// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"time"

	"github.com/dothype/hypevm/oracle"
)

type Config struct {
	// CallTTL bounds how far a call timestamp may drift from the VM clock.
	// Seen call IDs are remembered for twice this long.
	CallTTL time.Duration `json:"callTTL" mapstructure:"call-ttl"`

	PruneLimit        int           `json:"pruneLimit" mapstructure:"prune-limit"`
	PruneInterval     time.Duration `json:"pruneInterval" mapstructure:"prune-interval"`
	FullPruneInterval time.Duration `json:"fullPruneInterval" mapstructure:"full-prune-interval"`

	CompactInterval time.Duration `json:"compactInterval" mapstructure:"compact-interval"`

	ActivityCacheSize int `json:"activityCacheSize" mapstructure:"activity-cache-size"`

	// Feed replaces the fixed genesis price with an HTTP price feed when
	// its URL is set.
	Feed oracle.FeedConfig `json:"feed" mapstructure:"feed"`
}

func (c *Config) SetDefaults() {
	c.CallTTL = 5 * time.Minute

	c.PruneLimit = 128
	c.PruneInterval = time.Minute
	c.FullPruneInterval = time.Second

	c.CompactInterval = 10 * time.Minute

	c.ActivityCacheSize = 128

	c.Feed.TTL = 30 * time.Second
	c.Feed.Timeout = oracle.DefaultTimeout
}
