// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package oracle

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"
)

var ErrInvalidSpec = errors.New("oracle requires either a price or a feed url and path")

// Spec describes a PriceOracle in a form that can be stored and rebuilt. A
// non-empty Price selects a fixed rate, otherwise the feed fields apply.
type Spec struct {
	Price   []byte `serialize:"true" json:"price,omitempty"`
	URL     string `serialize:"true" json:"url,omitempty"`
	Path    string `serialize:"true" json:"path,omitempty"`
	TTL     int64  `serialize:"true" json:"ttl,omitempty"`
	Timeout int64  `serialize:"true" json:"timeout,omitempty"`
}

func FixedSpec(price *big.Int) *Spec {
	s := &Spec{}
	if price != nil && price.Sign() > 0 {
		s.Price = price.Bytes()
	}
	return s
}

func FeedSpec(cfg FeedConfig) *Spec {
	return &Spec{
		URL:     cfg.URL,
		Path:    cfg.Path,
		TTL:     int64(cfg.TTL),
		Timeout: int64(cfg.Timeout),
	}
}

func (s *Spec) Fixed() bool { return len(s.Price) > 0 }

func (s *Spec) FeedConfig() FeedConfig {
	return FeedConfig{
		URL:     s.URL,
		Path:    s.Path,
		TTL:     time.Duration(s.TTL),
		Timeout: time.Duration(s.Timeout),
	}
}

func (s *Spec) Verify() error {
	switch {
	case s == nil:
		return ErrInvalidSpec
	case s.Fixed():
		if new(big.Int).SetBytes(s.Price).Sign() <= 0 {
			return ErrInvalidRate
		}
		return nil
	case len(s.URL) == 0 || len(s.Path) == 0:
		return ErrInvalidSpec
	case s.TTL < 0 || s.Timeout < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidSpec)
	}
	return nil
}

// Build returns a fresh oracle for [s].
func (s *Spec) Build() (PriceOracle, error) {
	if err := s.Verify(); err != nil {
		return nil, err
	}
	if s.Fixed() {
		return NewFixed(new(big.Int).SetBytes(s.Price))
	}
	return NewFeed(s.FeedConfig())
}

func (s *Spec) String() string {
	if s.Fixed() {
		return "fixed:" + new(big.Int).SetBytes(s.Price).String()
	}
	return "feed:" + s.URL
}

// Close releases the resources of [o] if it holds any.
func Close(o PriceOracle) {
	if c, ok := o.(io.Closer); ok {
		_ = c.Close()
	}
}
