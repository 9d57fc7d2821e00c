// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package oracle

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/allegro/bigcache/v3"
	log "github.com/inconshreveable/log15"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"
)

const (
	decimals = 18
	cacheKey = "price"

	// DefaultTimeout bounds a feed request when the config leaves it unset.
	DefaultTimeout = 5 * time.Second
)

var (
	ErrFeedStatus  = errors.New("price feed returned an error status")
	ErrFeedMissing = errors.New("price feed response is missing the price")
)

type FeedConfig struct {
	// URL returns a JSON document holding the USD price of one native token.
	URL string `json:"url" mapstructure:"url"`
	// Path is the gjson path of the price inside the document, e.g.
	// "data.hype.usd".
	Path string `json:"path" mapstructure:"path"`
	// TTL is how long a fetched price is reused. Zero fetches on every call.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`
	// Timeout bounds a single request to URL.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

var _ PriceOracle = &Feed{}

// Feed reads the exchange rate from an HTTP price endpoint.
type Feed struct {
	cli   *gentleman.Client
	path  string
	ttl   time.Duration
	cache *bigcache.BigCache
}

func NewFeed(cfg FeedConfig) (*Feed, error) {
	if len(cfg.URL) == 0 || len(cfg.Path) == 0 {
		return nil, fmt.Errorf("price feed requires url and path")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cli := gentleman.New().URL(cfg.URL)
	cli.Use(timeout.Request(cfg.Timeout))
	f := &Feed{
		cli:  cli,
		path: cfg.Path,
		ttl:  cfg.TTL,
	}
	if cfg.TTL > 0 {
		c, err := bigcache.New(context.Background(), bigcache.DefaultConfig(cfg.TTL))
		if err != nil {
			return nil, err
		}
		f.cache = c
	}
	return f, nil
}

func (f *Feed) USDToHype(ctx context.Context, usd *big.Int) (*big.Int, error) {
	price, err := f.Price(ctx)
	if err != nil {
		return nil, err
	}
	return Convert(usd, price)
}

// Close stops the price cache.
func (f *Feed) Close() error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Close()
}

// Price returns the USD value of one native token in 18-decimal fixed point.
func (f *Feed) Price(ctx context.Context) (*big.Int, error) {
	if p, ok := f.cached(); ok {
		return p, nil
	}
	p, err := f.fetch(ctx)
	if err != nil {
		return nil, err
	}
	f.store(p)
	return p, nil
}

func (f *Feed) fetch(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := f.cli.Request()
	req.Method("GET")
	req.Context.Request = req.Context.Request.WithContext(ctx)
	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	if !resp.Ok {
		return nil, fmt.Errorf("%w: %d", ErrFeedStatus, resp.StatusCode)
	}
	return ParsePrice(resp.Bytes(), f.path)
}

// ParsePrice extracts the decimal price at [path] in [body].
func ParsePrice(body []byte, path string) (*big.Int, error) {
	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrFeedMissing, path)
	}
	d, err := decimal.NewFromString(res.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, err)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRate, d)
	}
	p := d.Shift(decimals).BigInt()
	if p.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRate, d)
	}
	return p, nil
}

// cached entries are [unix nanos][price bytes]; the timestamp is checked here
// because bigcache only evicts on its cleanup window.
func (f *Feed) cached() (*big.Int, bool) {
	if f.cache == nil {
		return nil, false
	}
	b, err := f.cache.Get(cacheKey)
	if err != nil || len(b) < 8 {
		return nil, false
	}
	fetched := time.Unix(0, int64(binary.BigEndian.Uint64(b[:8])))
	if time.Since(fetched) > f.ttl {
		return nil, false
	}
	return new(big.Int).SetBytes(b[8:]), true
}

func (f *Feed) store(p *big.Int) {
	if f.cache == nil {
		return
	}
	b := make([]byte, 8, 8+len(p.Bytes()))
	binary.BigEndian.PutUint64(b, uint64(time.Now().UnixNano()))
	b = append(b, p.Bytes()...)
	if err := f.cache.Set(cacheKey, b); err != nil {
		log.Warn("failed to cache price", "err", err)
	}
}
