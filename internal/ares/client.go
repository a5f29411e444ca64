// Package ares talks to the ARES public business registry. The client
// throttles outbound requests, retries transient failures with exponential
// backoff, persists every payload in a sqlite cache and memoizes decoded
// payloads in process (the resolver intentionally revisits shared parents).
package ares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog"
)

// ClientConfig carries the network knobs of the registry client.
type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	MinDelay    time.Duration
	MemoSize    int
}

// DefaultClientConfig returns the production defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:     "https://ares.gov.cz/ekonomicke-subjekty-v-be/rest",
		Timeout:     20 * time.Second,
		MaxRetries:  4,
		BackoffBase: 700 * time.Millisecond,
		BackoffCap:  6 * time.Second,
		MinDelay:    250 * time.Millisecond,
		MemoSize:    512,
	}
}

// Client fetches per-entity registry payloads with a persistent cache.
type Client struct {
	http  *http.Client
	cache *CacheStore
	memo  gcache.Cache
	cfg   ClientConfig
	log   zerolog.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient builds a registry client over the given cache store.
func NewClient(cache *CacheStore, cfg ClientConfig, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultClientConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultClientConfig().BackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = DefaultClientConfig().BackoffCap
	}
	if cfg.MemoSize <= 0 {
		cfg.MemoSize = DefaultClientConfig().MemoSize
	}
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache: cache,
		memo:  gcache.New(cfg.MemoSize).LRU().Build(),
		cfg:   cfg,
		log:   log,
	}
}

// GetByID returns the registry payload for the given ID. The ID is
// normalized to 8 digits first. Cached payloads, including cached
// "HTTP 400"/"HTTP 404" error-records, are returned verbatim unless
// forceRefresh is set.
func (c *Client) GetByID(ctx context.Context, id string, forceRefresh bool) (*VRPayload, error) {
	ico := NormalizeICO(id)
	if ico == "" {
		return nil, fmt.Errorf("empty registry ID %q", id)
	}

	if !forceRefresh {
		if v, err := c.memo.Get(ico); err == nil {
			return v.(*VRPayload), nil
		}
		raw, ok, err := c.cache.Get(ctx, ico)
		if err != nil {
			return nil, err
		}
		if ok {
			p := &VRPayload{}
			if err := json.Unmarshal([]byte(raw), p); err == nil {
				_ = c.memo.Set(ico, p)
				return p, nil
			}
			// corrupt row: fall through to a refetch
			c.log.Warn().Str("ico", ico).Msg("cached payload undecodable, refetching")
		}
	}

	p, err := c.fetch(ctx, ico)
	if err != nil {
		return nil, err
	}
	_ = c.memo.Set(ico, p)
	return p, nil
}

func (c *Client) fetch(ctx context.Context, ico string) (*VRPayload, error) {
	url := fmt.Sprintf("%s/ekonomicke-subjekty-vr/%s", c.cfg.BaseURL, ico)

	var result *VRPayload
	attempt := 0
	op := func() error {
		attempt++
		if err := c.throttle(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.log.Debug().Str("ico", ico).Int("attempt", attempt).Err(err).Msg("registry request failed")
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			p := &VRPayload{}
			if err := json.Unmarshal(body, p); err != nil {
				return fmt.Errorf("failed to decode registry payload: %w", err)
			}
			if err := c.cache.Put(ctx, ico, string(body)); err != nil {
				return backoff.Permanent(err)
			}
			result = p
			return nil

		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
			// definitive absence: cache the error-record, do not retry
			p := &VRPayload{
				Error: fmt.Sprintf("HTTP %d", resp.StatusCode),
				URL:   url,
			}
			raw, err := json.Marshal(p)
			if err != nil {
				return backoff.Permanent(err)
			}
			if err := c.cache.Put(ctx, ico, string(raw)); err != nil {
				return backoff.Permanent(err)
			}
			result = p
			return nil

		default:
			// 429 / 5xx / anything unexpected: retry with backoff
			snippet := body
			if len(snippet) > 200 {
				snippet = snippet[:200]
			}
			c.log.Debug().Str("ico", ico).Int("status", resp.StatusCode).Int("attempt", attempt).Msg("registry returned retryable status")
			return fmt.Errorf("registry HTTP %d: %s", resp.StatusCode, snippet)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BackoffBase
	b.MaxInterval = c.cfg.BackoffCap
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries)), ctx))
	if err != nil {
		if perr := ctx.Err(); perr != nil {
			return nil, perr
		}
		if errors.Is(err, ErrCacheIO) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRegistryUnreachable, ico, err)
	}
	return result, nil
}

// throttle keeps at least MinDelay between consecutive outbound requests.
// The wait is recomputed after every sleep: another goroutine may have
// issued a request while the lock was released.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	for {
		wait := c.cfg.MinDelay - time.Since(c.lastRequest)
		if wait <= 0 {
			break
		}
		c.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
	return nil
}
