// Package fetcher implements the rate-limited, retrying HTTP client the
// archival pipeline uses for every outbound request (spec.md §4.1). It
// is the only component allowed to talk to the upstream API/CDN; every
// other component calls through it so throughput stays globally bounded.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/reasv/board-archiver/internal/metrics"
)

// ErrNotFound is returned when upstream responds 404 — a permanent
// failure; the caller should not retry this specific resource again.
var ErrNotFound = errors.New("fetcher: resource not found")

// ErrTransient is returned when the retry deadline elapses without a
// successful (200) or permanent (404) outcome, when ctx ends during the
// rate-limit or jitter wait, and by FetchJSON when a 200 body does not
// decode (a decode failure is not retried).
var ErrTransient = errors.New("fetcher: transient failure, retries exhausted")

// Config holds the knobs described in spec.md §6.
type Config struct {
	QuotaPerMinute   float64
	Burst            int
	JitterMinMs      int
	JitterIntervalMs int
	MaxTimeSeconds   int
	Proxies          []ProxyConfig
	UserAgent        string
}

// DefaultConfig mirrors the defaults spec.md §6 lists.
func DefaultConfig() Config {
	return Config{
		QuotaPerMinute:   120,
		Burst:            10,
		JitterMinMs:      200,
		JitterIntervalMs: 800,
		MaxTimeSeconds:   600,
		UserAgent:        "board-archiver/1.0",
	}
}

// Fetcher performs outbound GETs with a per-rate_key token bucket, jitter,
// bounded exponential retry, and optional weighted proxy rotation.
type Fetcher struct {
	cfg    Config
	sink   metrics.Sink
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	proxies *ProxyPool
}

// New builds a Fetcher. sink may be metrics.NoopSink{}.
func New(cfg Config, sink metrics.Sink) *Fetcher {
	if sink == nil {
		sink = metrics.NoopSink{}
	}
	return &Fetcher{
		cfg:      cfg,
		sink:     sink,
		logger:   slog.Default().With("component", "fetcher"),
		limiters: make(map[string]*rate.Limiter),
		proxies:  NewProxyPool(cfg.Proxies),
	}
}

func (f *Fetcher) limiterFor(rateKey string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.limiters[rateKey]; ok {
		return l
	}
	// QuotaPerMinute requests per minute, expressed as an x/time/rate.Limit
	// (events per second), with Burst tokens available immediately.
	l := rate.NewLimiter(rate.Limit(f.cfg.QuotaPerMinute/60.0), f.cfg.Burst)
	f.limiters[rateKey] = l
	return l
}

func (f *Fetcher) jitter(ctx context.Context) error {
	lo := f.cfg.JitterMinMs
	span := f.cfg.JitterIntervalMs
	d := time.Duration(lo) * time.Millisecond
	if span > 0 {
		d += time.Duration(rand.IntN(span+1)) * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// httpClientFor builds an *http.Client pinned to a single proxy selection,
// made once per fetch call (not per retry attempt within that call).
func (f *Fetcher) httpClientFor() (*http.Client, error) {
	transport := &http.Transport{}
	if proxyURL, ok := f.proxies.Pick(); ok {
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &http.Client{Transport: transport, Timeout: 30 * time.Second}, nil
}

// classify maps an HTTP round trip outcome to the fetcher's error taxonomy.
func classify(resp *http.Response, body []byte, readErr error) ([]byte, error) {
	if readErr != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransient, readErr)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransient, resp.StatusCode)
	}
}

// doOnce issues exactly one HTTP GET and classifies the result.
func (f *Fetcher) doOnce(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	start := time.Now()
	f.sink.IncCounter("http_requests_running", 1)
	defer f.sink.IncCounter("http_requests_running", -1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	f.sink.ObserveHistogram("http_request_duration", time.Since(start).Seconds())

	out, classifyErr := classify(resp, body, readErr)
	if classifyErr != nil {
		if errors.Is(classifyErr, ErrNotFound) {
			f.sink.IncCounter("http_404", 1)
			return nil, backoff.Permanent(classifyErr)
		}
		f.sink.IncCounter("http_warn", 1)
		return nil, classifyErr
	}
	f.sink.IncCounter("bytes_fetched", float64(len(out)))
	return out, nil
}

// fetch runs the full rate-limit -> jitter -> retry pipeline for one URL.
func (f *Fetcher) fetch(ctx context.Context, url, rateKey string) ([]byte, error) {
	if err := f.limiterFor(rateKey).Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter wait: %w", ErrTransient, err)
	}
	if err := f.jitter(ctx); err != nil {
		return nil, fmt.Errorf("%w: jitter wait: %w", ErrTransient, err)
	}

	client, err := f.httpClientFor()
	if err != nil {
		return nil, err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 500 * time.Millisecond
	eb.Multiplier = 1.5
	eb.RandomizationFactor = 0.5
	eb.MaxInterval = 60 * time.Second

	operation := func() ([]byte, error) {
		return f.doOnce(ctx, client, url)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(eb),
		backoff.WithMaxElapsedTime(time.Duration(f.cfg.MaxTimeSeconds)*time.Second),
	)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		f.logger.Warn("fetch exhausted retries", "url", url, "error", err)
		return nil, ErrTransient
	}
	return body, nil
}

// FetchBytes performs a rate-limited GET and returns the raw body.
func (f *Fetcher) FetchBytes(ctx context.Context, url, rateKey string) ([]byte, error) {
	return f.fetch(ctx, url, rateKey)
}

// FetchJSON performs a rate-limited GET against the "api" rate key and
// decodes the body as JSON into T. Go methods can't carry type
// parameters, so this is a free function taking the Fetcher explicitly.
func FetchJSON[T any](ctx context.Context, f *Fetcher, url string) (T, error) {
	var zero T
	body, err := f.fetch(ctx, url, "api")
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, fmt.Errorf("%w: decode json: %w", ErrTransient, err)
	}
	return out, nil
}
