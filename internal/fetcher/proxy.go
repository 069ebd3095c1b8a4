package fetcher

import (
	"math/rand/v2"
	"net/url"
)

// ProxyConfig is one weighted upstream proxy entry.
type ProxyConfig struct {
	URL    string
	Weight int
}

// ProxyPool picks a proxy at random, weighted by each entry's weight; selection happens once
// per outbound fetch call, not once per retry attempt within that call,
// per spec.md §4.1.
type ProxyPool struct {
	entries []ProxyConfig
	total   int
}

// NewProxyPool builds a pool from the configured weighted list. An empty
// or nil list means "no proxy" — Pick always reports !ok.
func NewProxyPool(entries []ProxyConfig) *ProxyPool {
	total := 0
	for _, e := range entries {
		if e.Weight > 0 {
			total += e.Weight
		}
	}
	return &ProxyPool{entries: entries, total: total}
}

// Pick returns a randomly selected proxy URL weighted by configured
// weight, or (nil, false) if no proxies are configured.
func (p *ProxyPool) Pick() (*url.URL, bool) {
	if p == nil || p.total <= 0 || len(p.entries) == 0 {
		return nil, false
	}

	target := rand.IntN(p.total)
	acc := 0
	for _, e := range p.entries {
		if e.Weight <= 0 {
			continue
		}
		acc += e.Weight
		if target < acc {
			u, err := url.Parse(e.URL)
			if err != nil {
				return nil, false
			}
			return u, true
		}
	}
	return nil, false
}
