package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProxyPoolEmptyReturnsNotOK(t *testing.T) {
	p := NewProxyPool(nil)
	_, ok := p.Pick()
	assert.False(t, ok)
}

func TestProxyPoolAllZeroWeightReturnsNotOK(t *testing.T) {
	p := NewProxyPool([]ProxyConfig{{URL: "http://a", Weight: 0}})
	_, ok := p.Pick()
	assert.False(t, ok)
}

func TestProxyPoolSingleEntryAlwaysPicked(t *testing.T) {
	p := NewProxyPool([]ProxyConfig{{URL: "http://only-proxy.example", Weight: 3}})
	for i := 0; i < 20; i++ {
		u, ok := p.Pick()
		assert.True(t, ok)
		assert.Equal(t, "http://only-proxy.example", u.String())
	}
}

func TestProxyPoolWeightedDistribution(t *testing.T) {
	p := NewProxyPool([]ProxyConfig{
		{URL: "http://heavy.example", Weight: 99},
		{URL: "http://light.example", Weight: 1},
	})

	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		u, ok := p.Pick()
		assert.True(t, ok)
		counts[u.Host]++
	}
	assert.Greater(t, counts["heavy.example"], counts["light.example"],
		"a 99:1 weight split should favor the heavier entry overwhelmingly")
}

func TestProxyPoolNilPoolIsSafe(t *testing.T) {
	var p *ProxyPool
	_, ok := p.Pick()
	assert.False(t, ok)
}
