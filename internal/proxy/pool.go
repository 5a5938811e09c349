// Package proxy rotates upstream proxies across fetch workers, benching
// ones that recently failed.
package proxy

import (
	"sync"
	"time"
)

const failureCooldown = 5 * time.Minute

// Pool hands out proxies round-robin. A proxy marked failed sits out until
// its cooldown expires; when every proxy is cooling down the rotation
// continues as if all were healthy, since a flaky proxy beats no fetch.
type Pool struct {
	mu      sync.Mutex
	proxies []string
	index   int
	failed  map[string]time.Time
}

// NewPool creates a rotation over the given proxy URLs.
func NewPool(proxies []string) *Pool {
	return &Pool{
		proxies: append([]string(nil), proxies...),
		failed:  make(map[string]time.Time),
	}
}

// Next returns the next healthy proxy, or "" when the pool is empty.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	for tries := 0; tries < len(p.proxies); tries++ {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failTime, wasFailed := p.failed[candidate]
		if !wasFailed {
			return candidate
		}
		if time.Since(failTime) >= failureCooldown {
			delete(p.failed, candidate)
			return candidate
		}
	}

	// Everything is cooling down; degrade to plain rotation.
	candidate := p.proxies[p.index]
	p.index = (p.index + 1) % len(p.proxies)
	return candidate
}

// MarkFailed benches a proxy for the cooldown period.
func (p *Pool) MarkFailed(proxy string) {
	if proxy == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
}

// MarkHealthy clears the failure status of a proxy.
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// Len returns the number of proxies in the rotation.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}
