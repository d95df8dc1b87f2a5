// Package api provides the reachability boundary.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// ReachabilityMonitor reports whether the device currently has network
// connectivity. The sync core polls this at the start of each operation;
// it never subscribes to change notifications.
type ReachabilityMonitor interface {
	IsOnline() bool
}

// ProbeMonitor implements ReachabilityMonitor with a HEAD probe against
// the API host, cached for a short window so hot paths don't hammer the
// network with probes.
type ProbeMonitor struct {
	probeURL string
	client   *http.Client

	mu        sync.Mutex
	online    bool
	checkedAt time.Time
	ttl       time.Duration
}

// NewProbeMonitor creates a monitor probing the given URL.
func NewProbeMonitor(probeURL string, timeout, ttl time.Duration) *ProbeMonitor {
	return &ProbeMonitor{
		probeURL: probeURL,
		client:   &http.Client{Timeout: timeout},
		ttl:      ttl,
	}
}

// IsOnline returns the cached probe result, refreshing it when the cache
// window has elapsed. Any HTTP response, including an error status, means
// the network path is up; only transport failures count as offline.
func (m *ProbeMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.checkedAt) < m.ttl {
		return m.online
	}

	m.online = m.probe()
	m.checkedAt = time.Now()
	return m.online
}

func (m *ProbeMonitor) probe() bool {
	ctx, cancel := context.WithTimeout(context.Background(), m.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
