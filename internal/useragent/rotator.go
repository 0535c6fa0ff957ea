// Package useragent provides User-Agent selection for outgoing requests.
package useragent

import "sync/atomic"

// DefaultAgents is the built-in User-Agent pool used when no custom
// list is configured. The values mimic common desktop browsers so that
// scanner traffic blends in with regular visits.
var DefaultAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// Rotator hands out User-Agent strings round-robin. It is safe for
// concurrent use by the fetch goroutines of a crawl round.
type Rotator struct {
	agents []string
	next   atomic.Uint64
}

// NewRotator creates a Rotator over the given agents.
// An empty list falls back to DefaultAgents.
func NewRotator(agents ...string) *Rotator {
	if len(agents) == 0 {
		agents = DefaultAgents
	}
	return &Rotator{agents: agents}
}

// Next returns the next User-Agent in round-robin order.
func (r *Rotator) Next() string {
	n := r.next.Add(1) - 1
	return r.agents[n%uint64(len(r.agents))]
}
