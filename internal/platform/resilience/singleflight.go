package resilience

import "sync"

// SingleFlight collapses concurrent calls that share a key into one
// execution. Followers block until the leader finishes and receive its
// result; the key is reusable once the leader returns.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightResult
}

type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn once per key at a time. The boolean reports whether the
// caller shared a leader's result instead of executing fn itself.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if res, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-res.done
		return res.val, res.err, true
	}

	res := &flightResult{done: make(chan struct{})}
	if g.inflight == nil {
		g.inflight = map[string]*flightResult{key: res}
	} else {
		g.inflight[key] = res
	}
	g.mu.Unlock()

	res.val, res.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	close(res.done)

	return res.val, res.err, false
}
