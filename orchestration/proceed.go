package orchestration

import "sync"

// ProceedSignals records out-of-band force-proceed requests arriving from
// the WebSocket command channel while a session's workflow is in flight.
// A request is consumed at most once, by whichever bounded loop is
// checking it when the signal was set.
type ProceedSignals struct {
	mu  sync.Mutex
	set map[string]bool
}

// NewProceedSignals builds an empty signal registry.
func NewProceedSignals() *ProceedSignals {
	return &ProceedSignals{set: make(map[string]bool)}
}

// Set records a force-proceed request for sessionID.
func (p *ProceedSignals) Set(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set[sessionID] = true
}

// Consume reports whether sessionID has a pending force-proceed request,
// clearing it in the same call.
func (p *ProceedSignals) Consume(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.set[sessionID] {
		delete(p.set, sessionID)
		return true
	}
	return false
}
