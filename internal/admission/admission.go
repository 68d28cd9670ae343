// Package admission caps each client identity at one active scrape job.
package admission

import "sync"

// Guard maps client identity to its active job id. Two writers touch the map
// (the submission path and the completion callback), so Release uses
// compare-and-clear semantics: a stale release racing a newer admission for
// the same client must not clobber it.
type Guard struct {
	mu     sync.Mutex
	active map[string]string
}

func NewGuard() *Guard {
	return &Guard{active: make(map[string]string)}
}

// TryAdmit reserves the client's single active-job slot for jobID.
// Returns false if the client already holds a slot.
func (g *Guard) TryAdmit(clientID, jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.active[clientID]; ok {
		return false
	}
	g.active[clientID] = jobID
	return true
}

// Release frees the client's slot, but only if it still points at jobID.
// Idempotent.
func (g *Guard) Release(clientID, jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active[clientID] == jobID {
		delete(g.active, clientID)
	}
}

// Active returns the client's current job id, if any.
func (g *Guard) Active(clientID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	jobID, ok := g.active[clientID]
	return jobID, ok
}
