package world

import "sync"

// Registry is the concurrency-safe set of live player sessions, keyed by
// character id. Every connection handler goes through it to find the other
// side of a party or trade interaction, so lookups of ids that have already
// logged off are a normal outcome and simply report absence.
type Registry struct {
	mu      sync.RWMutex
	players map[uint32]*Player
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[uint32]*Player)}
}

// Register adds a session to the live set, replacing any stale entry with
// the same id.
func (r *Registry) Register(p *Player) {
	r.mu.Lock()
	r.players[p.ID] = p
	r.mu.Unlock()
}

// Unregister removes and returns the session with the given id, or nil if
// it was not present.
func (r *Registry) Unregister(id uint32) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return nil
	}
	delete(r.players, id)
	return p
}

// TryGet looks up a live session by character id.
func (r *Registry) TryGet(id uint32) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	return p, ok
}

// Snapshot returns the live sessions at a point in time.
func (r *Registry) Snapshot() []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	return players
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
