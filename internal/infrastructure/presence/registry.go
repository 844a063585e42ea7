package presence

import "sync"

// Registry maps a user to at most one live connection handle plus an
// ephemeral hint about which conversation partner the user currently has
// open. It is the single source of truth for "is this user reachable".
//
// The registry is an injected instance, not a package singleton, so a
// cluster-aware implementation can replace it without touching callers.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]interface{}
	viewing map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		conns:   make(map[string]interface{}),
		viewing: make(map[string]string),
	}
}

// Register records the connection handle for a user. A newer registration
// replaces any prior one (last-writer-wins).
func (r *Registry) Register(userID string, conn interface{}) {
	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()
}

// Unregister removes the user's mapping and viewing hint. Safe to call
// when no mapping exists.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	delete(r.conns, userID)
	delete(r.viewing, userID)
	r.mu.Unlock()
}

// UnregisterConn removes the mapping only if it still points at conn.
// A stale connection that was already replaced must not knock the newer
// one offline.
func (r *Registry) UnregisterConn(userID string, conn interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[userID]; ok && cur == conn {
		delete(r.conns, userID)
		delete(r.viewing, userID)
		return true
	}
	return false
}

// Lookup returns the current connection handle for the user, if any.
func (r *Registry) Lookup(userID string) (interface{}, bool) {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	return conn, ok
}

func (r *Registry) IsOnline(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// SetViewing records that userID currently has the conversation with
// partnerID open. Used only as a hint for initial status assignment.
func (r *Registry) SetViewing(userID, partnerID string) {
	r.mu.Lock()
	r.viewing[userID] = partnerID
	r.mu.Unlock()
}

func (r *Registry) ClearViewing(userID string) {
	r.mu.Lock()
	delete(r.viewing, userID)
	r.mu.Unlock()
}

func (r *Registry) IsViewing(userID, partnerID string) bool {
	r.mu.RLock()
	p, ok := r.viewing[userID]
	r.mu.RUnlock()
	return ok && p == partnerID
}

// OnlineUserIDs snapshots the IDs of all reachable users.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	return ids
}

// Connections snapshots the full user -> handle map.
func (r *Registry) Connections() map[string]interface{} {
	r.mu.RLock()
	conns := make(map[string]interface{}, len(r.conns))
	for id, c := range r.conns {
		conns[id] = c
	}
	r.mu.RUnlock()
	return conns
}
