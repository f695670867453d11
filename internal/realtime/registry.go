// Package realtime tracks live delivery channels and pushes events over them.
package realtime

import "sync"

// Registry maps a user id to at most one live channel id, and a channel to at
// most one user. It is memory only: after a restart every user is offline
// until their client registers again.
type Registry struct {
	mu        sync.RWMutex
	byUser    map[string]string
	byChannel map[string]string
}

func NewRegistry() *Registry {
	return &Registry{byUser: make(map[string]string), byChannel: make(map[string]string)}
}

// Register maps userID to channelID, replacing any previous channel (last writer wins).
// A channel that was registered under another user leaves that user.
// It returns the replaced channel id, or "" when there was none.
func (r *Registry) Register(userID, channelID string) (replaced string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prevUser, ok := r.byChannel[channelID]; ok && prevUser != userID {
		delete(r.byUser, prevUser)
	}
	prev, had := r.byUser[userID]
	if had && prev != channelID {
		delete(r.byChannel, prev)
	}
	r.byUser[userID] = channelID
	r.byChannel[channelID] = userID
	if !had || prev == channelID {
		return ""
	}
	return prev
}

// Unregister removes the mapping held by channelID and returns its user.
func (r *Registry) Unregister(channelID string) (userID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok = r.byChannel[channelID]
	if !ok {
		return "", false
	}
	delete(r.byChannel, channelID)
	if r.byUser[userID] == channelID {
		delete(r.byUser, userID)
	}
	return userID, true
}

// Resolve returns the live channel of userID.
func (r *Registry) Resolve(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// Users returns a snapshot of every registered user id.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		users = append(users, u)
	}
	return users
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
