// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ingest

import (
	"context"
	"sync"

	"github.com/holomush/chatcmdlog/internal/classifier"
)

type player struct {
	name  string
	level classifier.PrivilegeLevel
}

// Roster tracks connected players and their auth level.
// It is safe for concurrent use.
type Roster struct {
	mu      sync.RWMutex
	players map[uint64]player
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{players: make(map[uint64]player)}
}

// Connect adds or replaces a player.
func (r *Roster) Connect(id uint64, name string, level classifier.PrivilegeLevel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[id] = player{name: name, level: level}
}

// Disconnect removes a player. Unknown ids are ignored.
func (r *Roster) Disconnect(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
}

// Privilege reports the auth level of a connected player.
func (r *Roster) Privilege(_ context.Context, id uint64) (classifier.PrivilegeLevel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	return p.level, ok
}

// Name returns the display name a player connected with.
func (r *Roster) Name(id uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	return p.name, ok
}

// Len returns the number of connected players.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}
