// Copyright (c) 2026 Roastlog. All rights reserved.

package registration

import (
	"context"
	"strings"
	"sync"

	"github.com/roastlog/roastlog/internal/platform/apperr"
)

// SeededTakenEmails are the addresses preloaded into the in-memory store so
// the duplicate path is exercisable without a database.
var SeededTakenEmails = []string{
	"admin@example.com",
	"test@test.com",
}

// MemoryStore is the in-process [UserStore] used by default in development
// and in tests. It is a stand-in for a real persistence layer: users live
// only as long as the process does.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by lowercased email
}

// NewMemoryStore creates a [MemoryStore] preloaded with [SeededTakenEmails].
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{users: make(map[string]*User)}
	for _, email := range SeededTakenEmails {
		store.users[email] = &User{Email: email}
	}
	return store
}

// EmailExists implements [UserStore].
func (store *MemoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	_, taken := store.users[strings.ToLower(email)]
	return taken, nil
}

// Create implements [UserStore]. The check-and-insert happens under one
// lock, giving the memory driver the same duplicate guarantee the postgres
// driver gets from its unique constraint.
func (store *MemoryStore) Create(_ context.Context, user *User) error {
	key := strings.ToLower(user.Email)

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, taken := store.users[key]; taken {
		return apperr.EmailExists()
	}

	store.users[key] = user
	return nil
}
