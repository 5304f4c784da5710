// Package storage holds the local state of a scan agent: its identity,
// the enable flag and the cached block lists. All implementations share
// the same key space so agents can migrate between backends.
package storage

import "sync"

// Well known keys of the gateway key space.
const (
	KeyUUID              = "uuid"
	KeyStatus            = "status"
	KeyReportedPosts     = "reportedPosts"
	KeyReportedUsernames = "reportedUsernames"
	KeySpamPosts         = "spamPosts"
	KeySpamUsernames     = "spamUsernames"
)

// Gateway abstracts the local persistence of a scan agent.
type Gateway interface {
	GetString(key string) (string, error)
	SetString(key, value string) error
	GetBool(key string) (bool, error)
	SetBool(key string, value bool) error
	GetList(key string) ([]string, error)
	SetList(key string, values []string) error
	AppendList(key, value string) error
	Close() error
}

// MemoryGateway is an in-memory Gateway, used by tests and by agents
// running without a cache file.
type MemoryGateway struct {
	mu      sync.RWMutex
	strings map[string]string
	bools   map[string]bool
	lists   map[string][]string
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		strings: make(map[string]string),
		bools:   make(map[string]bool),
		lists:   make(map[string][]string),
	}
}

func (g *MemoryGateway) GetString(key string) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.strings[key], nil
}

func (g *MemoryGateway) SetString(key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.strings[key] = value
	return nil
}

func (g *MemoryGateway) GetBool(key string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.bools[key], nil
}

func (g *MemoryGateway) SetBool(key string, value bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bools[key] = value
	return nil
}

func (g *MemoryGateway) GetList(key string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	list := g.lists[key]
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (g *MemoryGateway) SetList(key string, values []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	list := make([]string, len(values))
	copy(list, values)
	g.lists[key] = list
	return nil
}

func (g *MemoryGateway) AppendList(key, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, v := range g.lists[key] {
		if v == value {
			return nil
		}
	}
	g.lists[key] = append(g.lists[key], value)
	return nil
}

func (g *MemoryGateway) Close() error { return nil }
