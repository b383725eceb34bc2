// Package coordinator holds the in-memory state shared by capture and
// subtitle requests: which episodes were admitted, their resolved identity,
// subtitles waiting for an identity, which episodes already have a subtitle
// and the progress of every download.
package coordinator

import (
	"sync"

	"github.com/Belphemur/HLSCapture/internal/episode"
	"github.com/Belphemur/HLSCapture/internal/models"
)

// Coordinator is safe for concurrent use. Every operation holds a lock only
// for the map access it performs.
type Coordinator struct {
	// registryMu guards seen, resolved and pending together so that a
	// subtitle is either enqueued before the drain or sees the identity.
	registryMu sync.Mutex
	seen       map[episode.Key]struct{}
	resolved   map[episode.Key]episode.Resolved
	pending    map[episode.Key][]string

	claimsMu sync.Mutex
	claims   map[episode.Key]struct{}

	downloadsMu sync.RWMutex
	downloads   map[episode.Key]*models.DownloadState
	order       []episode.Key
}

// New creates an empty coordinator.
func New() *Coordinator {
	return &Coordinator{
		seen:      make(map[episode.Key]struct{}),
		resolved:  make(map[episode.Key]episode.Resolved),
		pending:   make(map[episode.Key][]string),
		claims:    make(map[episode.Key]struct{}),
		downloads: make(map[episode.Key]*models.DownloadState),
	}
}

// Admit marks key as seen. It returns false when the key was already admitted.
func (c *Coordinator) Admit(key episode.Key) bool {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	return true
}

// Resolve records the identity of key and returns the subtitle URLs that were
// waiting for it. The pending entry is removed, so each URL is returned once.
// A key keeps the identity it was first resolved with.
func (c *Coordinator) Resolve(key episode.Key, r episode.Resolved) []string {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	if _, ok := c.resolved[key]; !ok {
		c.resolved[key] = r
	}
	urls := c.pending[key]
	delete(c.pending, key)
	return urls
}

// Lookup returns the resolved identity of key.
func (c *Coordinator) Lookup(key episode.Key) (episode.Resolved, bool) {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	r, ok := c.resolved[key]
	return r, ok
}

// LookupOrEnqueue returns the resolved identity of key or, when there is none
// yet, queues url until Resolve is called for key.
func (c *Coordinator) LookupOrEnqueue(key episode.Key, url string) (episode.Resolved, bool) {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	if r, ok := c.resolved[key]; ok {
		return r, true
	}
	c.pending[key] = append(c.pending[key], url)
	return episode.Resolved{}, false
}

// Pending returns a copy of the subtitle URLs queued for key.
func (c *Coordinator) Pending(key episode.Key) []string {
	c.registryMu.Lock()
	defer c.registryMu.Unlock()
	return append([]string(nil), c.pending[key]...)
}

// TryClaim reserves the subtitle slot of key. Only the first caller gets true.
func (c *Coordinator) TryClaim(key episode.Key) bool {
	c.claimsMu.Lock()
	defer c.claimsMu.Unlock()
	if _, ok := c.claims[key]; ok {
		return false
	}
	c.claims[key] = struct{}{}
	return true
}

// Claimed reports whether the subtitle slot of key is taken.
func (c *Coordinator) Claimed(key episode.Key) bool {
	c.claimsMu.Lock()
	defer c.claimsMu.Unlock()
	_, ok := c.claims[key]
	return ok
}

// ReleaseClaim frees the subtitle slot of key after a failed write.
func (c *Coordinator) ReleaseClaim(key episode.Key) {
	c.claimsMu.Lock()
	defer c.claimsMu.Unlock()
	delete(c.claims, key)
}
