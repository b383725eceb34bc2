package coordinator

import (
	"sort"

	"github.com/Belphemur/HLSCapture/internal/episode"
	"github.com/Belphemur/HLSCapture/internal/models"
)

// Track registers the download state of key. Registering a key twice keeps
// its original position in the listing.
func (c *Coordinator) Track(key episode.Key, state models.DownloadState) {
	c.downloadsMu.Lock()
	defer c.downloadsMu.Unlock()
	if _, ok := c.downloads[key]; !ok {
		c.order = append(c.order, key)
	}
	s := state
	c.downloads[key] = &s
}

// UpdateDownload applies fn to the state of key. Percent never decreases, so
// a late or out-of-order progress line cannot move the bar backwards. It
// returns the updated state and false when key is not tracked.
func (c *Coordinator) UpdateDownload(key episode.Key, fn func(*models.DownloadState)) (models.DownloadState, bool) {
	c.downloadsMu.Lock()
	defer c.downloadsMu.Unlock()
	cur, ok := c.downloads[key]
	if !ok {
		return models.DownloadState{}, false
	}
	next := *cur
	fn(&next)
	if next.Percent < cur.Percent {
		next.Percent = cur.Percent
	}
	next.EpisodeKey = cur.EpisodeKey
	*cur = next
	return next, true
}

// Download returns a copy of the state of key.
func (c *Coordinator) Download(key episode.Key) (models.DownloadState, bool) {
	c.downloadsMu.RLock()
	defer c.downloadsMu.RUnlock()
	s, ok := c.downloads[key]
	if !ok {
		return models.DownloadState{}, false
	}
	return *s, true
}

// Downloads returns a snapshot of every tracked download, oldest first.
func (c *Coordinator) Downloads() []models.DownloadState {
	c.downloadsMu.RLock()
	out := make([]models.DownloadState, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, *c.downloads[key])
	}
	c.downloadsMu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Started < out[j].Started
	})
	return out
}
