// Package search is a small in-memory index over decrypted item names,
// used by the CLI to find entries without another decrypt pass. Indexed
// text is plaintext, so the index lives only as long as the unlocked
// session and must be dropped on lock.
package search

import (
	"sort"
	"strings"
	"sync"
)

type Index struct {
	mu      sync.RWMutex
	entries map[string]string
}

func New() *Index {
	return &Index{entries: map[string]string{}}
}

func (i *Index) Add(id, text string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[id] = strings.ToLower(text)
}

func (i *Index) Remove(id string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, id)
}

// Query returns the IDs whose indexed text contains q, sorted for stable
// output.
func (i *Index) Query(q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	i.mu.RLock()
	defer i.mu.RUnlock()
	var out []string
	for id, text := range i.entries {
		if q == "" || strings.Contains(text, q) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Clear wipes the index, called on lock and logout.
func (i *Index) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = map[string]string{}
}
