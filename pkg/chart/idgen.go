package chart

import (
	"strconv"
	"sync"
)

// IDGen hands out unique, human-readable element ids such as "item-3".
//
// Each chart (or each import) owns its own generator, so ids are
// reproducible for a given document and two documents never share
// counter state. IDGen is safe for concurrent use.
type IDGen struct {
	mu   sync.Mutex
	next map[string]int
	used map[string]bool
}

// NewIDGen returns an empty generator.
func NewIDGen() *IDGen {
	return &IDGen{
		next: make(map[string]int),
		used: make(map[string]bool),
	}
}

// Reserve marks id as taken so Next never returns it. Empty ids are ignored.
func (g *IDGen) Reserve(id string) {
	if id == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.used[id] = true
}

// Next returns the next unused id with the given prefix, e.g. "link-1".
func (g *IDGen) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		g.next[prefix]++
		id := prefix + "-" + strconv.Itoa(g.next[prefix])
		if !g.used[id] {
			g.used[id] = true
			return id
		}
	}
}
