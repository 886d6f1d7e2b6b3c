// Package idgen issues the opaque, never-repeating entity ids used by the
// board. Ids have the form "id-<n>"; only this package reads that format.
package idgen

import (
	"strconv"
	"strings"
)

const prefix = "id-"

// Generator hands out sequential ids. The counter is the value persisted
// as idCounter, so a reloaded generator continues where it stopped.
type Generator struct {
	next int
}

// New returns a generator whose next id uses the given counter value.
// Values below 1 are clamped to 1.
func New(next int) *Generator {
	if next < 1 {
		next = 1
	}
	return &Generator{next: next}
}

// Next returns a fresh id and advances the counter.
func (g *Generator) Next() string {
	id := prefix + strconv.Itoa(g.next)
	g.next++
	return id
}

// Counter returns the value the next id will use.
func (g *Generator) Counter() int {
	return g.next
}

// Observe advances the counter past id if id was issued in this
// generator's format. Foreign ids are ignored.
func (g *Generator) Observe(id string) {
	n, ok := parse(id)
	if !ok {
		return
	}
	if n >= g.next {
		g.next = n + 1
	}
}

func parse(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, prefix)
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
