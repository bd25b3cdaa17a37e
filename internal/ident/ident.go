// Package ident issues random identifiers that are unique within a container.
package ident

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"
)

// Generator draws identifiers from an entropy source.
type Generator struct {
	// Rand is the entropy source. Nil means crypto/rand.
	Rand io.Reader
}

// Default reads from crypto/rand.
var Default = &Generator{}

// New returns an identifier that is not a key of existing, using Default.
func New[V any](existing map[string]V) string {
	return Issue(Default, existing)
}

// Issue draws canonical lowercase 8-4-4-4-12 identifiers from g until one
// is not already a key of existing.
// It panics if the entropy source fails.
func Issue[V any](g *Generator, existing map[string]V) string {
	for {
		id := g.draw()
		if _, taken := existing[id]; !taken {
			return id
		}
	}
}

func (g *Generator) draw() string {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		panic("ident: entropy source failed: " + err.Error())
	}
	return id.String()
}
