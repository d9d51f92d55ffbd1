package primitive

import "fmt"

// PrimitiveConflict records a primitive that lost a naming collision.
type PrimitiveConflict struct {
	Kind      Kind
	Name      string
	Winner    Primitive
	Loser     Primitive
	Reason    string
}

// PrimitiveCollection is the deduplicated set of primitives that will
// actually be placed, plus a record of everything that lost a conflict.
type PrimitiveCollection struct {
	winners   map[string]Primitive
	Conflicts []PrimitiveConflict
}

func key(kind Kind, name string) string {
	return string(kind) + "::" + name
}

// NewPrimitiveCollection resolves a flat slice of discovered primitives
// (local project first, then dependencies in BFS/declaration order) into a
// winner set, per spec.md §4.4: a local primitive always wins over any
// dependency's primitive of the same kind and name; among dependencies, the
// first one encountered in resolution order wins (shallower depth, or
// earlier declaration at the same depth, since DiscoverSource is expected
// to be called in that order).
func NewPrimitiveCollection(all []Primitive) *PrimitiveCollection {
	c := &PrimitiveCollection{winners: make(map[string]Primitive)}

	for _, p := range all {
		k := key(p.Kind, p.Name)
		existing, ok := c.winners[k]
		if !ok {
			c.winners[k] = p
			continue
		}

		if isLocal(p) && !isLocal(existing) {
			c.Conflicts = append(c.Conflicts, PrimitiveConflict{
				Kind: p.Kind, Name: p.Name, Winner: p, Loser: existing,
				Reason: "local primitive overrides dependency primitive",
			})
			c.winners[k] = p
			continue
		}

		if !isLocal(p) && isLocal(existing) {
			c.Conflicts = append(c.Conflicts, PrimitiveConflict{
				Kind: p.Kind, Name: p.Name, Winner: existing, Loser: p,
				Reason: "local primitive overrides dependency primitive",
			})
			continue
		}

		// Both local or both from dependencies: first-discovered wins.
		c.Conflicts = append(c.Conflicts, PrimitiveConflict{
			Kind: p.Kind, Name: p.Name, Winner: existing, Loser: p,
			Reason: fmt.Sprintf("first dependency to declare %q wins (%s)", p.Name, existing.SourceTag),
		})
	}

	return c
}

func isLocal(p Primitive) bool {
	return p.SourceTag == "."
}

// All returns the winning primitives, in no particular order.
func (c *PrimitiveCollection) All() []Primitive {
	out := make([]Primitive, 0, len(c.winners))
	for _, p := range c.winners {
		out = append(out, p)
	}
	return out
}

// ByKind returns the winning primitives of a single kind.
func (c *PrimitiveCollection) ByKind(kind Kind) []Primitive {
	var out []Primitive
	for _, p := range c.winners {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of winning primitives.
func (c *PrimitiveCollection) Len() int {
	return len(c.winners)
}
