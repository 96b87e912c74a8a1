package halfedge

import (
	"fmt"

	"github.com/hupe1980/meshrecon/handle"
)

// DebugCheckMeshIntegrity re-derives the structural invariants and returns
// an *IntegrityError for the first violation found. It is meant for tests.
func (m *Mesh) DebugCheckMeshIntegrity() error {
	limit := m.halfEdges.NumUsed() + 1

	heErr := func(h handle.HalfEdgeHandle, format string, args ...any) error {
		return &IntegrityError{Entity: "halfedge", Handle: uint32(h), Reason: fmt.Sprintf(format, args...)}
	}

	type dirEdge struct{ from, to handle.VertexHandle }
	directed := make(map[dirEdge]handle.HalfEdgeHandle)
	originCount := make(map[handle.VertexHandle]int)

	for h := range m.halfEdges.Handles() {
		he := *m.halfEdges.Ref(h)
		if !m.halfEdges.Contains(he.twin) {
			return heErr(h, "twin %s is not live", he.twin)
		}
		if he.twin == h || m.Twin(he.twin) != h {
			return heErr(h, "twin %s is not symmetric", he.twin)
		}
		if he.twin != h^1 {
			return heErr(h, "twin %s is not the pair partner", he.twin)
		}
		if !m.halfEdges.Contains(he.next) {
			return heErr(h, "next %s is not live", he.next)
		}
		if !m.vertices.Contains(he.target) {
			return heErr(h, "target %s is not live", he.target)
		}
		if he.face.IsValid() && !m.faces.Contains(he.face) {
			return heErr(h, "face %s is not live", he.face)
		}
		if m.Origin(he.next) != he.target {
			return heErr(h, "next %s does not start at target %s", he.next, he.target)
		}
		if m.FaceOf(he.next) != he.face {
			return heErr(h, "next %s belongs to face %s, want %s", he.next, m.FaceOf(he.next), he.face)
		}

		// Cycle closure.
		steps, cur := 0, h
		for {
			cur = m.Next(cur)
			steps++
			if cur == h {
				break
			}
			if steps > limit {
				return heErr(h, "next cycle does not close")
			}
		}
		if steps < 2 {
			return heErr(h, "next cycle has length %d", steps)
		}

		from := m.Origin(h)
		if from == he.target {
			return heErr(h, "self loop at %s", from)
		}
		key := dirEdge{from, he.target}
		if other, ok := directed[key]; ok {
			return heErr(h, "duplicates %s (%s -> %s)", other, from, he.target)
		}
		directed[key] = h
		originCount[from]++
	}

	for f := range m.faces.Handles() {
		seed := m.FaceHalfEdge(f)
		if !m.halfEdges.Contains(seed) {
			return &IntegrityError{Entity: "face", Handle: uint32(f), Reason: "seed half-edge is not live"}
		}
		n := 0
		for h := range m.FaceHalfEdges(f) {
			if m.FaceOf(h) != f {
				return &IntegrityError{Entity: "face", Handle: uint32(f), Reason: fmt.Sprintf("half-edge %s belongs to %s", h, m.FaceOf(h))}
			}
			n++
			if n > limit {
				break
			}
		}
		if n < 3 {
			return &IntegrityError{Entity: "face", Handle: uint32(f), Reason: fmt.Sprintf("cycle has %d half-edges", n)}
		}
	}

	for v := range m.vertices.Handles() {
		out := m.OutgoingHalfEdge(v)
		if !out.IsValid() {
			if originCount[v] != 0 {
				return &IntegrityError{Entity: "vertex", Handle: uint32(v), Reason: "isolated vertex has half-edges"}
			}
			continue
		}
		if !m.halfEdges.Contains(out) {
			return &IntegrityError{Entity: "vertex", Handle: uint32(v), Reason: fmt.Sprintf("outgoing %s is not live", out)}
		}
		if m.Origin(out) != v {
			return &IntegrityError{Entity: "vertex", Handle: uint32(v), Reason: fmt.Sprintf("outgoing %s starts at %s", out, m.Origin(out))}
		}

		n, boundary := 0, false
		for h := range m.OutgoingHalfEdges(v) {
			if m.Origin(h) != v {
				return &IntegrityError{Entity: "vertex", Handle: uint32(v), Reason: fmt.Sprintf("rotation reaches %s from %s", h, m.Origin(h))}
			}
			boundary = boundary || m.IsBoundaryHalfEdge(h)
			n++
			if n > limit {
				return &IntegrityError{Entity: "vertex", Handle: uint32(v), Reason: "rotation does not close"}
			}
		}
		if n != originCount[v] {
			return &IntegrityError{Entity: "vertex", Handle: uint32(v), Reason: fmt.Sprintf("rotation visits %d of %d outgoing half-edges", n, originCount[v])}
		}
		if boundary && !m.IsBoundaryHalfEdge(out) {
			return &IntegrityError{Entity: "vertex", Handle: uint32(v), Reason: "boundary vertex has an interior outgoing half-edge"}
		}
	}

	return nil
}
