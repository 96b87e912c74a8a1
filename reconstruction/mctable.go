package reconstruction

// Cube corner and edge numbering:
//
//	    7 ------ 6         corner  offset     edge  corners
//	   /|       /|         0       (0,0,0)    0-3   bottom ring
//	  4 ------ 5 |         1       (1,0,0)    4-7   top ring
//	  | 3 -----|-2         2       (1,1,0)    8-11  verticals 0-4, 1-5, 2-6, 3-7
//	  |/       |/          3       (0,1,0)
//	  0 ------ 1           4..7    +z
var cornerOffsets = [8][3]int32{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

var edgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// cubeFaces lists the corners of each side counter-clockwise as seen from
// outside the cube.
var cubeFaces = [6][4]int{
	{0, 3, 2, 1}, {4, 5, 6, 7},
	{0, 1, 5, 4}, {3, 7, 6, 2},
	{0, 4, 7, 3}, {1, 2, 6, 5},
}

const numEdges = 12

var (
	edgeFaces [numEdges]uint8 // bitmask of the sides each edge lies on
	edgeLower [numEdges]int   // corner with the smaller lattice key
	edgeAxis  [numEdges]uint8 // axis the edge runs along
	mcTable   [256]mcCase
)

// mcCase is the polygonization of one corner configuration. Vertex
// references below numEdges name the crossing on that cube edge; larger
// references name centers[ref-numEdges], an extra vertex at the mean of a
// polygon's crossings.
type mcCase struct {
	tris    [][3]int8
	centers [][]int8
}

func init() {
	for fi, f := range cubeFaces {
		for j := range 4 {
			edgeFaces[edgeBetween(f[j], f[(j+1)%4])] |= 1 << fi
		}
	}
	for e, c := range edgeCorners {
		a, b := cornerOffsets[c[0]], cornerOffsets[c[1]]
		edgeLower[e] = c[0]
		for axis := range 3 {
			if a[axis] != b[axis] {
				edgeAxis[e] = uint8(axis)
				if b[axis] < a[axis] {
					edgeLower[e] = c[1]
				}
			}
		}
	}
	for config := range 256 {
		mcTable[config] = buildCase(uint8(config))
	}
}

func edgeBetween(a, b int) int8 {
	for e, c := range edgeCorners {
		if (c[0] == a && c[1] == b) || (c[0] == b && c[1] == a) {
			return int8(e)
		}
	}
	panic("reconstruction: corners do not share an edge")
}

// buildCase derives the surface polygons for a configuration, where bit c
// set means corner c lies inside.
//
// On every side of the cube the crossings are visited counter-clockwise; a
// crossing entering the inside region is joined to the crossing that follows
// it. Neighboring cells visit a shared side in opposite order and so join
// the same pairs, which keeps the surface closed across cells. Chaining the
// joins yields closed polygons whose winding faces outward.
func buildCase(config uint8) mcCase {
	inside := func(c int) bool { return config&(1<<c) != 0 }

	type crossing struct {
		edge     int8
		entering bool
	}

	var next [numEdges]int8
	for i := range next {
		next[i] = -1
	}
	for _, f := range cubeFaces {
		xs := make([]crossing, 0, 4)
		for j := range 4 {
			a, b := f[j], f[(j+1)%4]
			if inside(a) != inside(b) {
				xs = append(xs, crossing{edge: edgeBetween(a, b), entering: inside(b)})
			}
		}
		for t, x := range xs {
			if x.entering {
				next[x.edge] = xs[(t+1)%len(xs)].edge
			}
		}
	}

	var cs mcCase
	var done [numEdges]bool
	for e := range int8(numEdges) {
		if next[e] < 0 || done[e] {
			continue
		}
		var poly []int8
		for cur := e; !done[cur]; cur = next[cur] {
			done[cur] = true
			poly = append(poly, cur)
		}
		cs.addPolygon(poly)
	}
	return cs
}

// addPolygon triangulates poly as a fan from the first vertex whose
// diagonals stay inside the cube. A diagonal between two crossings on the
// same side could also be produced by the neighboring cell, so polygons
// without such a vertex are fanned around a center vertex instead.
func (cs *mcCase) addPolygon(poly []int8) {
	n := len(poly)
	if n == 3 {
		cs.tris = append(cs.tris, [3]int8{poly[0], poly[1], poly[2]})
		return
	}

	for s := range n {
		if !fanIsInterior(poly, s) {
			continue
		}
		for i := 1; i < n-1; i++ {
			cs.tris = append(cs.tris, [3]int8{poly[s], poly[(s+i)%n], poly[(s+i+1)%n]})
		}
		return
	}

	ref := int8(numEdges + len(cs.centers))
	cs.centers = append(cs.centers, poly)
	for i := range n {
		cs.tris = append(cs.tris, [3]int8{ref, poly[i], poly[(i+1)%n]})
	}
}

func fanIsInterior(poly []int8, s int) bool {
	n := len(poly)
	for i := 2; i <= n-2; i++ {
		if edgeFaces[poly[s]]&edgeFaces[poly[(s+i)%n]] != 0 {
			return false
		}
	}
	return true
}
