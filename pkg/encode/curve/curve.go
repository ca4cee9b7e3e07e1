// Package curve assigns a curvature scalar to every edge so that parallel,
// anti-parallel and self-loop edges stay visually distinguishable.
//
// Resolve runs once per graph load. Edges are grouped by their unordered
// endpoint pair. A lone edge is straight, unless it is a self-loop which gets
// [SelfLoop]. Groups of two or more bow apart: each member's raw curvature is
// multiplied by a direction sign (+1 when the source sorts before the target,
// -1 otherwise), so reversed edges bend to opposite sides.
//
//	len == 2, anti-parallel: raw = Pair for both members
//	len == 2, same direction: raw = +Pair, -Pair in input order
//	len  > 2: raw = i/(len-1) - 0.5, spread over [-0.5, 0.5]
//
// There is no edge bundling.
package curve

import (
	"github.com/matzehuels/linkscope/pkg/graph"
)

const (
	// SelfLoop is the curvature of a lone self-loop.
	SelfLoop = 0.4

	// Pair is the curvature magnitude of a two-edge group.
	Pair = 0.2
)

// Resolve writes Curvature on every edge in place.
func Resolve(edges []graph.Edge) {
	groups := make(map[string][]int, len(edges))
	for i := range edges {
		k := groupKey(&edges[i])
		groups[k] = append(groups[k], i)
	}

	for _, members := range groups {
		switch n := len(members); {
		case n == 1:
			e := &edges[members[0]]
			if e.IsSelfLoop() {
				e.Curvature = SelfLoop
			} else {
				e.Curvature = 0
			}
		case n == 2:
			a, b := &edges[members[0]], &edges[members[1]]
			if a.Source == b.Target && a.Target == b.Source && !a.IsSelfLoop() {
				a.Curvature = Pair * direction(a)
				b.Curvature = Pair * direction(b)
			} else {
				a.Curvature = Pair * direction(a)
				b.Curvature = -Pair * direction(b)
			}
		default:
			last := float64(n - 1)
			for i, idx := range members {
				e := &edges[idx]
				e.Curvature = (float64(i)/last - 0.5) * direction(e)
			}
		}
	}
}

// direction is +1 when the edge's source sorts before its target.
func direction(e *graph.Edge) float64 {
	if e.Source < e.Target {
		return 1
	}
	return -1
}

func groupKey(e *graph.Edge) string {
	if e.Source <= e.Target {
		return e.Source + "\x00" + e.Target
	}
	return e.Target + "\x00" + e.Source
}
