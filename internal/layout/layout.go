// Package layout rearranges diagram nodes: topological auto-layout plus
// alignment and distribution over a selection.
package layout

import (
	"sort"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
)

// Orientation selects the stacking axis of auto-layout layers.
type Orientation string

const (
	Vertical   Orientation = "vertical"   // layers stack downward, items spread horizontally
	Horizontal Orientation = "horizontal" // layers stack rightward, items spread vertically
)

// Spacing between items within a layer and between layers.
const (
	ItemSpacing  = 140
	LayerSpacing = 170
)

// Auto assigns positions with a longest-path layering pass: a node's layer is
// one past its deepest predecessor, propagated Kahn-style from the
// zero-in-degree seeds. Cyclic graphs with no such seed fall back to an
// arbitrary single seed so the pass always makes progress. Explicit edge
// bends are cleared afterward so paths re-derive from the new geometry.
func Auto(d *diagram.Diagram, o Orientation) {
	if len(d.Nodes) == 0 {
		return
	}

	inDegree := make(map[string]int, len(d.Nodes))
	succ := make(map[string][]string, len(d.Nodes))
	for i := range d.Nodes {
		inDegree[d.Nodes[i].ID] = 0
	}
	for _, e := range d.Edges {
		if _, ok := inDegree[e.SourceID]; !ok {
			continue
		}
		if _, ok := inDegree[e.TargetID]; !ok {
			continue
		}
		succ[e.SourceID] = append(succ[e.SourceID], e.TargetID)
		inDegree[e.TargetID]++
	}

	layer := make(map[string]int, len(d.Nodes))
	remaining := make(map[string]int, len(d.Nodes))
	var queue []string
	for i := range d.Nodes {
		id := d.Nodes[i].ID
		remaining[id] = inDegree[id]
		if inDegree[id] == 0 {
			queue = append(queue, id)
			layer[id] = 0
		}
	}
	if len(queue) == 0 {
		// Every node sits on a cycle; seed with the first one.
		id := d.Nodes[0].ID
		queue = append(queue, id)
		layer[id] = 0
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range succ[id] {
			if layer[id]+1 > layer[next] {
				layer[next] = layer[id] + 1
			}
			remaining[next]--
			if remaining[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Group by layer, preserving diagram order within each group.
	groups := make(map[int][]int)
	maxLayer := 0
	for i := range d.Nodes {
		l := layer[d.Nodes[i].ID]
		groups[l] = append(groups[l], i)
		if l > maxLayer {
			maxLayer = l
		}
	}

	for l := 0; l <= maxLayer; l++ {
		members := groups[l]
		for slot, idx := range members {
			along := float64(slot) * ItemSpacing
			across := float64(l) * LayerSpacing
			if o == Horizontal {
				d.Nodes[idx].X = across
				d.Nodes[idx].Y = along
			} else {
				d.Nodes[idx].X = along
				d.Nodes[idx].Y = across
			}
		}
	}

	for i := range d.Edges {
		d.Edges[i].BendX = nil
		d.Edges[i].BendY = nil
	}
}

// selected collects pointers to the nodes named by ids, in diagram order.
func selected(d *diagram.Diagram, ids []string) []*diagram.Node {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var nodes []*diagram.Node
	for i := range d.Nodes {
		if want[d.Nodes[i].ID] {
			nodes = append(nodes, &d.Nodes[i])
		}
	}
	return nodes
}

// AlignLeft moves every selected node to the minimum x among the selection.
// Requires at least two nodes; returns whether anything changed.
func AlignLeft(d *diagram.Diagram, ids []string) bool {
	nodes := selected(d, ids)
	if len(nodes) < 2 {
		return false
	}
	minX := nodes[0].X
	for _, n := range nodes[1:] {
		minX = min(minX, n.X)
	}
	for _, n := range nodes {
		n.X = minX
	}
	return true
}

// AlignCenterX moves every selected node to the midpoint of the selection's
// min and max x.
func AlignCenterX(d *diagram.Diagram, ids []string) bool {
	nodes := selected(d, ids)
	if len(nodes) < 2 {
		return false
	}
	minX, maxX := nodes[0].X, nodes[0].X
	for _, n := range nodes[1:] {
		minX = min(minX, n.X)
		maxX = max(maxX, n.X)
	}
	mid := (minX + maxX) / 2
	for _, n := range nodes {
		n.X = mid
	}
	return true
}

// AlignTop moves every selected node to the minimum y among the selection.
func AlignTop(d *diagram.Diagram, ids []string) bool {
	nodes := selected(d, ids)
	if len(nodes) < 2 {
		return false
	}
	minY := nodes[0].Y
	for _, n := range nodes[1:] {
		minY = min(minY, n.Y)
	}
	for _, n := range nodes {
		n.Y = minY
	}
	return true
}

// AlignCenterY moves every selected node to the midpoint of the selection's
// min and max y.
func AlignCenterY(d *diagram.Diagram, ids []string) bool {
	nodes := selected(d, ids)
	if len(nodes) < 2 {
		return false
	}
	minY, maxY := nodes[0].Y, nodes[0].Y
	for _, n := range nodes[1:] {
		minY = min(minY, n.Y)
		maxY = max(maxY, n.Y)
	}
	mid := (minY + maxY) / 2
	for _, n := range nodes {
		n.Y = mid
	}
	return true
}

// DistributeX spaces the selected nodes evenly along x between the leftmost
// and rightmost members' existing positions, inclusive. Requires at least
// three nodes.
func DistributeX(d *diagram.Diagram, ids []string) bool {
	nodes := selected(d, ids)
	if len(nodes) < 3 {
		return false
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].X < nodes[j].X })
	first, last := nodes[0].X, nodes[len(nodes)-1].X
	step := (last - first) / float64(len(nodes)-1)
	for i, n := range nodes {
		n.X = first + step*float64(i)
	}
	return true
}

// DistributeY spaces the selected nodes evenly along y between the topmost
// and bottommost members' existing positions, inclusive.
func DistributeY(d *diagram.Diagram, ids []string) bool {
	nodes := selected(d, ids)
	if len(nodes) < 3 {
		return false
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Y < nodes[j].Y })
	first, last := nodes[0].Y, nodes[len(nodes)-1].Y
	step := (last - first) / float64(len(nodes)-1)
	for i, n := range nodes {
		n.Y = first + step*float64(i)
	}
	return true
}
