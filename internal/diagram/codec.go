package diagram

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a `{"nodes": [...], "edges": [...]}` document. Missing or
// null collections default to empty; every edge is normalized through
// EnsureDefaults. Malformed JSON is the only error.
func Parse(data []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse diagram: %w", err)
	}
	d.Normalize()
	return &d, nil
}

// Normalize defaults nil collections to empty and fills unset edge style
// fields. Every ingestion boundary that decodes a diagram from external data
// must run it, so style-dependent code never sees zero values.
func (d *Diagram) Normalize() {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	for i := range d.Edges {
		d.Edges[i].EnsureDefaults()
	}
}

// Export serializes the diagram verbatim. Nil collections are written as
// empty arrays so the output always round-trips through Parse.
func (d *Diagram) Export() ([]byte, error) {
	out := Diagram{Nodes: d.Nodes, Edges: d.Edges}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("export diagram: %w", err)
	}
	return data, nil
}
