// Package clipboard implements copy/paste of diagram fragments with id
// remapping and a cumulative paste offset. The payload lives in memory;
// optionally it is mirrored to the OS clipboard as diagram JSON so fragments
// can travel between running instances.
package clipboard

import (
	"log/slog"

	sysclip "github.com/atotto/clipboard"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
)

// PasteOffset is the diagonal shift applied per successive paste so repeated
// pastes fan out visibly.
const PasteOffset = 28

// IDSource provides fresh unique ids for pasted entities.
type IDSource interface {
	NewNodeID() string
	NewEdgeID() string
}

// Clipboard holds the copied fragment and the paste counter. Copying resets
// the counter.
type Clipboard struct {
	payload    *diagram.Diagram
	pasteCount int
	mirrorOS   bool
}

// New returns an empty clipboard. With mirrorOS set, copies are also written
// to the system clipboard and pastes fall back to reading it; both are
// best-effort and failures degrade silently (headless hosts have no system
// clipboard).
func New(mirrorOS bool) *Clipboard {
	return &Clipboard{mirrorOS: mirrorOS}
}

// IsEmpty reports whether there is nothing to paste.
func (c *Clipboard) IsEmpty() bool {
	return c.payload == nil || len(c.payload.Nodes) == 0
}

// Copy stores a deep copy of the named nodes and of every edge whose both
// endpoints are in the set. Returns false (leaving the clipboard untouched)
// when no named node exists. Does not touch history.
func (c *Clipboard) Copy(d *diagram.Diagram, nodeIDs []string) bool {
	want := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		want[id] = true
	}

	payload := diagram.New()
	for i := range d.Nodes {
		if want[d.Nodes[i].ID] {
			payload.Nodes = append(payload.Nodes, d.Nodes[i])
		}
	}
	if len(payload.Nodes) == 0 {
		return false
	}

	copied := make(map[string]bool, len(payload.Nodes))
	for _, n := range payload.Nodes {
		copied[n.ID] = true
	}
	for _, e := range d.Edges {
		if copied[e.SourceID] && copied[e.TargetID] {
			payload.Edges = append(payload.Edges, e)
		}
	}

	c.payload = payload.Clone()
	c.pasteCount = 0

	if c.mirrorOS {
		if data, err := c.payload.Export(); err == nil {
			if err := sysclip.WriteAll(string(data)); err != nil {
				slog.Debug("system clipboard write failed", "error", err)
			}
		}
	}
	return true
}

// Paste appends the payload to d with fresh ids from src, every edge endpoint
// remapped through the substitution table built in the same pass. Each paste
// shifts the fragment by a further PasteOffset diagonal, explicit bends
// included. Returns the new node ids, or nil when the clipboard is empty.
func (c *Clipboard) Paste(d *diagram.Diagram, src IDSource) []string {
	payload := c.payload
	if c.IsEmpty() && c.mirrorOS {
		payload = c.readSystem()
		if payload != nil {
			c.payload = payload
			c.pasteCount = 0
		}
	}
	if payload == nil || len(payload.Nodes) == 0 {
		return nil
	}

	c.pasteCount++
	offset := float64(c.pasteCount) * PasteOffset

	remap := make(map[string]string, len(payload.Nodes))
	newIDs := make([]string, 0, len(payload.Nodes))
	for _, n := range payload.Nodes {
		id := src.NewNodeID()
		remap[n.ID] = id
		n.ID = id
		n.X += offset
		n.Y += offset
		d.AddNode(n)
		newIDs = append(newIDs, id)
	}

	for _, e := range payload.Edges {
		srcID, okS := remap[e.SourceID]
		tgtID, okT := remap[e.TargetID]
		if !okS || !okT {
			// Endpoint left the copied set (possible for payloads read from
			// the system clipboard); drop the edge.
			continue
		}
		e.ID = src.NewEdgeID()
		e.SourceID = srcID
		e.TargetID = tgtID
		if e.BendX != nil && e.BendY != nil {
			bx, by := *e.BendX+offset, *e.BendY+offset
			e.BendX, e.BendY = &bx, &by
		}
		d.AddEdge(e)
	}

	return newIDs
}

// readSystem attempts to parse a diagram payload from the OS clipboard.
func (c *Clipboard) readSystem() *diagram.Diagram {
	text, err := sysclip.ReadAll()
	if err != nil || text == "" {
		return nil
	}
	parsed, err := diagram.Parse([]byte(text))
	if err != nil || len(parsed.Nodes) == 0 {
		return nil
	}
	return parsed
}
