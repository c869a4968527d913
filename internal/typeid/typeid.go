package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixNode    = "node"
	PrefixEdge    = "edge"
	PrefixDiagram = "diag"
	PrefixProject = "proj"
	PrefixSession = "sess"
	PrefixExport  = "exp"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewNodeID() string    { return New(PrefixNode) }
func NewEdgeID() string    { return New(PrefixEdge) }
func NewDiagramID() string { return New(PrefixDiagram) }
func NewProjectID() string { return New(PrefixProject) }
func NewSessionID() string { return New(PrefixSession) }
func NewExportID() string  { return New(PrefixExport) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}

// Generator satisfies the id-source collaborators of the editor and
// clipboard. The core never invents its own ids.
type Generator struct{}

func (Generator) NewNodeID() string { return NewNodeID() }
func (Generator) NewEdgeID() string { return NewEdgeID() }
