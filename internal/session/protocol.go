package session

import (
	"encoding/json"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/view"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client → server message types.
const (
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeToolSet     = "tool.set"
	TypeCommand     = "command"
	TypeNodeText    = "node.text"
	TypeLayoutAuto  = "layout.auto"
	TypeAlign       = "align"
	TypeViewCenter  = "view.center"
	TypeViewScale   = "view.scale"
	TypeImport      = "diagram.import"
	TypeExport      = "diagram.export"
)

// Server → client message types.
const (
	TypeWelcome     = "welcome"
	TypeState       = "state"
	TypeDiagramData = "diagram.data"
	TypeError       = "error"
)

type PointerPayload struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift,omitempty"`
}

type ToolPayload struct {
	Tool string `json:"tool"`
}

// CommandPayload names a discrete action: undo, redo, selectAll, copy, paste,
// delete.
type CommandPayload struct {
	Name string `json:"name"`
}

type NodeTextPayload struct {
	NodeID string `json:"nodeId"`
	Text   string `json:"text"`
}

type LayoutPayload struct {
	Orientation string `json:"orientation"`
}

// AlignPayload names an alignment op: left, centerX, top, centerY,
// distributeX, distributeY.
type AlignPayload struct {
	Op string `json:"op"`
}

type ViewCenterPayload struct {
	Fit bool `json:"fit"`
}

type ViewScalePayload struct {
	Scale float64 `json:"scale"`
}

type WelcomePayload struct {
	SessionID string `json:"sessionId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// StatePayload is the full frame state pushed after every handled message.
type StatePayload struct {
	Nodes         []diagram.Node `json:"nodes"`
	Edges         []diagram.Edge `json:"edges"`
	SelectedNodes []string       `json:"selectedNodes"`
	SelectedEdge  string         `json:"selectedEdge,omitempty"`
	Tool          string         `json:"tool"`
	Viewport      view.Viewport  `json:"viewport"`
	CanUndo       bool           `json:"canUndo"`
	CanRedo       bool           `json:"canRedo"`
}
