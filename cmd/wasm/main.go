//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/editor"
	"github.com/draftboard/draftboard/backend-go/internal/layout"
	"github.com/draftboard/draftboard/backend-go/internal/typeid"
	"github.com/draftboard/draftboard/backend-go/internal/view"
)

var ed *editor.Editor

// jsPrompt blocks on window.prompt for double-click text edits.
type jsPrompt struct{}

func (jsPrompt) PromptText(current string) (string, bool) {
	result := js.Global().Call("prompt", "Text:", current)
	if result.IsNull() {
		return "", false
	}
	return result.String(), true
}

func main() {
	ed = editor.New(view.New(1280, 800), typeid.Generator{}, jsPrompt{})

	board := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	board.Set("pointerDown", js.FuncOf(pointerDown))
	board.Set("pointerMove", js.FuncOf(pointerMove))
	board.Set("pointerUp", js.FuncOf(pointerUp))
	board.Set("doubleClick", js.FuncOf(doubleClick))
	board.Set("setTool", js.FuncOf(setTool))
	board.Set("setViewportSize", js.FuncOf(setViewportSize))
	board.Set("setScale", js.FuncOf(setScale))
	board.Set("centerView", js.FuncOf(centerView))
	board.Set("undo", js.FuncOf(undo))
	board.Set("redo", js.FuncOf(redo))
	board.Set("selectAll", js.FuncOf(selectAll))
	board.Set("copySelection", js.FuncOf(copySelection))
	board.Set("paste", js.FuncOf(paste))
	board.Set("deleteSelection", js.FuncOf(deleteSelection))
	board.Set("setNodeText", js.FuncOf(setNodeText))
	board.Set("autoLayout", js.FuncOf(autoLayout))
	board.Set("align", js.FuncOf(align))
	board.Set("importDiagram", js.FuncOf(importDiagram))

	// --- Queries (frontend ← backend) ---
	board.Set("exportDiagram", js.FuncOf(exportDiagram))
	board.Set("getState", js.FuncOf(getState))

	js.Global().Set("draftboard", board)
	js.Global().Set("draftboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	shift := len(args) > 2 && args[2].Truthy()
	ed.PointerDown(args[0].Float(), args[1].Float(), shift)
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.PointerMove(args[0].Float(), args[1].Float())
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	ed.PointerUp()
	return nil
}

func doubleClick(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.DoubleClick(args[0].Float(), args[1].Float())
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.SetTool(editor.Tool(args[0].String()))
	return nil
}

func setViewportSize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	ed.View().Width = args[0].Float()
	ed.View().Height = args[1].Float()
	return nil
}

func setScale(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.View().SetScale(args[0].Float())
	return nil
}

func centerView(this js.Value, args []js.Value) interface{} {
	fit := len(args) > 0 && args[0].Truthy()
	ed.CenterView(fit)
	return nil
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Redo())
}

func selectAll(this js.Value, args []js.Value) interface{} {
	ed.SelectAll()
	return nil
}

func copySelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Copy())
}

func paste(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Paste())
}

func deleteSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.DeleteSelection())
}

func setNodeText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.SetNodeText(args[0].String(), args[1].String()))
}

func autoLayout(this js.Value, args []js.Value) interface{} {
	o := layout.Vertical
	if len(args) > 0 && args[0].String() == string(layout.Horizontal) {
		o = layout.Horizontal
	}
	ed.AutoLayout(o)
	return nil
}

func align(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	var fn func(*diagram.Diagram, []string) bool
	switch args[0].String() {
	case "left":
		fn = layout.AlignLeft
	case "centerX":
		fn = layout.AlignCenterX
	case "top":
		fn = layout.AlignTop
	case "centerY":
		fn = layout.AlignCenterY
	case "distributeX":
		fn = layout.DistributeX
	case "distributeY":
		fn = layout.DistributeY
	default:
		return js.ValueOf(false)
	}
	return js.ValueOf(ed.Align(fn))
}

func importDiagram(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing diagram JSON"})
	}
	if err := ed.Import([]byte(args[0].String())); err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func exportDiagram(this js.Value, args []js.Value) interface{} {
	data, err := ed.Export()
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(string(data))
}

// getState returns the full frame state as JSON: diagram, selection, tool,
// viewport, and per-node outlines plus per-edge paths for the renderer.
func getState(this js.Value, args []js.Value) interface{} {
	d := ed.Diagram()

	type edgePath struct {
		ID     string       `json:"id"`
		Path   diagram.Path `json:"path"`
		Exists bool         `json:"exists"`
	}
	outlines := make(map[string]diagram.Outline, len(d.Nodes))
	for i := range d.Nodes {
		outlines[d.Nodes[i].ID] = diagram.NodeOutline(&d.Nodes[i])
	}
	paths := make([]edgePath, 0, len(d.Edges))
	for i := range d.Edges {
		p, ok := d.EdgePath(&d.Edges[i])
		paths = append(paths, edgePath{ID: d.Edges[i].ID, Path: p, Exists: ok})
	}

	state := map[string]interface{}{
		"nodes":         d.Nodes,
		"edges":         d.Edges,
		"outlines":      outlines,
		"paths":         paths,
		"selectedNodes": ed.SelectedNodes(),
		"selectedEdge":  ed.SelectedEdge(),
		"activeNode":    ed.ActiveNode(),
		"connectSource": ed.ConnectSource(),
		"tool":          string(ed.Tool()),
		"viewport":      ed.View(),
		"canUndo":       ed.CanUndo(),
		"canRedo":       ed.CanRedo(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}
