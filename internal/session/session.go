// Package session runs one editor over a websocket connection. Each
// connection owns its own editor; messages are applied on the read goroutine
// so the single-threaded interaction model of the core holds.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/editor"
	"github.com/draftboard/draftboard/backend-go/internal/layout"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 512 * 1024
)

// Session binds a websocket connection to an editor.
type Session struct {
	ID     string
	conn   *websocket.Conn
	editor *editor.Editor
	send   chan []byte
}

// New returns a session over an accepted connection.
func New(id string, conn *websocket.Conn, ed *editor.Editor) *Session {
	return &Session{
		ID:     id,
		conn:   conn,
		editor: ed,
		send:   make(chan []byte, 64),
	}
}

// ReadPump reads and applies messages until the connection closes. Run on the
// connection's goroutine; it closes the send channel on exit so WritePump
// drains out.
func (s *Session) ReadPump(ctx context.Context) {
	defer func() {
		close(s.send)
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.conn.SetReadLimit(maxMsgSize)
	s.enqueue(TypeWelcome, WelcomePayload{SessionID: s.ID})
	s.pushState()

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("session read error", "error", err, "session", s.ID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid session message", "error", err, "session", s.ID)
			continue
		}

		s.handle(&msg)
	}
}

// WritePump flushes queued frames and keeps the connection alive with pings.
func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case data, ok := <-s.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				slog.Debug("session write error", "error", err, "session", s.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) handle(msg *Message) {
	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if decode(msg.Payload, &p) {
			s.editor.PointerDown(p.X, p.Y, p.Shift)
		}
	case TypePointerMove:
		var p PointerPayload
		if decode(msg.Payload, &p) {
			s.editor.PointerMove(p.X, p.Y)
		}
	case TypePointerUp:
		s.editor.PointerUp()
	case TypeToolSet:
		var p ToolPayload
		if decode(msg.Payload, &p) {
			s.editor.SetTool(editor.Tool(p.Tool))
		}
	case TypeCommand:
		var p CommandPayload
		if decode(msg.Payload, &p) {
			s.runCommand(p.Name)
		}
	case TypeNodeText:
		var p NodeTextPayload
		if decode(msg.Payload, &p) {
			s.editor.SetNodeText(p.NodeID, p.Text)
		}
	case TypeLayoutAuto:
		var p LayoutPayload
		if decode(msg.Payload, &p) {
			o := layout.Vertical
			if p.Orientation == string(layout.Horizontal) {
				o = layout.Horizontal
			}
			s.editor.AutoLayout(o)
		}
	case TypeAlign:
		var p AlignPayload
		if decode(msg.Payload, &p) {
			s.runAlign(p.Op)
		}
	case TypeViewCenter:
		var p ViewCenterPayload
		if decode(msg.Payload, &p) {
			s.editor.CenterView(p.Fit)
		}
	case TypeViewScale:
		var p ViewScalePayload
		if decode(msg.Payload, &p) {
			s.editor.View().SetScale(p.Scale)
		}
	case TypeImport:
		if err := s.editor.Import(msg.Payload); err != nil {
			s.enqueue(TypeError, ErrorPayload{Message: "import failed: " + err.Error()})
			return
		}
	case TypeExport:
		data, err := s.editor.Export()
		if err != nil {
			s.enqueue(TypeError, ErrorPayload{Message: "export failed: " + err.Error()})
			return
		}
		s.raw(TypeDiagramData, data)
		return
	default:
		slog.Debug("unknown message type", "type", msg.Type, "session", s.ID)
		return
	}

	s.pushState()
}

func (s *Session) runCommand(name string) {
	switch name {
	case "undo":
		s.editor.Undo()
	case "redo":
		s.editor.Redo()
	case "selectAll":
		s.editor.SelectAll()
	case "copy":
		s.editor.Copy()
	case "paste":
		s.editor.Paste()
	case "delete":
		s.editor.DeleteSelection()
	}
}

func (s *Session) runAlign(op string) {
	var fn func(*diagram.Diagram, []string) bool
	switch op {
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
		return
	}
	s.editor.Align(fn)
}

// pushState queues the full frame state for the client.
func (s *Session) pushState() {
	d := s.editor.Diagram()
	nodes := d.Nodes
	if nodes == nil {
		nodes = []diagram.Node{}
	}
	edges := d.Edges
	if edges == nil {
		edges = []diagram.Edge{}
	}
	selected := s.editor.SelectedNodes()
	if selected == nil {
		selected = []string{}
	}

	s.enqueue(TypeState, StatePayload{
		Nodes:         nodes,
		Edges:         edges,
		SelectedNodes: selected,
		SelectedEdge:  s.editor.SelectedEdge(),
		Tool:          string(s.editor.Tool()),
		Viewport:      *s.editor.View(),
		CanUndo:       s.editor.CanUndo(),
		CanRedo:       s.editor.CanRedo(),
	})
}

func (s *Session) enqueue(msgType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", msgType)
		return
	}
	s.raw(msgType, data)
}

func (s *Session) raw(msgType string, payload json.RawMessage) {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload})
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msgType)
		return
	}
	select {
	case s.send <- data:
	default:
		slog.Warn("session send buffer full, dropping frame", "session", s.ID)
	}
}

func decode(data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("decode payload", "error", err)
		return false
	}
	return true
}
