// Package editor holds the transient editing state that sits between user gestures and the
// page store.
package editor

import (
	"encoding/gob"
	"fmt"
)

func init() {
	gob.Register(DragState{})
}

// DragPhase enumerates the drag-and-drop states.
type DragPhase string

const (
	DragIdle     DragPhase = "idle"
	DragDragging DragPhase = "dragging"
	DragHovering DragPhase = "hovering"
)

// DragEvent is a gesture event as sent by the browser.
type DragEvent string

const (
	EventStart DragEvent = "start"
	EventOver  DragEvent = "over"
	EventDrop  DragEvent = "drop"
	EventEnd   DragEvent = "end"
)

// DragState is one reorder gesture: Idle, Dragging{From} or Hovering{From, Over}.
// The zero value is Idle.
type DragState struct {
	Phase DragPhase `json:"phase"`
	From  int       `json:"from"`
	Over  int       `json:"over"`
}

// Move is a reorder produced by a completed drop.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func Idle() DragState {
	return DragState{Phase: DragIdle}
}

// IsIdle reports whether no gesture is in progress.
func (s DragState) IsIdle() bool {
	return s.Phase == "" || s.Phase == DragIdle
}

// Start begins dragging the page at index from, abandoning any previous gesture.
func (s DragState) Start(from int) DragState {
	return DragState{Phase: DragDragging, From: from}
}

// Enter records the slot currently hovered. Ignored while idle.
func (s DragState) Enter(over int) DragState {
	if s.IsIdle() {
		return s
	}
	return DragState{Phase: DragHovering, From: s.From, Over: over}
}

// Drop finishes the gesture on slot to. A move is produced only when a source is set and
// differs from the target. The gesture always ends.
func (s DragState) Drop(to int) (DragState, Move, bool) {
	if s.IsIdle() || s.From == to {
		return Idle(), Move{}, false
	}
	return Idle(), Move{From: s.From, To: to}, true
}

// End cancels the gesture.
func (s DragState) End() DragState {
	return Idle()
}

// Apply feeds one browser event into the machine.
func (s DragState) Apply(event DragEvent, index int) (DragState, Move, bool, error) {
	switch event {
	case EventStart:
		return s.Start(index), Move{}, false, nil
	case EventOver:
		return s.Enter(index), Move{}, false, nil
	case EventDrop:
		next, move, ok := s.Drop(index)
		return next, move, ok, nil
	case EventEnd:
		return s.End(), Move{}, false, nil
	default:
		return s, Move{}, false, fmt.Errorf("unknown drag event %q", event)
	}
}

// IsDragged reports whether the page at index is the one being dragged.
func (s DragState) IsDragged(index int) bool {
	return !s.IsIdle() && s.From == index
}

// IsDropTarget reports whether the page at index is highlighted as the drop slot.
func (s DragState) IsDropTarget(index int) bool {
	return s.Phase == DragHovering && s.Over == index && s.From != index
}
