package editor

import (
	"fmt"

	"github.com/meikuraledutech/pipeline"
)

// EventKind names a user interaction.
type EventKind string

const (
	EventDrop       EventKind = "drop"
	EventEdit       EventKind = "edit"
	EventRename     EventKind = "rename"
	EventMove       EventKind = "move"
	EventConnect    EventKind = "connect"
	EventDisconnect EventKind = "disconnect"
	EventDelete     EventKind = "delete"
)

// Event is a serialized user interaction. Which fields matter depends on
// Kind:
//
//	drop        Type, Position
//	edit        Node, Text
//	rename      Node, Name
//	move        Node, Position
//	connect     Source, SourceHandle, Target, TargetHandle
//	disconnect  Edge, or Source, Target, TargetHandle
//	delete      Node
type Event struct {
	Kind         EventKind         `json:"kind" yaml:"kind"`
	Type         pipeline.NodeType `json:"type,omitempty" yaml:"type,omitempty"`
	Node         string            `json:"node,omitempty" yaml:"node,omitempty"`
	Edge         string            `json:"edge,omitempty" yaml:"edge,omitempty"`
	Position     pipeline.Position `json:"position" yaml:"position"`
	Text         string            `json:"text,omitempty" yaml:"text,omitempty"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty"`
	Source       string            `json:"source,omitempty" yaml:"source,omitempty"`
	SourceHandle string            `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	Target       string            `json:"target,omitempty" yaml:"target,omitempty"`
	TargetHandle string            `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// Apply dispatches ev to the matching session operation. Removing
// something that is already gone is not an error.
func (s *Session) Apply(ev Event) error {
	switch ev.Kind {
	case EventDrop:
		_, err := s.Drop(ev.Type, ev.Position)
		return err
	case EventEdit:
		_, err := s.EditText(ev.Node, ev.Text)
		return err
	case EventRename:
		return s.Rename(ev.Node, ev.Name)
	case EventMove:
		return s.Move(ev.Node, ev.Position)
	case EventConnect:
		_, err := s.Connect(ev.Source, ev.SourceHandle, ev.Target, ev.TargetHandle)
		return err
	case EventDisconnect:
		id := ev.Edge
		if id == "" {
			id = pipeline.EdgeID(ev.Source, ev.Target, ev.TargetHandle)
		}
		s.Disconnect(id)
		return nil
	case EventDelete:
		s.Delete(ev.Node)
		return nil
	}
	return fmt.Errorf("%w: unknown event kind %q", pipeline.ErrInvalidArgument, ev.Kind)
}

// Replay applies events in order and stops at the first failure.
func (s *Session) Replay(events []Event) error {
	for i, ev := range events {
		if err := s.Apply(ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev.Kind, err)
		}
	}
	return nil
}
