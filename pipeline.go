package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NodeType identifies which kind of node a vertex is. The values are the
// wire names the canvas uses.
type NodeType string

const (
	NodeTypeInput  NodeType = "customInput"
	NodeTypeOutput NodeType = "customOutput"
	NodeTypeText   NodeType = "text"
	NodeTypeMath   NodeType = "math"
	NodeTypeLLM    NodeType = "llm"
)

// NodeTypes lists every supported node type.
var NodeTypes = []NodeType{NodeTypeInput, NodeTypeOutput, NodeTypeText, NodeTypeMath, NodeTypeLLM}

// Valid reports whether t is one of the fixed node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeInput, NodeTypeOutput, NodeTypeText, NodeTypeMath, NodeTypeLLM:
		return true
	}
	return false
}

// Position is a canvas coordinate. Only the rendering layer moves nodes.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Graph is a point-in-time view of a pipeline: nodes and edges in
// insertion order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a typed vertex. Type is fixed at creation and Fields always
// holds the variant matching Type.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Fields   Fields   `json:"fields"`
}

// Edge connects a node's output handle to another node's input handle.
// An empty handle serializes as null.
type Edge struct {
	ID           string  `json:"id"`
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle"`
	TargetHandle *string `json:"targetHandle"`
}

// NewNode builds a node and validates its field schema. Nil fields are
// replaced by the type's defaults.
func NewNode(id string, t NodeType, pos Position, f Fields) (Node, error) {
	if !t.Valid() {
		return Node{}, fmt.Errorf("%w: unknown node type %q", ErrInvalidArgument, t)
	}
	if id == "" {
		return Node{}, fmt.Errorf("%w: empty node id", ErrInvalidArgument)
	}
	if f == nil {
		f = DefaultFields(t)
	}
	n := Node{ID: id, Type: t, Position: pos, Fields: f}
	if err := n.Validate(); err != nil {
		return Node{}, err
	}
	return n, nil
}

// Validate checks that the fields variant matches the node type and
// satisfies its schema.
func (n Node) Validate() error {
	if !n.Type.Valid() {
		return fmt.Errorf("%w: unknown node type %q", ErrInvalidArgument, n.Type)
	}
	if n.Fields == nil {
		return fmt.Errorf("%w: node %s has no fields", ErrInvalidFields, n.ID)
	}
	if n.Fields.Type() != n.Type {
		return fmt.Errorf("%w: node %s of type %s carries %s fields", ErrInvalidFields, n.ID, n.Type, n.Fields.Type())
	}
	return validateFields(n.Fields)
}

// Name returns the value of the node's name field.
func (n Node) Name() string {
	if n.Fields == nil {
		return ""
	}
	return n.Fields.Name()
}

// SourceHandle is the handle edges leave this node from.
func (n Node) SourceHandle() string {
	if n.Type == NodeTypeOutput {
		return n.ID + "-output"
	}
	return n.ID + "-value"
}

// TargetHandle is the fixed input handle of sink nodes. It is empty for
// types that only take variable inputs.
func (n Node) TargetHandle() string {
	switch n.Type {
	case NodeTypeOutput, NodeTypeLLM:
		return n.ID + "-input"
	}
	return ""
}

// VariableHandle is the input handle a text-bearing node exposes for a
// {{name}} reference.
func VariableHandle(name string) string {
	return "var-" + name
}

type nodeJSON struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Position Position        `json:"position"`
	Fields   json.RawMessage `json:"fields"`
}

// UnmarshalJSON decodes fields into the variant selected by "type".
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f, err := decodeFields(raw.Type, raw.Fields)
	if err != nil {
		return err
	}
	*n = Node{ID: raw.ID, Type: raw.Type, Position: raw.Position, Fields: f}
	return nil
}

// edgeNamespace scopes the UUIDv5 edge identifiers.
var edgeNamespace = uuid.MustParse("9a0f3d5e-6c41-4b8e-b2d7-1e5f0c8a3b64")

// EdgeID derives the identifier of the connection (source, target,
// targetHandle). The same triple always yields the same ID.
func EdgeID(source, target, targetHandle string) string {
	name := source + "\x00" + target + "\x00" + targetHandle
	return "edge-" + uuid.NewSHA1(edgeNamespace, []byte(name)).String()
}

// NewEdge builds an edge whose ID is derived from its endpoints.
func NewEdge(source, sourceHandle, target, targetHandle string) Edge {
	return Edge{
		ID:           EdgeID(source, target, targetHandle),
		Source:       source,
		Target:       target,
		SourceHandle: handle(sourceHandle),
		TargetHandle: handle(targetHandle),
	}
}

// Key returns the (source, target, targetHandle) triple that identifies the
// connection regardless of the edge's ID. A nil and an empty target handle
// give the same key.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, TargetHandle: deref(e.TargetHandle)}
}

// EdgeKey is the uniqueness key of an edge. TargetHandle is "" when the
// edge has no target handle; nil and "" are the same connection, matching
// NewEdge and Clone, which store "" as nil.
type EdgeKey struct {
	Source       string
	Target       string
	TargetHandle string
}

// Clone returns a deep copy of the edge.
func (e Edge) Clone() Edge {
	e.SourceHandle = handle(deref(e.SourceHandle))
	e.TargetHandle = handle(deref(e.TargetHandle))
	return e
}

// Clone returns a copy that shares no mutable state with g.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	for i, e := range g.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}

func handle(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
