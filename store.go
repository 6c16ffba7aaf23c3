package pipeline

import "errors"

var (
	ErrInvalidArgument = errors.New("pipeline: invalid argument")
	ErrInvalidFields   = errors.New("pipeline: invalid node fields")
	ErrDuplicateID     = errors.New("pipeline: duplicate node id")
	ErrDuplicateEdge   = errors.New("pipeline: duplicate edge")
	ErrUnknownEndpoint = errors.New("pipeline: edge endpoint is not a node")
	ErrNodeNotFound    = errors.New("pipeline: node not found")
)

// Observer receives the graph as it stands after a successful mutation.
type Observer func(Graph)

// Store holds the canonical node and edge lists of one pipeline.
// Every mutation is atomic: it either succeeds with all invariants intact
// or fails leaving the graph untouched.
type Store interface {
	// Nodes
	AddNode(node Node) error
	GetNode(id string) (Node, bool)
	UpdateNode(node Node) error
	RemoveNode(id string) bool
	ListNodes() []Node
	FindNodeByName(name string) (Node, bool)

	// Edges
	AddEdge(edge Edge) error
	RemoveEdge(id string) bool
	HasEdge(source, target, targetHandle string) bool
	ListEdges() []Edge

	// Graph (bulk operations)
	Replace(g Graph) error
	Snapshot() Graph

	// Subscribe registers o and returns a function that removes it.
	Subscribe(o Observer) (cancel func())
}
