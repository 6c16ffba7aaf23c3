package memory

import (
	"fmt"

	"github.com/meikuraledutech/pipeline"
)

// AddNode appends a node. Returns ErrDuplicateID if the ID is taken.
func (s *Store) AddNode(node pipeline.Node) error {
	if node.ID == "" {
		return fmt.Errorf("%w: empty node id", pipeline.ErrInvalidArgument)
	}
	if err := node.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.index[node.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", pipeline.ErrDuplicateID, node.ID)
	}
	s.index[node.ID] = len(s.nodes)
	s.nodes = append(s.nodes, node)
	s.commit()
	return nil
}

// GetNode fetches a single node by its ID.
func (s *Store) GetNode(id string) (pipeline.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return pipeline.Node{}, false
	}
	return s.nodes[i], true
}

// UpdateNode replaces the fields and position of an existing node.
// The node type cannot change.
func (s *Store) UpdateNode(node pipeline.Node) error {
	if err := node.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	i, ok := s.index[node.ID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", pipeline.ErrNodeNotFound, node.ID)
	}
	if s.nodes[i].Type != node.Type {
		s.mu.Unlock()
		return fmt.Errorf("%w: node %s cannot change type from %s to %s",
			pipeline.ErrInvalidArgument, node.ID, s.nodes[i].Type, node.Type)
	}
	s.nodes[i] = node
	s.commit()
	return nil
}

// RemoveNode deletes a node together with every edge touching it.
// Reports whether anything was removed; removing an absent node is a no-op.
func (s *Store) RemoveNode(id string) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}

	nodes := make([]pipeline.Node, 0, len(s.nodes)-1)
	nodes = append(nodes, s.nodes[:i]...)
	nodes = append(nodes, s.nodes[i+1:]...)

	edges := make([]pipeline.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if e.Source == id || e.Target == id {
			continue
		}
		edges = append(edges, e)
	}

	s.reset(nodes, edges)
	s.commit()
	return true
}

// ListNodes returns all nodes in insertion order.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListNodes() []pipeline.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pipeline.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// FindNodeByName returns the first node, in insertion order, whose name
// field equals name.
func (s *Store) FindNodeByName(name string) (pipeline.Node, bool) {
	if name == "" {
		return pipeline.Node{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.Name() == name {
			return n, true
		}
	}
	return pipeline.Node{}, false
}
