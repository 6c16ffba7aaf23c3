package memory

import (
	"fmt"

	"github.com/meikuraledutech/pipeline"
)

// AddEdge inserts a single edge. If edge.ID is empty it is derived from
// the edge's endpoints.
// Returns ErrUnknownEndpoint if either end is not a current node and
// ErrDuplicateEdge if the same (source, target, targetHandle) connection
// or the same ID already exists.
func (s *Store) AddEdge(edge pipeline.Edge) error {
	edge = edge.Clone()
	if edge.ID == "" {
		k := edge.Key()
		edge.ID = pipeline.EdgeID(k.Source, k.Target, k.TargetHandle)
	}

	s.mu.Lock()
	if err := s.checkEdgeLocked(edge); err != nil {
		s.mu.Unlock()
		return err
	}
	s.edges = append(s.edges, edge)
	s.keys[edge.Key()] = edge.ID
	s.ids[edge.ID] = struct{}{}
	s.commit()
	return nil
}

func (s *Store) checkEdgeLocked(edge pipeline.Edge) error {
	if _, ok := s.index[edge.Source]; !ok {
		return fmt.Errorf("%w: source %q", pipeline.ErrUnknownEndpoint, edge.Source)
	}
	if _, ok := s.index[edge.Target]; !ok {
		return fmt.Errorf("%w: target %q", pipeline.ErrUnknownEndpoint, edge.Target)
	}
	if id, ok := s.keys[edge.Key()]; ok {
		return fmt.Errorf("%w: %s -> %s already connected as %s", pipeline.ErrDuplicateEdge, edge.Source, edge.Target, id)
	}
	if _, ok := s.ids[edge.ID]; ok {
		return fmt.Errorf("%w: id %s", pipeline.ErrDuplicateEdge, edge.ID)
	}
	return nil
}

// RemoveEdge deletes an edge by its ID.
// Reports whether anything was removed; removing an absent edge is a no-op.
func (s *Store) RemoveEdge(id string) bool {
	s.mu.Lock()
	if _, ok := s.ids[id]; !ok {
		s.mu.Unlock()
		return false
	}
	edges := make([]pipeline.Edge, 0, len(s.edges)-1)
	for _, e := range s.edges {
		if e.ID == id {
			delete(s.keys, e.Key())
			continue
		}
		edges = append(edges, e)
	}
	s.edges = edges
	delete(s.ids, id)
	s.commit()
	return true
}

// HasEdge reports whether the connection (source, target, targetHandle)
// exists under any ID.
func (s *Store) HasEdge(source, target, targetHandle string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[pipeline.EdgeKey{Source: source, Target: target, TargetHandle: targetHandle}]
	return ok
}

// ListEdges returns all edges in insertion order.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListEdges() []pipeline.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pipeline.Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.Clone()
	}
	return out
}
