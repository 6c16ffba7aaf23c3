package memory

import (
	"fmt"

	"github.com/meikuraledutech/pipeline"
)

// Replace swaps in a whole graph (nodes + edges) in one step.
// Edges without IDs get derived ones. The graph is checked as a unit
// (node schemas, unique node IDs, unique connections, no dangling
// endpoints); on any failure the current state is kept.
func (s *Store) Replace(g pipeline.Graph) error {
	next := New()
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: empty node id", pipeline.ErrInvalidArgument)
		}
		if err := n.Validate(); err != nil {
			return err
		}
		if _, ok := next.index[n.ID]; ok {
			return fmt.Errorf("%w: %s", pipeline.ErrDuplicateID, n.ID)
		}
		next.index[n.ID] = len(next.nodes)
		next.nodes = append(next.nodes, n)
	}
	for _, e := range g.Edges {
		e = e.Clone()
		if e.ID == "" {
			k := e.Key()
			e.ID = pipeline.EdgeID(k.Source, k.Target, k.TargetHandle)
		}
		if err := next.checkEdgeLocked(e); err != nil {
			return err
		}
		next.edges = append(next.edges, e)
		next.keys[e.Key()] = e.ID
		next.ids[e.ID] = struct{}{}
	}

	s.mu.Lock()
	s.reset(next.nodes, next.edges)
	s.commit()
	return nil
}

// Snapshot returns a copy of the current graph that later mutations do not
// affect. Slices are never nil.
func (s *Store) Snapshot() pipeline.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() pipeline.Graph {
	return pipeline.Graph{Nodes: s.nodes, Edges: s.edges}.Clone()
}
