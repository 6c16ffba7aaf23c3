package memory

import (
	"sync"

	"github.com/meikuraledutech/pipeline"
)

// Store implements pipeline.Store in process memory. All mutations are
// serialized behind one mutex; observers are notified in mutation order.
type Store struct {
	mu    sync.RWMutex
	nodes []pipeline.Node
	index map[string]int // node id -> position in nodes
	edges []pipeline.Edge
	keys  map[pipeline.EdgeKey]string
	ids   map[string]struct{}

	observers map[int]pipeline.Observer
	order     []int
	nextObs   int

	// Deliveries are ticketed under mu and run in ticket order once mu is
	// released, so observers may read the store.
	notifyMu  sync.Mutex
	turn      *sync.Cond
	ticket    uint64
	delivered uint64
}

var _ pipeline.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	s := &Store{observers: make(map[int]pipeline.Observer)}
	s.turn = sync.NewCond(&s.notifyMu)
	s.reset(nil, nil)
	return s
}

// Subscribe registers o. Observers run synchronously after each successful
// mutation and must not mutate the store from inside the callback.
func (s *Store) Subscribe(o pipeline.Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// commit publishes the current state. It must be called with mu held for
// writing and returns with mu released. Observers run after mu is
// released, one mutation at a time, in the order the mutations committed.
func (s *Store) commit() {
	if len(s.order) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	obs := make([]pipeline.Observer, 0, len(s.order))
	for _, id := range s.order {
		obs = append(obs, s.observers[id])
	}
	ticket := s.ticket
	s.ticket++
	s.mu.Unlock()

	s.notifyMu.Lock()
	for s.delivered != ticket {
		s.turn.Wait()
	}
	s.notifyMu.Unlock()

	defer func() {
		s.notifyMu.Lock()
		s.delivered++
		s.turn.Broadcast()
		s.notifyMu.Unlock()
	}()
	for _, o := range obs {
		o(snap)
	}
}

// reset replaces the whole state and rebuilds the lookup tables.
func (s *Store) reset(nodes []pipeline.Node, edges []pipeline.Edge) {
	s.nodes = nodes
	s.edges = edges
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.index[n.ID] = i
	}
	s.keys = make(map[pipeline.EdgeKey]string, len(s.edges))
	s.ids = make(map[string]struct{}, len(s.edges))
	for _, e := range s.edges {
		s.keys[e.Key()] = e.ID
		s.ids[e.ID] = struct{}{}
	}
}
