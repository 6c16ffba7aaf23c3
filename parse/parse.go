// Package parse implements the pipeline validation service: it counts a
// submitted graph's nodes and edges and reports whether it is acyclic.
package parse

// Request is the body of POST /pipelines/parse. Only the fields the
// analysis needs are decoded; everything else a client sends is ignored.
type Request struct {
	Nodes []RequestNode `json:"nodes"`
	Edges []RequestEdge `json:"edges"`
}

// RequestNode is the part of a submitted node the analysis reads.
type RequestNode struct {
	ID string `json:"id"`
}

// RequestEdge is the part of a submitted edge the analysis reads.
type RequestEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Report is the service's answer.
type Report struct {
	NumNodes int  `json:"num_nodes"`
	NumEdges int  `json:"num_edges"`
	IsDAG    bool `json:"is_dag"`
}

// Analyze counts req's nodes and edges and checks for directed cycles.
// Edges leaving an unknown node are ignored for the cycle check but still
// counted.
func Analyze(req Request) Report {
	return Report{
		NumNodes: len(req.Nodes),
		NumEdges: len(req.Edges),
		IsDAG:    !hasCycle(req.Nodes, req.Edges),
	}
}

// hasCycle runs a three-colour DFS over the source -> target adjacency.
func hasCycle(nodes []RequestNode, edges []RequestEdge) bool {
	adj := make(map[string][]string, len(nodes))
	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := adj[n.ID]; !ok {
			adj[n.ID] = nil
			order = append(order, n.ID)
		}
	}
	for _, e := range edges {
		if _, ok := adj[e.Source]; ok {
			adj[e.Source] = append(adj[e.Source], e.Target)
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(adj))

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, id := range order {
		if state[id] == unvisited && dfs(id) {
			return true
		}
	}
	return false
}
