// Package autowire keeps a text-bearing node's {{variable}} references
// backed by upstream source nodes.
//
// For every referenced name that no node provides yet, the resolver drops a
// new node to the left of the text node and connects its output to the
// text node's var-<name> handle. Synthesis is one-way: removing a reference
// from the text never removes what was created for it.
package autowire

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/meikuraledutech/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	synthesizedNodes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_autowire_nodes_total",
		Help: "Source nodes synthesized for variable references, by node type",
	}, []string{"type"})

	synthesizedEdges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_autowire_edges_total",
		Help: "Edges synthesized for variable references",
	})

	skippedReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_autowire_skipped_total",
		Help: "Variable references left alone, by reason",
	}, []string{"reason"})
)

// Layout places synthesized nodes relative to the text node.
type Layout struct {
	// OffsetX is how far left of the text node new nodes are placed.
	OffsetX float64 `yaml:"offset_x" validate:"gte=0"`
	// StepY separates consecutive variables vertically.
	StepY float64 `yaml:"step_y" validate:"gte=0"`
	// Margin is the minimum distance from the canvas origin on both axes.
	Margin float64 `yaml:"margin" validate:"gte=0"`
}

// DefaultLayout matches the canvas defaults.
func DefaultLayout() Layout {
	return Layout{OffsetX: 250, StepY: 80, Margin: 20}
}

// Position returns where the idx-th variable's node goes for a text node
// at anchor.
func (l Layout) Position(anchor pipeline.Position, idx int) pipeline.Position {
	return pipeline.Position{
		X: max(anchor.X-l.OffsetX, l.Margin),
		Y: max(anchor.Y+float64(idx)*l.StepY, l.Margin),
	}
}

// Result lists what a reconciliation created.
type Result struct {
	Nodes []string
	Edges []string
}

// Resolver synthesizes source nodes and edges for variable references.
type Resolver struct {
	store  pipeline.Store
	ids    *pipeline.Allocator
	layout Layout
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLayout overrides DefaultLayout.
func WithLayout(l Layout) Option {
	return func(r *Resolver) { r.layout = l }
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Resolver that mutates store and takes IDs from ids.
func New(store pipeline.Store, ids *pipeline.Allocator, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		ids:    ids,
		layout: DefaultLayout(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classify maps a variable name onto a node type, case-insensitively.
// Names outside the type vocabulary become Input nodes.
func Classify(name string) pipeline.NodeType {
	switch strings.ToLower(name) {
	case "input":
		return pipeline.NodeTypeInput
	case "output":
		return pipeline.NodeTypeOutput
	case "llm":
		return pipeline.NodeTypeLLM
	case "text":
		return pipeline.NodeTypeText
	case "math":
		return pipeline.NodeTypeMath
	}
	return pipeline.NodeTypeInput
}

// Reconcile makes sure every name in names is provided to textNodeID.
// A name already carried by some node's name field is left alone;
// otherwise a node is created for it and wired to the var-<name> handle.
// Store rejections for individual names are logged and skipped; the only
// error returned is ErrNodeNotFound for a missing text node.
// Calling it again with the same arguments creates nothing new.
func (r *Resolver) Reconcile(textNodeID string, names []string) (Result, error) {
	var res Result
	textNode, ok := r.store.GetNode(textNodeID)
	if !ok {
		return res, fmt.Errorf("%w: %s", pipeline.ErrNodeNotFound, textNodeID)
	}
	logger := r.logger.With("node_id", textNodeID)

	for idx, name := range names {
		if existing, ok := r.store.FindNodeByName(name); ok {
			logger.Debug("variable already provided", "variable", name, "provider", existing.ID)
			skippedReferences.WithLabelValues("provided").Inc()
			continue
		}

		t := Classify(name)
		id, err := r.ids.Next(t)
		if err != nil {
			logger.Error("allocate node id", "variable", name, "type", t, "error", err)
			skippedReferences.WithLabelValues("allocate").Inc()
			continue
		}
		node, err := pipeline.NewNode(id, t, r.layout.Position(textNode.Position, idx), pipeline.DefaultFields(t).WithName(name))
		if err != nil {
			logger.Debug("build source node", "variable", name, "error", err)
			skippedReferences.WithLabelValues("invalid").Inc()
			continue
		}
		if err := r.store.AddNode(node); err != nil {
			logger.Debug("add source node", "variable", name, "node", id, "error", err)
			skippedReferences.WithLabelValues("add_node").Inc()
			continue
		}
		res.Nodes = append(res.Nodes, id)
		synthesizedNodes.WithLabelValues(string(t)).Inc()

		handle := pipeline.VariableHandle(name)
		if r.store.HasEdge(id, textNodeID, handle) {
			continue
		}
		edge := pipeline.NewEdge(id, node.SourceHandle(), textNodeID, handle)
		if err := r.store.AddEdge(edge); err != nil {
			logger.Debug("add source edge", "variable", name, "edge", edge.ID, "error", err)
			skippedReferences.WithLabelValues("add_edge").Inc()
			continue
		}
		res.Edges = append(res.Edges, edge.ID)
		synthesizedEdges.Inc()
		logger.Info("synthesized source node", "variable", name, "type", t, "source", id, "edge", edge.ID)
	}
	return res, nil
}
