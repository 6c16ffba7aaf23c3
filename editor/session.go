// Package editor wires one pipeline editing session together: user
// events go through the variable extractor and the auto-wiring resolver
// into the graph store, whose observers see every change.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/autowire"
	"github.com/meikuraledutech/pipeline/memory"
	"github.com/meikuraledutech/pipeline/submit"
)

// ErrNoSubmitter is returned by Submit when the session has no backend.
var ErrNoSubmitter = errors.New("editor: no submitter configured")

// Submitter sends a graph for validation.
type Submitter interface {
	Submit(ctx context.Context, g pipeline.Graph) (submit.Result, error)
}

// Outcome is the result of an asynchronous submission.
type Outcome struct {
	Result submit.Result
	Err    error
}

// Session is a single open pipeline. Its allocator, store and resolver are
// private to it, so sessions never share IDs.
type Session struct {
	ID string

	ids       *pipeline.Allocator
	store     *memory.Store
	resolver  *autowire.Resolver
	submitter Submitter
	logger    *slog.Logger
	layout    autowire.Layout
}

// Option configures a Session.
type Option func(*Session)

// WithSubmitter sets the backend used by Submit.
func WithSubmitter(s Submitter) Option {
	return func(sess *Session) { sess.submitter = s }
}

// WithLayout sets where auto-wired nodes are placed.
func WithLayout(l autowire.Layout) Option {
	return func(sess *Session) { sess.layout = l }
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(sess *Session) {
		if l != nil {
			sess.logger = l
		}
	}
}

// New opens an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		ids:    pipeline.NewAllocator(),
		store:  memory.New(),
		logger: slog.Default(),
		layout: autowire.DefaultLayout(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.ID)
	s.resolver = autowire.New(s.store, s.ids, autowire.WithLayout(s.layout), autowire.WithLogger(s.logger))
	return s
}

// Store exposes the session's graph store to the rendering layer.
func (s *Session) Store() pipeline.Store { return s.store }

// Snapshot returns the current graph.
func (s *Session) Snapshot() pipeline.Graph { return s.store.Snapshot() }

// Subscribe registers an observer on the session's store.
func (s *Session) Subscribe(o pipeline.Observer) func() { return s.store.Subscribe(o) }

// Drop places a new node of type t with default fields.
func (s *Session) Drop(t pipeline.NodeType, pos pipeline.Position) (pipeline.Node, error) {
	id, err := s.ids.Next(t)
	if err != nil {
		return pipeline.Node{}, err
	}
	n, err := pipeline.NewNode(id, t, pos, nil)
	if err != nil {
		return pipeline.Node{}, err
	}
	if err := s.store.AddNode(n); err != nil {
		return pipeline.Node{}, err
	}
	s.logger.Debug("node dropped", "node_id", id, "type", t)
	return n, nil
}

// EditText sets the primary text of a text-bearing node and reconciles its
// variable references.
func (s *Session) EditText(id, text string) (autowire.Result, error) {
	n, ok := s.store.GetNode(id)
	if !ok {
		return autowire.Result{}, fmt.Errorf("%w: %s", pipeline.ErrNodeNotFound, id)
	}
	tb, ok := n.Fields.(pipeline.TextBearer)
	if !ok {
		return autowire.Result{}, fmt.Errorf("%w: %s nodes have no text field", pipeline.ErrInvalidArgument, n.Type)
	}
	return s.SetFields(id, tb.WithPrimaryText(text))
}

// Rename sets a node's name field.
func (s *Session) Rename(id, name string) error {
	n, ok := s.store.GetNode(id)
	if !ok {
		return fmt.Errorf("%w: %s", pipeline.ErrNodeNotFound, id)
	}
	_, err := s.SetFields(id, n.Fields.WithName(name))
	return err
}

// SetFields replaces a node's fields. For text-bearing nodes the primary
// text is scanned and missing variable sources are synthesized.
func (s *Session) SetFields(id string, f pipeline.Fields) (autowire.Result, error) {
	n, ok := s.store.GetNode(id)
	if !ok {
		return autowire.Result{}, fmt.Errorf("%w: %s", pipeline.ErrNodeNotFound, id)
	}
	n.Fields = f
	if err := s.store.UpdateNode(n); err != nil {
		return autowire.Result{}, err
	}
	tb, ok := f.(pipeline.TextBearer)
	if !ok {
		return autowire.Result{}, nil
	}
	return s.resolver.Reconcile(id, pipeline.ExtractVariables(tb.PrimaryText()))
}

// Move repositions a node.
func (s *Session) Move(id string, pos pipeline.Position) error {
	n, ok := s.store.GetNode(id)
	if !ok {
		return fmt.Errorf("%w: %s", pipeline.ErrNodeNotFound, id)
	}
	n.Position = pos
	return s.store.UpdateNode(n)
}

// Connect adds a user-drawn edge.
func (s *Session) Connect(source, sourceHandle, target, targetHandle string) (pipeline.Edge, error) {
	e := pipeline.NewEdge(source, sourceHandle, target, targetHandle)
	if err := s.store.AddEdge(e); err != nil {
		return pipeline.Edge{}, err
	}
	return e, nil
}

// Disconnect removes an edge. Reports whether it existed.
func (s *Session) Disconnect(edgeID string) bool {
	return s.store.RemoveEdge(edgeID)
}

// Delete removes a node and its edges. Reports whether it existed.
func (s *Session) Delete(id string) bool {
	ok := s.store.RemoveNode(id)
	if ok {
		s.logger.Debug("node deleted", "node_id", id)
	}
	return ok
}

// Load replaces the session's graph and advances the allocator past every
// loaded node ID.
func (s *Session) Load(g pipeline.Graph) error {
	if err := s.store.Replace(g); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		s.ids.Reserve(n.ID)
	}
	return nil
}

// Submit sends the current graph to the configured backend.
func (s *Session) Submit(ctx context.Context) (submit.Result, error) {
	if s.submitter == nil {
		return submit.Result{}, ErrNoSubmitter
	}
	return s.submitter.Submit(ctx, s.store.Snapshot())
}

// SubmitAsync snapshots the graph now and submits it in the background.
// The session stays usable meanwhile and further submissions may be
// started before this one finishes. The channel receives exactly one
// Outcome.
func (s *Session) SubmitAsync(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	if s.submitter == nil {
		out <- Outcome{Err: ErrNoSubmitter}
		return out
	}
	g := s.store.Snapshot()
	go func() {
		res, err := s.submitter.Submit(ctx, g)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}
