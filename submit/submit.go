// Package submit sends a pipeline graph to the validation service and
// reports what it found.
package submit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"
	"github.com/meikuraledutech/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ParsePath is the validation endpoint relative to the backend base URL.
const ParsePath = "/pipelines/parse"

var submissions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pipeline_submissions_total",
	Help: "Pipeline submissions by outcome",
}, []string{"outcome"})

// ErrSubmission matches every *Error via errors.Is.
var ErrSubmission = errors.New("pipeline: submission failed")

// Error is returned when the service cannot be reached or answers with a
// non-2xx status. Message is what the user should see.
type Error struct {
	Status  int // 0 for transport failures
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrSubmission }

// Result is the service's verdict, passed through unchanged.
type Result struct {
	NodeCount int  `json:"num_nodes"`
	EdgeCount int  `json:"num_edges"`
	IsDAG     bool `json:"is_dag"`
}

type request struct {
	Nodes []pipeline.Node `json:"nodes"`
	Edges []pipeline.Edge `json:"edges"`
}

type errorBody struct {
	Detail *string `json:"detail"`
}

// Client talks to one validation service. It is safe for concurrent use
// and places no limit on in-flight submissions.
type Client struct {
	baseURL string
	http    *client.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero leaves the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    client.New(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit posts g's nodes and edges as-is and returns the reported counts
// and acyclicity. Failures come back as *Error; nothing is retried.
func (c *Client) Submit(ctx context.Context, g pipeline.Graph) (Result, error) {
	body := request{Nodes: g.Nodes, Edges: g.Edges}
	if body.Nodes == nil {
		body.Nodes = []pipeline.Node{}
	}
	if body.Edges == nil {
		body.Edges = []pipeline.Edge{}
	}

	url := c.baseURL + ParsePath
	logger := c.logger.With("url", url, "nodes", len(body.Nodes), "edges", len(body.Edges))
	logger.Debug("submitting pipeline")

	resp, err := c.http.Post(url, client.Config{Ctx: ctx, Body: body})
	if err != nil {
		submissions.WithLabelValues("transport_error").Inc()
		logger.Warn("submission transport failure", "error", err)
		return Result{}, &Error{Message: err.Error(), Err: err}
	}
	defer resp.Close()

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		submissions.WithLabelValues("rejected").Inc()
		e := &Error{Status: status, Message: fmt.Sprintf("Request failed with status code %d", status)}
		var eb errorBody
		if json.Unmarshal(resp.Body(), &eb) == nil && eb.Detail != nil {
			e.Message = *eb.Detail
		}
		logger.Warn("submission rejected", "status", status, "detail", e.Message)
		return Result{}, e
	}

	var res Result
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		submissions.WithLabelValues("bad_response").Inc()
		return Result{}, &Error{Status: status, Message: fmt.Sprintf("decode response: %v", err), Err: err}
	}
	submissions.WithLabelValues("ok").Inc()
	logger.Info("pipeline submitted", "num_nodes", res.NodeCount, "num_edges", res.EdgeCount, "is_dag", res.IsDAG)
	return res, nil
}
