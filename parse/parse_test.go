package parse

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(ids ...string) []RequestNode {
	out := make([]RequestNode, len(ids))
	for i, id := range ids {
		out[i] = RequestNode{ID: id}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Report
	}{
		{
			name: "empty",
			req:  Request{},
			want: Report{IsDAG: true},
		},
		{
			name: "chain",
			req:  Request{Nodes: nodes("a", "b", "c"), Edges: []RequestEdge{{"a", "b"}, {"b", "c"}}},
			want: Report{NumNodes: 3, NumEdges: 2, IsDAG: true},
		},
		{
			name: "diamond",
			req:  Request{Nodes: nodes("a", "b", "c", "d"), Edges: []RequestEdge{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}},
			want: Report{NumNodes: 4, NumEdges: 4, IsDAG: true},
		},
		{
			name: "two cycle",
			req:  Request{Nodes: nodes("a", "b"), Edges: []RequestEdge{{"a", "b"}, {"b", "a"}}},
			want: Report{NumNodes: 2, NumEdges: 2, IsDAG: false},
		},
		{
			name: "self loop",
			req:  Request{Nodes: nodes("a"), Edges: []RequestEdge{{"a", "a"}}},
			want: Report{NumNodes: 1, NumEdges: 1, IsDAG: false},
		},
		{
			name: "cycle behind an acyclic prefix",
			req:  Request{Nodes: nodes("x", "a", "b", "c"), Edges: []RequestEdge{{"x", "a"}, {"a", "b"}, {"b", "c"}, {"c", "a"}}},
			want: Report{NumNodes: 4, NumEdges: 4, IsDAG: false},
		},
		{
			name: "edges from unknown sources are ignored",
			req:  Request{Nodes: nodes("a"), Edges: []RequestEdge{{"ghost", "a"}, {"a", "ghost"}}},
			want: Report{NumNodes: 1, NumEdges: 2, IsDAG: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.req))
		})
	}
}

func TestApp_Ping(t *testing.T) {
	app := NewApp(nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"Ping":"Pong"}`, string(body))
}

func TestApp_Parse(t *testing.T) {
	app := NewApp(nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       string
	}{
		{
			name:       "full canvas payload",
			body:       `{"nodes":[{"id":"a","type":"customInput","position":{"x":0,"y":0},"fields":{"inputName":"a","inputType":"Text"}},{"id":"b","type":"text"}],"edges":[{"id":"e1","source":"a","target":"b","sourceHandle":"a-value","targetHandle":null}]}`,
			wantStatus: http.StatusOK,
			want:       `{"num_nodes":2,"num_edges":1,"is_dag":true}`,
		},
		{
			name:       "cycle",
			body:       `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"},{"source":"b","target":"a"}]}`,
			wantStatus: http.StatusOK,
			want:       `{"num_nodes":2,"num_edges":2,"is_dag":false}`,
		},
		{
			name:       "malformed",
			body:       `{"nodes":`,
			wantStatus: http.StatusBadRequest,
			want:       `{"detail":"invalid body"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/pipelines/parse", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

func TestApp_CORS(t *testing.T) {
	app := NewApp(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestReport_JSON(t *testing.T) {
	b, err := json.Marshal(Report{NumNodes: 1, NumEdges: 0, IsDAG: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"num_nodes":1,"num_edges":0,"is_dag":true}`, string(b))
}
