package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/editor"
	"github.com/meikuraledutech/pipeline/submit"
)

func main() {
	ctx := context.Background()

	var opts []editor.Option
	if url := os.Getenv("PIPELINE_BACKEND_URL"); url != "" {
		opts = append(opts, editor.WithSubmitter(submit.New(url)))
	}
	sess := editor.New(opts...)

	// Print every change the store publishes.
	cancel := sess.Subscribe(func(g pipeline.Graph) {
		fmt.Printf("  graph changed: %d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
	})
	defer cancel()

	// ── Drop a text node and an output node ──────────────────────────
	text, err := sess.Drop(pipeline.NodeTypeText, pipeline.Position{X: 400, Y: 100})
	if err != nil {
		log.Fatalf("drop text: %v", err)
	}
	out, err := sess.Drop(pipeline.NodeTypeOutput, pipeline.Position{X: 700, Y: 100})
	if err != nil {
		log.Fatalf("drop output: %v", err)
	}
	fmt.Printf("dropped %s and %s\n", text.ID, out.ID)

	// ── Type a template: sources for {{amount}} and {{rate}} appear ──
	res, err := sess.EditText(text.ID, "Total is {{amount}} at {{ rate }} (again: {{amount}})")
	if err != nil {
		log.Fatalf("edit text: %v", err)
	}
	fmt.Printf("auto-wired nodes %v, edges %d\n", res.Nodes, len(res.Edges))

	// ── Same text again: nothing new ──────────────────────────────────
	res, err = sess.EditText(text.ID, "Total is {{amount}} at {{rate}}")
	if err != nil {
		log.Fatalf("edit text: %v", err)
	}
	fmt.Printf("second edit created %d nodes\n", len(res.Nodes))

	// ── Connect the text node to the output ───────────────────────────
	o, _ := sess.Store().GetNode(out.ID)
	if _, err := sess.Connect(text.ID, text.SourceHandle(), out.ID, o.TargetHandle()); err != nil {
		log.Fatalf("connect: %v", err)
	}

	fmt.Println("\ngraph:")
	printJSON(sess.Snapshot())

	// ── Submit for validation ─────────────────────────────────────────
	result, err := sess.Submit(ctx)
	if err != nil {
		fmt.Printf("\nsubmit: %v\n", err)
		return
	}
	fmt.Printf("\nnodes: %d, edges: %d, is DAG: %t\n", result.NodeCount, result.EdgeCount, result.IsDAG)
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
