package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/config"
	"github.com/meikuraledutech/pipeline/editor"
	"github.com/meikuraledutech/pipeline/submit"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Script is a recorded editing session.
type Script struct {
	Events []editor.Event `yaml:"events"`
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "pipelinectl",
		Short:         "Work with pipeline graphs from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newVarsCmd(), newReplayCmd(&configPath), newVersionCmd())
	return root
}

func newVarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vars [text...]",
		Short: "Print the {{variables}} referenced in text (stdin if no args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			}
			for _, name := range pipeline.ExtractVariables(text) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newReplayCmd(configPath *string) *cobra.Command {
	var (
		submitGraph bool
		backendURL  string
	)
	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Replay a YAML event script and print the resulting graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if backendURL != "" {
				cfg.BackendURL = backendURL
			}
			logger := cfg.Logger()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			var script Script
			if err := yaml.Unmarshal(data, &script); err != nil {
				return fmt.Errorf("parse script: %w", err)
			}

			opts := []editor.Option{editor.WithLayout(cfg.Layout), editor.WithLogger(logger)}
			if submitGraph {
				opts = append(opts, editor.WithSubmitter(submit.New(cfg.BackendURL,
					submit.WithTimeout(cfg.SubmitTimeout), submit.WithLogger(logger))))
			}
			sess := editor.New(opts...)
			if err := sess.Replay(script.Events); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(sess.Snapshot()); err != nil {
				return err
			}
			if !submitGraph {
				return nil
			}
			res, err := sess.Submit(cmd.Context())
			if err != nil {
				return fmt.Errorf("submit: %w", err)
			}
			isDAG := "No"
			if res.IsDAG {
				isDAG = "Yes"
			}
			fmt.Fprintf(out, "Nodes: %d\nEdges: %d\nIs DAG: %s\n", res.NodeCount, res.EdgeCount, isDAG)
			return nil
		},
	}
	cmd.Flags().BoolVar(&submitGraph, "submit", false, "send the graph to the validation service")
	cmd.Flags().StringVar(&backendURL, "backend", "", "validation service base URL (overrides config)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pipelinectl %s (commit: %s)\n", Version, Commit)
		},
	}
}
