package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(ctx context.Context, stderr io.Writer, deps agentDeps) *cobra.Command {
	root := &cobra.Command{
		Use:   "teachagent",
		Short: "Supervised English teaching agent for LiveKit rooms",
		Long: "teachagent keeps a conversational English-teaching session alive in a\n" +
			"LiveKit room, restarting it on failure and falling back between a local\n" +
			"Ollama model and the Gemini Live API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentMode(ctx, stderr, deps, modeOpts{name: "foreground"})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "console",
		Short: "Run an interactive console session in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentMode(ctx, stderr, deps, modeOpts{name: "console"})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "dev",
		Short: "Connect to the playground demo room",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentMode(ctx, stderr, deps, modeOpts{name: "dev"})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "connect [room]",
		Short: "Connect to a specific room",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := modeOpts{name: "connect"}
			if len(args) > 0 {
				opts.roomOverride = args[0]
			}
			return runAgentMode(ctx, stderr, deps, opts)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "cloud",
		Short: "Run for cloud hosting with the health endpoint enabled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentMode(ctx, stderr, deps, modeOpts{name: "cloud", serveHealth: true, logToFile: true})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "render",
		Short: "Run for Render deployment, binding PORT for platform checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentMode(ctx, stderr, deps, modeOpts{name: "render", serveHealth: true, logToFile: true})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "background",
		Short: "Start a detached agent that survives closing the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackground(cmd.OutOrStdout(), deps)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:    "background-worker",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentMode(ctx, stderr, deps, modeOpts{name: "background", serveHealth: true, logToFile: true})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the background agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.OutOrStdout())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check whether the background agent is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.OutOrStdout())
		},
	})

	return root
}

func runMain(ctx context.Context, stderr io.Writer, deps agentDeps, args []string) int {
	root := newRootCmd(ctx, stderr, deps)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "teachagent: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Stderr, defaultAgentDeps(), os.Args[1:]))
}
