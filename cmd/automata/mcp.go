package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/pkg/adapters/mcp"
)

var (
	mcpSSEPort  int
	mcpMaxSteps int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Exposes validate_automaton, diagram_automaton and simulate_pda as Model Context
Protocol tools over stdio, or over SSE when --sse-port is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		server := mcp.NewServer(newEngine(logger),
			mcp.WithLogger(logger),
			mcp.WithMaxSteps(mcpMaxSteps),
		)

		if mcpSSEPort == 0 {
			return server.ServeStdio()
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return server.ServeSSE(ctx, mcpSSEPort)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().IntVar(&mcpMaxSteps, "max-steps", automata.DefaultStepLimit, "Largest max_steps a client may request")
	mcpCmd.Flags().IntVar(&mcpSSEPort, "sse-port", 0, "Serve over SSE on this port instead of stdio")
}
