package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/cli"
	"github.com/aretw0/automata/pkg/adapters/process"
	"github.com/aretw0/automata/pkg/domain"
)

var (
	graphFormat    string
	graphOutput    string
	graphHighlight string
	graphRenderCmd string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the state diagram",
	Long: `Builds the state diagram of the automaton and prints it as Mermaid (default),
Graphviz DOT or JSON. Image formats (png, svg, pdf, ...) pipe the DOT text
through the Graphviz "dot" binary and require --output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		doc, err := defFlags.Load()
		if err != nil {
			return err
		}

		engine := newEngine(logger)
		a, err := engine.Compile(doc.Definition)
		if err != nil {
			return err
		}
		d := automata.DiagramOf(a)

		var trace *domain.Trace
		if cmd.Flags().Changed("highlight") {
			trace, err = engine.Run(cmd.Context(), a, graphHighlight)
			if err != nil {
				return err
			}
		}

		if format, err := automata.ParseDiagramFormat(graphFormat); err == nil {
			out, err := automata.RenderDiagram(d, format, trace)
			if err != nil {
				return err
			}
			if graphOutput == "" {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			return os.WriteFile(graphOutput, []byte(out), 0o644)
		}

		if graphOutput == "" {
			return fmt.Errorf("format %q is an image: set --output", graphFormat)
		}
		var opts []process.RendererOption
		if graphRenderCmd != "" {
			opts = append(opts, process.WithCommand(graphRenderCmd, "-T"+process.FormatPlaceholder))
		}
		dot, err := automata.RenderDiagram(d, automata.FormatDOT, nil)
		if err != nil {
			return err
		}
		renderer := process.NewRenderer(opts...)
		if err := renderer.RenderFile(cmd.Context(), dot, graphFormat, graphOutput); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "Diagram written to %s", graphOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&graphFormat, "format", "mermaid", "mermaid, dot, json, or an image format rendered by Graphviz (png, svg, pdf)")
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Write to a file instead of stdout")
	graphCmd.Flags().StringVar(&graphHighlight, "highlight", "", "Highlight the states visited while simulating this input (mermaid)")
	graphCmd.Flags().StringVar(&graphRenderCmd, "render-cmd", "", "Graphviz layout binary (default dot)")
}
